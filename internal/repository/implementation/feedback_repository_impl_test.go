package implementation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/clause"
)

func TestFeedbackConflictTargetsFullIndex(t *testing.T) {
	c := feedbackConflict()

	// The conflict target must name all three index columns, including the
	// nullable result_id, so Postgres infers the NULLS NOT DISTINCT index and
	// query-level resubmissions update instead of inserting.
	require.Equal(t, []clause.Column{
		{Name: "search_query_id"},
		{Name: "user_id"},
		{Name: "result_id"},
	}, c.Columns)

	updated := make([]string, 0, len(c.DoUpdates))
	for _, a := range c.DoUpdates {
		updated = append(updated, a.Column.Name)
	}
	assert.ElementsMatch(t, []string{
		"rating", "clicked", "time_to_click_ms", "dwell_time_ms", "comment", "updated_at",
	}, updated)
	assert.False(t, c.DoNothing)
}
