package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitTextShortInput(t *testing.T) {
	chunks := SplitText("fits in one chunk", 100, 20)
	assert.Equal(t, []string{"fits in one chunk"}, chunks)
}

func TestSplitTextOverlap(t *testing.T) {
	text := strings.Repeat("a", 25)
	chunks := SplitText(text, 10, 4)

	// step = 10 - 4 = 6, so starts at 0, 6, 12, 18, 24
	assert.Len(t, chunks, 5)
	assert.Equal(t, strings.Repeat("a", 10), chunks[0])

	// Consecutive chunks must share the overlap region.
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-4:]
		assert.True(t, strings.HasPrefix(chunks[i], prevTail) || len(chunks[i]) < 4)
	}

	// Last chunk ends where the text ends.
	assert.True(t, strings.HasSuffix(text, chunks[len(chunks)-1]))
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	// Degenerate config must still terminate and cover the input.
	text := strings.Repeat("b", 30)
	chunks := SplitText(text, 10, 15)
	assert.NotEmpty(t, chunks)

	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c)
	}
	assert.Equal(t, text, rebuilt.String())
}
