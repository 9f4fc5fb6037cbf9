package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Forklift SAFETY", "forklift safety"},
		{"trims ends", "  pallet jack  ", "pallet jack"},
		{"collapses runs", "cold \t storage\n\nrules", "cold storage rules"},
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
		{"unicode preserved", "Sicherheitsprüfung Gabelstapler", "sicherheitsprüfung gabelstapler"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.input))
		})
	}
}

func TestHashTextEquivalence(t *testing.T) {
	// Whitespace and casing variants must share one hash.
	base := HashText("forklift inspection checklist")
	assert.Equal(t, base, HashText("  Forklift   INSPECTION\tchecklist "))
	assert.NotEqual(t, base, HashText("forklift inspection checklists"))

	// Hex SHA-256.
	assert.Len(t, base, 64)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "", TruncateRunes("anything", 0))
	assert.Equal(t, "", TruncateRunes("anything", -1))
	assert.Equal(t, "short", TruncateRunes("short", 100))
	assert.Equal(t, "abc", TruncateRunes("abcdef", 3))

	// Multi-byte runes must never be split.
	cut := TruncateRunes(strings.Repeat("ß", 10), 4)
	assert.Equal(t, "ßßßß", cut)
}
