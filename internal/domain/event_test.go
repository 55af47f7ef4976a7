package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupKey_Normalization(t *testing.T) {
	base := DedupKey("Pyramid", "2026-06-29", "Amnesia")

	assert.Equal(t, base, DedupKey("  pyramid ", "2026-06-29", "AMNESIA "))
	assert.Equal(t, "pyramid|2026-06-29|amnesia", base)

	assert.NotEqual(t, base, DedupKey("Pyramid", "2026-06-30", "Amnesia"))
	assert.NotEqual(t, base, DedupKey("Pyramid", "2026-06-29", "Pacha"))
}

func TestDedupKey_MatchesOnBothSides(t *testing.T) {
	e := ExtractedEvent{Title: "Flower Power ", Date: "2026-07-01", Venue: "pacha"}
	k := EventKey{Title: "flower power", Date: "2026-07-01", Venue: " Pacha"}

	assert.Equal(t, e.Key(), k.Key())
}
