package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinASCII(t *testing.T) {
	assert.Equal(t, 0, levenshtein("give", "give"))
	assert.Equal(t, 1, levenshtein("give", "gave"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
}

func TestLevenshteinMultiByteRunes(t *testing.T) {
	assert.Equal(t, 0, levenshtein("café", "café"))
	assert.Equal(t, 1, levenshtein("café", "cafe"))
}

func TestClosestChoicePrefersNearestMultiByte(t *testing.T) {
	choice, dist := closestChoice("café", []string{"cafe", "unrelated"})
	assert.Equal(t, "cafe", choice)
	assert.Equal(t, 1, dist)
}

func TestSimilarityMultiByteExactMatch(t *testing.T) {
	closest, score := similarity("café", []string{"café"})
	assert.Equal(t, "café", closest)
	assert.Equal(t, 1.0, score)
}
