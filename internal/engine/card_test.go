package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateCard(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		card := GenerateCard(rng)
		require.Len(t, card, CardCells)
		assert.Equal(t, 0, card[FreeCell], "center must stay free")

		seen := make(map[int]bool)
		for idx, n := range card {
			if IsFree(idx) {
				continue
			}
			require.GreaterOrEqual(t, n, 1)
			require.LessOrEqual(t, n, MaxNumber)
			require.False(t, seen[n], "duplicate %d on card %v", n, card)
			seen[n] = true
		}
		assert.Len(t, seen, CardCells-1)
	}
}

func TestCardContains(t *testing.T) {
	card := GenerateCard(rand.New(rand.NewSource(7)))

	for _, n := range card.Numbers() {
		assert.True(t, card.Contains(n))
	}
	assert.False(t, card.Contains(0), "free cell value is not a number")
	assert.False(t, card.Contains(76))
	assert.Len(t, card.Numbers(), 24)
}
