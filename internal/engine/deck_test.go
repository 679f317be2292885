package engine

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckDrawsEachNumberOnce(t *testing.T) {
	deck := NewDeck(rand.New(rand.NewSource(1)))

	seen := make(map[int]bool)
	for i := 0; i < MaxNumber; i++ {
		n, ok := deck.Draw()
		require.True(t, ok)
		require.False(t, seen[n], "number %d drawn twice", n)
		seen[n] = true
	}

	_, ok := deck.Draw()
	assert.False(t, ok)
	assert.True(t, deck.Exhausted())

	called := deck.Called()
	require.Len(t, called, MaxNumber)
	for n := 1; n <= MaxNumber; n++ {
		assert.True(t, seen[n], "missing %d", n)
	}
}

func TestDeckCalledIsCopy(t *testing.T) {
	deck := NewDeck(rand.New(rand.NewSource(1)))
	first, _ := deck.Draw()

	called := deck.Called()
	called[0] = -1

	assert.Equal(t, []int{first}, deck.Called())
	assert.Equal(t, MaxNumber-1, deck.Remaining())
}
