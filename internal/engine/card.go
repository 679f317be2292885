package engine

import (
	"math/rand"
)

const (
	CardSize  = 5
	CardCells = CardSize * CardSize
	MaxNumber = 75

	// FreeCell is the row-major index of the center square.
	FreeCell = 12
)

// Card is a 5x5 bingo card stored row-major. The free cell holds 0.
type Card [CardCells]int

// At returns the number at row r, column c.
func (c Card) At(r, col int) int {
	return c[r*CardSize+col]
}

// IsFree reports whether the row-major index i is the free cell.
func IsFree(i int) bool {
	return i == FreeCell
}

// Contains reports whether n is printed on the card.
func (c Card) Contains(n int) bool {
	if n < 1 || n > MaxNumber {
		return false
	}
	for i, v := range c {
		if !IsFree(i) && v == n {
			return true
		}
	}
	return false
}

// Numbers returns the 24 drawn numbers in card order.
func (c Card) Numbers() []int {
	nums := make([]int, 0, CardCells-1)
	for i, v := range c {
		if IsFree(i) {
			continue
		}
		nums = append(nums, v)
	}
	return nums
}

// GenerateCard draws 24 distinct numbers from 1-75 and leaves the center free.
func GenerateCard(rng *rand.Rand) Card {
	// a prefix of a permutation is a sample without replacement
	perm := rng.Perm(MaxNumber)

	var card Card
	k := 0
	for i := range card {
		if IsFree(i) {
			continue
		}
		card[i] = perm[k] + 1
		k++
	}
	return card
}
