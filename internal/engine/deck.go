package engine

import "math/rand"

// Deck is the pool of callable numbers for one match. It is shuffled once
// at creation, so each draw is uniform over the numbers not yet called.
type Deck struct {
	order  []int
	cursor int
}

func NewDeck(rng *rand.Rand) *Deck {
	order := rng.Perm(MaxNumber)
	for i := range order {
		order[i]++
	}
	return &Deck{order: order}
}

// Draw returns the next number, or false once all 75 are called.
func (d *Deck) Draw() (int, bool) {
	if d.cursor >= len(d.order) {
		return 0, false
	}
	n := d.order[d.cursor]
	d.cursor++
	return n, true
}

// Called returns a copy of the call history in draw order.
func (d *Deck) Called() []int {
	return append([]int(nil), d.order[:d.cursor]...)
}

func (d *Deck) Remaining() int {
	return len(d.order) - d.cursor
}

func (d *Deck) Exhausted() bool {
	return d.Remaining() == 0
}
