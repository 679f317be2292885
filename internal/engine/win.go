package engine

// lines lists the 12 winning lines as row-major cell indexes:
// 5 rows, 5 columns and the two diagonals.
var lines = func() [][CardSize]int {
	ls := make([][CardSize]int, 0, 2*CardSize+2)
	for r := 0; r < CardSize; r++ {
		var l [CardSize]int
		for c := 0; c < CardSize; c++ {
			l[c] = r*CardSize + c
		}
		ls = append(ls, l)
	}
	for c := 0; c < CardSize; c++ {
		var l [CardSize]int
		for r := 0; r < CardSize; r++ {
			l[r] = r*CardSize + c
		}
		ls = append(ls, l)
	}
	var d1, d2 [CardSize]int
	for i := 0; i < CardSize; i++ {
		d1[i] = i*CardSize + i
		d2[i] = i*CardSize + (CardSize - 1 - i)
	}
	return append(ls, d1, d2)
}()

// HasWin reports whether any row, column or diagonal of card is fully
// covered by called. The free cell always counts as covered.
func HasWin(card Card, called map[int]bool) bool {
	return len(WinningLines(card, called)) > 0
}

// WinningLines returns every covered line of card, each as its cell indexes.
func WinningLines(card Card, called map[int]bool) [][CardSize]int {
	var won [][CardSize]int
	for _, l := range lines {
		if covered(card, l, called) {
			won = append(won, l)
		}
	}
	return won
}

func covered(card Card, line [CardSize]int, called map[int]bool) bool {
	for _, i := range line {
		if IsFree(i) {
			continue
		}
		n := card[i]
		if n < 1 || n > MaxNumber || !called[n] {
			return false
		}
	}
	return true
}
