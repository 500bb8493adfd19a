// Package distance implements a bounded Levenshtein edit distance over
// arbitrary comparable units (runes, grapheme clusters or word tokens).
package distance

import (
	"github.com/baditaflorin/go_tm_similarity/internal/pool"
)

// Distance returns the Levenshtein distance between a and b with unit costs
// for substitution, insertion and deletion.
//
// A positive stopValue allows the computation to give up as soon as the
// distance is proven to exceed it. In that case the returned value is only
// guaranteed to be greater than stopValue; callers must test
// `d > stopValue` and never rely on the magnitude. A stopValue of zero (or
// below) disables the early exit.
func Distance[T comparable](a, b []T, stopValue int) int {
	d, _ := distanceRows(a, b, stopValue)
	return d
}

// distanceRows is Distance that also reports how many DP rows were evaluated.
func distanceRows[T comparable](a, b []T, stopValue int) (int, int) {
	// The shorter operand is the row dimension.
	if len(a) > len(b) {
		a, b = b, a
	}
	l1, l2 := len(a), len(b)
	if stopValue <= 0 {
		stopValue = l2
	}

	prevBuf := pool.Rows.Get(l1 + 1)
	currBuf := pool.Rows.Get(l1 + 1)
	defer pool.Rows.Put(prevBuf)
	defer pool.Rows.Put(currBuf)

	previous, current := *prevBuf, *currBuf
	for j := range previous {
		previous[j] = j
	}

	rows := 0
	for i := 1; i <= l2; i++ {
		current[0] = i
		least := i
		unit := b[i-1]
		for j := 1; j <= l1; j++ {
			change := previous[j-1]
			if a[j-1] != unit {
				change++
			}
			cost := min(change, previous[j]+1, current[j-1]+1)
			current[j] = cost
			if cost < least {
				least = cost
			}
		}
		rows++

		// Every alignment crosses this row, so its minimum is a lower bound
		// on the final distance.
		if least > stopValue {
			return least, rows
		}
		previous, current = current, previous
	}

	return previous[l1], rows
}
