// Package dice provides die rolls and the difficulty value table used by
// every check in the game.
package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// Roller produces uniformly distributed die faces in [1, sides].
type Roller interface {
	Roll(sides int) int
}

// D10 rolls one ten-sided die.
func D10(r Roller) int {
	return r.Roll(10)
}

// D6 rolls n six-sided dice and returns the sum.
func D6(r Roller, n int) int {
	return Sum(r, n, 6)
}

// Sum rolls n dice with the given number of sides and returns the total.
func Sum(r Roller, n, sides int) int {
	total := 0
	for range n {
		total += r.Roll(sides)
	}
	return total
}

// Chance reports true with probability p, resolved on a d100.
// p <= 0 never succeeds and p >= 1 always does.
func Chance(r Roller, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Roll(100) <= int(p*100+0.5)
}

// Pick returns an index in [0, n). n must be positive.
func Pick(r Roller, n int) int {
	return r.Roll(n) - 1
}

// ParseDice parses NdM notation ("4d6") into count and sides.
func ParseDice(s string) (count, sides int, err error) {
	n, m, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "d")
	if !ok {
		return 0, 0, fmt.Errorf("dice %q: missing 'd'", s)
	}
	if n == "" {
		count = 1
	} else if count, err = strconv.Atoi(n); err != nil || count < 1 {
		return 0, 0, fmt.Errorf("dice %q: bad count", s)
	}
	if sides, err = strconv.Atoi(m); err != nil || sides < 1 {
		return 0, 0, fmt.Errorf("dice %q: bad sides", s)
	}
	return count, sides, nil
}
