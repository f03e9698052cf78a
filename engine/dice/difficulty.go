package dice

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownTier reports a difficulty tier with no value in the table.
var ErrUnknownTier = errors.New("unknown difficulty tier")

// Tier names a difficulty band.
type Tier string

const (
	Everyday     Tier = "Everyday"
	Difficult    Tier = "Difficult"
	Professional Tier = "Professional"
	Heroic       Tier = "Heroic"
	Incredible   Tier = "Incredible"
)

var difficultyValues = map[Tier]int{
	Everyday:     13,
	Difficult:    15,
	Professional: 17,
	Heroic:       21,
	Incredible:   24,
}

// DifficultyValue returns the DV a check must beat for the tier.
// There is no default: an unrecognized tier is an error.
func DifficultyValue(t Tier) (int, error) {
	dv, ok := difficultyValues[t]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, string(t))
	}
	return dv, nil
}

// ParseTier matches a tier name case-insensitively.
func ParseTier(s string) (Tier, error) {
	for t := range difficultyValues {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// Tiers returns all tiers ordered by ascending DV.
func Tiers() []Tier {
	tiers := make([]Tier, 0, len(difficultyValues))
	for t := range difficultyValues {
		tiers = append(tiers, t)
	}
	slices.SortFunc(tiers, func(a, b Tier) int {
		return difficultyValues[a] - difficultyValues[b]
	})
	return tiers
}
