// Package fable expands the configured feature lists into concrete fable
// parameter combinations and renders them into generation prompts.
package fable

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/tinyfabulist/tinyfabulist/internal/config"
)

// ErrExhaustedSpace is returned when more unique combinations are requested
// than the feature space contains.
var ErrExhaustedSpace = errors.New("requested count exceeds unique combinations in feature space")

// FeatureSet holds the six feature dimensions a combination draws from.
// It is immutable once constructed.
type FeatureSet struct {
	Characters  []string
	Traits      []string
	Settings    []string
	Conflicts   []string
	Resolutions []string
	Morals      []string
}

// NewFeatureSet builds a FeatureSet from loaded configuration.
func NewFeatureSet(f config.Features) FeatureSet {
	return FeatureSet{
		Characters:  f.Characters,
		Traits:      f.Traits,
		Settings:    f.Settings,
		Conflicts:   f.Conflicts,
		Resolutions: f.Resolutions,
		Morals:      f.Morals,
	}
}

// Size returns the number of distinct combinations in the feature space.
func (fs FeatureSet) Size() int {
	return len(fs.Characters) * len(fs.Traits) * len(fs.Settings) *
		len(fs.Conflicts) * len(fs.Resolutions) * len(fs.Morals)
}

// Combination is one concrete selection of values across all six feature
// dimensions. It is comparable, so it can key a set directly.
type Combination struct {
	Character  string
	Trait      string
	Setting    string
	Conflict   string
	Resolution string
	Moral      string
}

// Sequential produces exactly n combinations by round-robin indexing each
// dimension independently: combination i takes field[i mod len(field)].
// Dimensions of different lengths drift out of phase; that is accepted,
// not corrected.
func Sequential(fs FeatureSet, n int) []Combination {
	combos := make([]Combination, 0, n)
	for i := 0; i < n; i++ {
		combos = append(combos, Combination{
			Character:  fs.Characters[i%len(fs.Characters)],
			Trait:      fs.Traits[i%len(fs.Traits)],
			Setting:    fs.Settings[i%len(fs.Settings)],
			Conflict:   fs.Conflicts[i%len(fs.Conflicts)],
			Resolution: fs.Resolutions[i%len(fs.Resolutions)],
			Moral:      fs.Morals[i%len(fs.Morals)],
		})
	}
	return combos
}

// Randomized produces n combinations by drawing one uniformly random value
// per dimension and rejecting draws whose full 6-tuple was already accepted.
// It fails with ErrExhaustedSpace when n exceeds the size of the feature
// space; a capped attempt count backstops the rejection loop. Output order
// is not meaningful.
func Randomized(fs FeatureSet, n int, rng *rand.Rand) ([]Combination, error) {
	if n > fs.Size() {
		return nil, fmt.Errorf("%w: want %d, space holds %d", ErrExhaustedSpace, n, fs.Size())
	}

	seen := make(map[Combination]struct{}, n)
	combos := make([]Combination, 0, n)

	// Generous bound: expected draws stay far below this unless the space
	// is nearly exhausted, in which case we still terminate.
	maxAttempts := 100 * n * 10
	if maxAttempts < 1000 {
		maxAttempts = 1000
	}

	for attempts := 0; len(combos) < n; attempts++ {
		if attempts >= maxAttempts {
			return nil, fmt.Errorf("%w: gave up after %d draws with %d of %d collected",
				ErrExhaustedSpace, attempts, len(combos), n)
		}
		c := Combination{
			Character:  pick(fs.Characters, rng),
			Trait:      pick(fs.Traits, rng),
			Setting:    pick(fs.Settings, rng),
			Conflict:   pick(fs.Conflicts, rng),
			Resolution: pick(fs.Resolutions, rng),
			Moral:      pick(fs.Morals, rng),
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		combos = append(combos, c)
	}
	return combos, nil
}

func pick(values []string, rng *rand.Rand) string {
	return values[rng.Intn(len(values))]
}
