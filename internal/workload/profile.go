package workload

import (
	"github.com/pkg/errors"

	"github.com/theflywheel/oahash"
)

// Key and value kinds a profile can draw from.
const (
	KindInt    = "int"
	KindString = "string"
)

// ErrInvalidProfile is returned for a profile that cannot be run.
var ErrInvalidProfile = errors.New("workload: invalid profile")

// Profile describes one randomized operation mix.
type Profile struct {
	Name string `toml:"name"`
	// Operations is the number of put/remove steps.
	Operations int `toml:"operations"`
	// PutPercent is the chance, out of 100, that a step is a put rather
	// than a remove.
	PutPercent int `toml:"put-percent"`
	// Keys is the size of the key pool steps pick from.
	Keys      int    `toml:"keys"`
	KeyKind   string `toml:"key-kind"`
	ValueKind string `toml:"value-kind"`
	Seed      uint64 `toml:"seed"`

	Table oahash.Config `toml:"table"`
}

// Validate checks the profile's ranges and kinds.
func (p Profile) Validate() error {
	switch {
	case p.Operations <= 0:
		return errors.Wrapf(ErrInvalidProfile, "%s: operations must be positive", p.Name)
	case p.PutPercent < 0 || p.PutPercent > 100:
		return errors.Wrapf(ErrInvalidProfile, "%s: put-percent %d out of [0, 100]", p.Name, p.PutPercent)
	case p.Keys <= 0:
		return errors.Wrapf(ErrInvalidProfile, "%s: keys must be positive", p.Name)
	case !validKind(p.KeyKind):
		return errors.Wrapf(ErrInvalidProfile, "%s: key-kind %q", p.Name, p.KeyKind)
	case !validKind(p.ValueKind):
		return errors.Wrapf(ErrInvalidProfile, "%s: value-kind %q", p.Name, p.ValueKind)
	}
	if err := p.Table.Validate(); err != nil {
		return errors.Wrapf(err, "%s", p.Name)
	}
	return nil
}

func validKind(kind string) bool {
	return kind == KindInt || kind == KindString
}

// DefaultProfiles returns the four standard mixes: mostly puts and an even
// put/remove split, each over a small and a large key pool.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:       "put-mostly-few-keys",
			Operations: 1_000_000,
			PutPercent: 90,
			Keys:       100,
			KeyKind:    KindInt,
			ValueKind:  KindInt,
			Seed:       1,
			Table:      oahash.Config{Capacity: 50, LoadFactor: 0.3},
		},
		{
			Name:       "put-mostly-many-keys",
			Operations: 1_000_000,
			PutPercent: 90,
			Keys:       10_000,
			KeyKind:    KindInt,
			ValueKind:  KindInt,
			Seed:       2,
			Table:      oahash.Config{Capacity: 1000},
		},
		{
			Name:       "put-remove-equally-few-keys",
			Operations: 1_000_000,
			PutPercent: 55,
			Keys:       100,
			KeyKind:    KindString,
			ValueKind:  KindString,
			Seed:       3,
			Table:      oahash.Config{Capacity: 50, LoadFactor: 0.3},
		},
		{
			Name:       "put-remove-equally-many-keys",
			Operations: 1_000_000,
			PutPercent: 55,
			Keys:       100_000,
			KeyKind:    KindString,
			ValueKind:  KindInt,
			Seed:       4,
			Table:      oahash.Config{Capacity: 1000},
		},
	}
}
