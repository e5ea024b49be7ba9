package oahash

import (
	"math"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// DefaultCapacity is the number of slots a table starts with when no
	// capacity is given.
	DefaultCapacity = 1024

	// DefaultLoadFactor is the ratio of used (live plus tombstoned) slots to
	// capacity above which the table doubles.
	DefaultLoadFactor = 0.5
)

// Option configures a Table at construction time.
type Option func(*options)

type options struct {
	capacity   int
	loadFactor float64
	hasher     any // func(K) uint64
	equal      any // func(K, K) bool
	logger     *zap.Logger
}

func defaultOptions() options {
	return options{
		capacity:   DefaultCapacity,
		loadFactor: DefaultLoadFactor,
	}
}

func (o *options) validate() error {
	if o.capacity <= 0 {
		return errors.Wrapf(ErrInvalidCapacity, "got %d", o.capacity)
	}
	if math.IsNaN(o.loadFactor) || o.loadFactor <= 0 || o.loadFactor > 1 {
		return errors.Wrapf(ErrInvalidLoadFactor, "got %v", o.loadFactor)
	}
	return nil
}

// WithCapacity sets the initial number of slots. The value is used as
// given; it is not rounded to a power of two.
func WithCapacity(capacity int) Option {
	return func(o *options) {
		o.capacity = capacity
	}
}

// WithLoadFactor sets the resize threshold. The table doubles as soon as
// used slots exceed capacity*loadFactor.
func WithLoadFactor(loadFactor float64) Option {
	return func(o *options) {
		o.loadFactor = loadFactor
	}
}

// WithHasher replaces the default key hash. The function must return equal
// hashes for keys the table considers equal.
//
// Usage:
//
//	t, err := oahash.New[string, int](oahash.WithHasher(func(s string) uint64 {
//		return xxhash.Sum64String(strings.ToLower(s))
//	}))
func WithHasher[K comparable](hash func(key K) uint64) Option {
	return func(o *options) {
		if hash != nil {
			o.hasher = hash
		}
	}
}

// WithKeyEqual replaces == as the key equality used on every probe.
// Combine it with WithHasher so that equal keys hash alike.
func WithKeyEqual[K comparable](equal func(a, b K) bool) Option {
	return func(o *options) {
		if equal != nil {
			o.equal = equal
		}
	}
}

// WithLogger sets the logger used for resize tracing. A nil logger
// disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Config is the file-friendly form of the sizing options. Zero fields keep
// the defaults.
type Config struct {
	Capacity   int     `toml:"capacity"`
	LoadFactor float64 `toml:"load-factor"`
}

// Options converts the config into table options.
func (c Config) Options() []Option {
	var opts []Option
	if c.Capacity != 0 {
		opts = append(opts, WithCapacity(c.Capacity))
	}
	if c.LoadFactor != 0 {
		opts = append(opts, WithLoadFactor(c.LoadFactor))
	}
	return opts
}

// Validate reports whether New would accept the config.
func (c Config) Validate() error {
	o := defaultOptions()
	for _, opt := range c.Options() {
		opt(&o)
	}
	return o.validate()
}
