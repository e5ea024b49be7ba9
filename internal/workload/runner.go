// Package workload drives an oahash.Table and a reference mapping through
// the same randomized sequence of puts and removes and reports the first
// point where they disagree.
package workload

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/theflywheel/oahash"
	"github.com/theflywheel/oahash/internal/reference"
)

// Report summarizes a profile that ran to completion.
type Report struct {
	Profile    string
	Reference  string
	Operations int
	Puts       int
	Removes    int
	Stats      oahash.Stats
	Elapsed    time.Duration
}

// MismatchError describes the first step where the table and the
// reference returned different results.
type MismatchError struct {
	Step int
	Op   string
	Key  any
	Want string
	Got  string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("workload: step %d: %s(%v): want %s, got %s", e.Step, e.Op, e.Key, e.Want, e.Got)
}

func outcome(value any, present bool) string {
	if !present {
		return "absent"
	}
	return fmt.Sprintf("%v", value)
}

// Run executes profile p against a table and the named reference mapping.
// It returns a *MismatchError on the first divergence, or the context's
// error if ctx is cancelled first.
func Run(ctx context.Context, p Profile, referenceKind string, logger *zap.Logger) (Report, error) {
	if err := p.Validate(); err != nil {
		return Report{}, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("profile", p.Name), zap.String("reference", referenceKind))

	switch {
	case p.KeyKind == KindInt && p.ValueKind == KindInt:
		return run(ctx, p, referenceKind, logger, randomInt(p.Keys), randomInt(1_000_000))
	case p.KeyKind == KindInt && p.ValueKind == KindString:
		return run(ctx, p, referenceKind, logger, randomInt(p.Keys), randomString)
	case p.KeyKind == KindString && p.ValueKind == KindInt:
		return run(ctx, p, referenceKind, logger, randomString, randomInt(1_000_000))
	default:
		return run(ctx, p, referenceKind, logger, randomString, randomString)
	}
}

func randomInt(n int) func(*rand.Rand) int {
	return func(r *rand.Rand) int {
		return r.IntN(n)
	}
}

// randomString returns up to 14 random runes below the surrogate range.
func randomString(r *rand.Rand) string {
	n := r.IntN(15)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteRune(rune(r.IntN(0xD800)))
	}
	return sb.String()
}

const progressInterval = 100_000

func run[K comparable, V comparable](
	ctx context.Context,
	p Profile,
	referenceKind string,
	logger *zap.Logger,
	newKey func(*rand.Rand) K,
	newValue func(*rand.Rand) V,
) (Report, error) {
	rep := Report{Profile: p.Name, Reference: referenceKind}

	tbl, err := oahash.New[K, V](append(p.Table.Options(), oahash.WithLogger(logger))...)
	if err != nil {
		return rep, errors.Wrapf(err, "workload: %s", p.Name)
	}
	ref, err := reference.New[K, V](referenceKind)
	if err != nil {
		return rep, err
	}

	r := rand.New(rand.NewPCG(p.Seed, p.Seed^0x9E3779B97F4A7C15))
	keys := make([]K, p.Keys)
	for i := range keys {
		keys[i] = newKey(r)
	}

	logger.Debug("workload started", zap.Int("operations", p.Operations), zap.Int("keys", p.Keys))
	start := time.Now()

	for step := 0; step < p.Operations; step++ {
		if step%progressInterval == 0 {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			if step > 0 {
				logger.Debug("workload progress", zap.Int("step", step), zap.Int("size", tbl.Size()))
			}
		}

		key := keys[r.IntN(len(keys))]
		if r.IntN(100) < p.PutPercent {
			rep.Puts++
			value := newValue(r)
			wantPrev, wantLoaded := ref.Put(key, value)
			gotPrev, gotLoaded, err := tbl.Put(key, value)
			if err != nil {
				return rep, errors.Wrapf(err, "workload: step %d: put", step)
			}
			if gotLoaded != wantLoaded || gotPrev != wantPrev {
				return rep, &MismatchError{step, "put", key, outcome(wantPrev, wantLoaded), outcome(gotPrev, gotLoaded)}
			}
			got, ok, err := tbl.Get(key)
			if err != nil {
				return rep, errors.Wrapf(err, "workload: step %d: get", step)
			}
			if !ok || got != value {
				return rep, &MismatchError{step, "get", key, outcome(value, true), outcome(got, ok)}
			}
		} else {
			rep.Removes++
			wantPrev, wantLoaded := ref.Remove(key)
			gotPrev, gotLoaded, err := tbl.Remove(key)
			if err != nil {
				return rep, errors.Wrapf(err, "workload: step %d: remove", step)
			}
			if gotLoaded != wantLoaded || gotPrev != wantPrev {
				return rep, &MismatchError{step, "remove", key, outcome(wantPrev, wantLoaded), outcome(gotPrev, gotLoaded)}
			}
			got, ok, err := tbl.Get(key)
			if err != nil {
				return rep, errors.Wrapf(err, "workload: step %d: get", step)
			}
			if ok {
				return rep, &MismatchError{step, "get", key, outcome(nil, false), outcome(got, ok)}
			}
		}

		if tbl.Size() != ref.Size() {
			return rep, &MismatchError{step, "size", key, fmt.Sprint(ref.Size()), fmt.Sprint(tbl.Size())}
		}
		rep.Operations++
	}

	rep.Elapsed = time.Since(start)
	rep.Stats = tbl.Stats()
	logger.Debug("workload finished", zap.Duration("elapsed", rep.Elapsed), zap.Int("size", rep.Stats.Size))
	return rep, nil
}
