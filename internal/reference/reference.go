// Package reference provides trusted associative containers that the
// workload runner drives side by side with an oahash.Table.
package reference

import (
	"github.com/llxisdsh/pb"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v4"
)

// Mapping is the operation surface shared by the table and its references.
type Mapping[K comparable, V any] interface {
	Put(key K, value V) (prev V, loaded bool)
	Get(key K) (value V, ok bool)
	Remove(key K) (prev V, loaded bool)
	Size() int
}

// Kinds lists the names accepted by New.
var Kinds = []string{"builtin", "pb", "xsync"}

// ErrUnknownKind is returned by New for an unrecognised reference name.
var ErrUnknownKind = errors.New("reference: unknown kind")

// New returns an empty reference mapping by name.
func New[K comparable, V any](kind string) (Mapping[K, V], error) {
	switch kind {
	case "", "builtin":
		return &builtinMap[K, V]{m: make(map[K]V)}, nil
	case "pb":
		return &pbMap[K, V]{}, nil
	case "xsync":
		return &xsyncMap[K, V]{m: xsync.NewMap[K, V]()}, nil
	}
	return nil, errors.Wrapf(ErrUnknownKind, "%q", kind)
}

type builtinMap[K comparable, V any] struct{ m map[K]V }

func (b *builtinMap[K, V]) Put(k K, v V) (V, bool) {
	prev, ok := b.m[k]
	b.m[k] = v
	return prev, ok
}

func (b *builtinMap[K, V]) Get(k K) (V, bool) {
	v, ok := b.m[k]
	return v, ok
}

func (b *builtinMap[K, V]) Remove(k K) (V, bool) {
	prev, ok := b.m[k]
	delete(b.m, k)
	return prev, ok
}

func (b *builtinMap[K, V]) Size() int { return len(b.m) }

type pbMap[K comparable, V any] struct{ m pb.MapOf[K, V] }

func (p *pbMap[K, V]) Put(k K, v V) (V, bool) { return p.m.Swap(k, v) }
func (p *pbMap[K, V]) Get(k K) (V, bool)      { return p.m.Load(k) }
func (p *pbMap[K, V]) Remove(k K) (V, bool)   { return p.m.LoadAndDelete(k) }
func (p *pbMap[K, V]) Size() int              { return p.m.Size() }

type xsyncMap[K comparable, V any] struct{ m *xsync.Map[K, V] }

func (x *xsyncMap[K, V]) Put(k K, v V) (V, bool) { return x.m.LoadAndStore(k, v) }
func (x *xsyncMap[K, V]) Get(k K) (V, bool)      { return x.m.Load(k) }
func (x *xsyncMap[K, V]) Remove(k K) (V, bool)   { return x.m.LoadAndDelete(k) }
func (x *xsyncMap[K, V]) Size() int              { return x.m.Size() }
