package oahash

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type slotState uint8

const (
	slotEmpty slotState = iota
	slotOccupied
	slotTombstone
)

type slot[K comparable, V any] struct {
	state slotState
	key   K
	value V
}

// Table is an open-addressing hash table with linear probing. Removed
// entries leave tombstones that keep probe chains intact until the next
// resize drops them.
//
// A Table is not safe for concurrent use; wrap it in a mutex if it is
// shared between goroutines.
type Table[K comparable, V any] struct {
	slots      []slot[K, V]
	live       int // occupied slots
	used       int // occupied + tombstoned slots
	loadFactor float64
	growths    int

	hash   func(K) uint64
	equal  func(a, b K) bool
	logger *zap.Logger

	nilable   bool // K's zero value is nil
	guardHash bool // hashing may panic on an unhashable dynamic type
}

// New creates a table with the given options. Without options it starts
// with DefaultCapacity slots and DefaultLoadFactor.
func New[K comparable, V any](opts ...Option) (*Table[K, V], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	typ := reflect.TypeFor[K]()
	t := &Table[K, V]{
		slots:      make([]slot[K, V], o.capacity),
		loadFactor: o.loadFactor,
		hash:       defaultHasher[K](),
		equal:      func(a, b K) bool { return a == b },
		logger:     o.logger,
		nilable:    nilableKind(typ),
		guardHash:  holdsInterface(typ),
	}
	if o.hasher != nil {
		fn, ok := o.hasher.(func(K) uint64)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidOption, "hasher %T for key %v", o.hasher, typ)
		}
		t.hash = fn
	}
	if o.equal != nil {
		fn, ok := o.equal.(func(a, b K) bool)
		if !ok {
			return nil, errors.Wrapf(ErrInvalidOption, "equal %T for key %v", o.equal, typ)
		}
		t.equal = fn
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t, nil
}

// MustNew is like New but panics if the options are invalid.
func MustNew[K comparable, V any](opts ...Option) *Table[K, V] {
	t, err := New[K, V](opts...)
	if err != nil {
		panic(err)
	}
	return t
}

// Put stores value under key. If the key was already present its value is
// replaced and the previous value is returned with loaded set to true.
func (t *Table[K, V]) Put(key K, value V) (prev V, loaded bool, err error) {
	h, err := t.hashKey(key)
	if err != nil {
		return prev, false, err
	}

	for {
		idx, found, insertAt := t.find(key, h)
		if found {
			s := &t.slots[idx]
			prev = s.value
			s.value = value
			return prev, true, nil
		}
		if insertAt < 0 {
			// Every slot is live; only reachable with a load factor of 1.
			t.resize()
			continue
		}

		s := &t.slots[insertAt]
		if s.state == slotEmpty {
			t.used++
		}
		s.state = slotOccupied
		s.key = key
		s.value = value
		t.live++

		// A small load factor can need more than one doubling.
		for float64(t.used) > float64(len(t.slots))*t.loadFactor {
			t.resize()
		}
		return prev, false, nil
	}
}

// Get returns the value stored under key. The boolean result reports
// whether the key was present.
func (t *Table[K, V]) Get(key K) (value V, ok bool, err error) {
	h, err := t.hashKey(key)
	if err != nil {
		return value, false, err
	}
	if idx, found, _ := t.find(key, h); found {
		return t.slots[idx].value, true, nil
	}
	return value, false, nil
}

// Remove deletes key and returns the value it held. The slot becomes a
// tombstone and still counts toward the load factor until the next resize.
func (t *Table[K, V]) Remove(key K) (prev V, loaded bool, err error) {
	h, err := t.hashKey(key)
	if err != nil {
		return prev, false, err
	}
	idx, found, _ := t.find(key, h)
	if !found {
		return prev, false, nil
	}

	s := &t.slots[idx]
	prev = s.value
	*s = slot[K, V]{state: slotTombstone}
	t.live--
	return prev, true, nil
}

// Size returns the number of live entries.
func (t *Table[K, V]) Size() int {
	return t.live
}

// Capacity returns the current number of slots.
func (t *Table[K, V]) Capacity() int {
	return len(t.slots)
}

// find walks the probe chain of key starting at its home slot. It returns
// the index of the live slot holding key, or, when the key is absent, the
// slot a new entry should go to: the first tombstone on the chain, or else
// the empty slot that ended it. insertAt is -1 if the chain covers the
// whole table without an empty slot or tombstone.
func (t *Table[K, V]) find(key K, h uint64) (idx int, found bool, insertAt int) {
	capacity := len(t.slots)
	insertAt = -1
	i := hashIndex(h, capacity)
	for n := 0; n < capacity; n++ {
		s := &t.slots[i]
		switch s.state {
		case slotEmpty:
			if insertAt < 0 {
				insertAt = i
			}
			return -1, false, insertAt
		case slotTombstone:
			if insertAt < 0 {
				insertAt = i
			}
		case slotOccupied:
			if t.equal(s.key, key) {
				return i, true, -1
			}
		}

		i++
		if i == capacity {
			i = 0
		}
	}
	return -1, false, insertAt
}

// resize doubles the capacity and reinserts the live entries. Tombstones
// are not carried over, so used equals live afterwards.
func (t *Table[K, V]) resize() {
	old := t.slots
	oldCapacity := len(old)
	newCapacity := oldCapacity * 2
	tombstones := t.used - t.live

	slots := make([]slot[K, V], newCapacity)
	for i := range old {
		s := &old[i]
		if s.state != slotOccupied {
			continue
		}
		j := hashIndex(t.hash(s.key), newCapacity)
		for slots[j].state != slotEmpty {
			j++
			if j == newCapacity {
				j = 0
			}
		}
		slots[j] = *s
	}

	t.slots = slots
	t.used = t.live
	t.growths++

	t.logger.Debug("oahash: table resized",
		zap.Int("old-capacity", oldCapacity),
		zap.Int("new-capacity", newCapacity),
		zap.Int("live", t.live),
		zap.Int("dropped-tombstones", tombstones))
}

func (t *Table[K, V]) hashKey(key K) (h uint64, err error) {
	var zero K
	if t.nilable && key == zero {
		return 0, ErrNilKey
	}
	if t.guardHash {
		defer func() {
			if r := recover(); r != nil {
				err = errors.Wrap(ErrUnhashableKey, fmt.Sprint(r))
			}
		}()
	}
	return t.hash(key), nil
}
