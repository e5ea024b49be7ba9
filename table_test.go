package oahash_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theflywheel/oahash"
)

func TestBasicOperations(t *testing.T) {
	tbl, err := oahash.New[int, int]()
	require.NoError(t, err)
	require.Equal(t, oahash.DefaultCapacity, tbl.Capacity())

	for i := 0; i < 10; i++ {
		_, loaded, err := tbl.Put(i, i*100)
		require.NoError(t, err)
		require.False(t, loaded, "key %d", i)
	}
	require.Equal(t, 10, tbl.Size())

	for i := 0; i < 10; i++ {
		v, ok, err := tbl.Get(i)
		require.NoError(t, err)
		require.True(t, ok, "key %d not found", i)
		assert.Equal(t, i*100, v)
	}

	_, ok, err := tbl.Get(10)
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestWorkedExample walks through a four-slot table with load factor 0.5.
func TestWorkedExample(t *testing.T) {
	tbl, err := oahash.New[string, int](oahash.WithCapacity(4), oahash.WithLoadFactor(0.5))
	require.NoError(t, err)

	_, loaded, err := tbl.Put("a", 1)
	require.NoError(t, err)
	require.False(t, loaded)
	require.Equal(t, 1, tbl.Size())

	// used(2) > 4*0.5 is false, no resize yet
	_, loaded, err = tbl.Put("b", 2)
	require.NoError(t, err)
	require.False(t, loaded)
	require.Equal(t, 2, tbl.Size())
	require.Equal(t, 4, tbl.Capacity())

	_, loaded, err = tbl.Put("c", 3)
	require.NoError(t, err)
	require.False(t, loaded)
	require.Equal(t, 3, tbl.Size())
	require.Equal(t, 8, tbl.Capacity())

	for k, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		v, ok, err := tbl.Get(k)
		require.NoError(t, err)
		require.True(t, ok, k)
		require.Equal(t, want, v, k)
	}

	prev, loaded, err := tbl.Remove("b")
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, 2, prev)
	require.Equal(t, 2, tbl.Size())

	_, ok, err := tbl.Get("b")
	require.NoError(t, err)
	require.False(t, ok)
}

// TestOverwrite tests overwriting existing keys
func TestOverwrite(t *testing.T) {
	tbl := oahash.MustNew[string, string]()

	_, loaded, err := tbl.Put("k", "v1")
	require.NoError(t, err)
	require.False(t, loaded)
	require.Equal(t, 1, tbl.Size())

	prev, loaded, err := tbl.Put("k", "v2")
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, "v1", prev)
	require.Equal(t, 1, tbl.Size())

	v, ok, err := tbl.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "v2", v)
}

func TestRemove(t *testing.T) {
	tbl := oahash.MustNew[int, string](oahash.WithCapacity(16))

	_, loaded, err := tbl.Remove(7)
	require.NoError(t, err)
	require.False(t, loaded, "removing an absent key")
	require.Equal(t, 0, tbl.Size())

	_, _, err = tbl.Put(7, "seven")
	require.NoError(t, err)

	prev, loaded, err := tbl.Remove(7)
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, "seven", prev)
	require.Equal(t, 0, tbl.Size())

	_, loaded, err = tbl.Remove(7)
	require.NoError(t, err)
	require.False(t, loaded, "second remove")

	// Re-adding after a remove lands on the tombstone and is retrievable.
	_, loaded, err = tbl.Put(7, "again")
	require.NoError(t, err)
	require.False(t, loaded)
	v, ok, err := tbl.Get(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "again", v)
	require.Equal(t, 1, tbl.Size())
}

// TestZeroValueIsNotAbsent makes sure a stored zero value is reported as present.
func TestZeroValueIsNotAbsent(t *testing.T) {
	tbl := oahash.MustNew[string, int]()

	_, _, err := tbl.Put("zero", 0)
	require.NoError(t, err)

	v, ok, err := tbl.Get("zero")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 0, v)

	prev, loaded, err := tbl.Remove("zero")
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, 0, prev)
}

func TestInvalidConstruction(t *testing.T) {
	testCases := []struct {
		name string
		opts []oahash.Option
		want error
	}{
		{"ZeroCapacity", []oahash.Option{oahash.WithCapacity(0)}, oahash.ErrInvalidCapacity},
		{"NegativeCapacity", []oahash.Option{oahash.WithCapacity(-5)}, oahash.ErrInvalidCapacity},
		{"ZeroLoadFactor", []oahash.Option{oahash.WithLoadFactor(0)}, oahash.ErrInvalidLoadFactor},
		{"NegativeLoadFactor", []oahash.Option{oahash.WithLoadFactor(-0.5)}, oahash.ErrInvalidLoadFactor},
		{"LoadFactorAboveOne", []oahash.Option{oahash.WithLoadFactor(1.01)}, oahash.ErrInvalidLoadFactor},
		{"NaNLoadFactor", []oahash.Option{oahash.WithLoadFactor(math.NaN())}, oahash.ErrInvalidLoadFactor},
		{"WrongHasherType", []oahash.Option{oahash.WithHasher(func(s string) uint64 { return 0 })}, oahash.ErrInvalidOption},
		{"WrongEqualType", []oahash.Option{oahash.WithKeyEqual(func(a, b string) bool { return a == b })}, oahash.ErrInvalidOption},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tbl, err := oahash.New[int, int](tc.opts...)
			require.Nil(t, tbl)
			require.Error(t, err)
			require.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}

	require.Panics(t, func() {
		oahash.MustNew[int, int](oahash.WithCapacity(0))
	})
}

func TestLoadFactorOne(t *testing.T) {
	tbl := oahash.MustNew[int, int](oahash.WithCapacity(2), oahash.WithLoadFactor(1))

	for i := 0; i < 2; i++ {
		_, _, err := tbl.Put(i, i)
		require.NoError(t, err)
	}
	// Full table, no empty slot left to end a probe run.
	require.Equal(t, 2, tbl.Capacity())
	_, ok, err := tbl.Get(99)
	require.NoError(t, err)
	require.False(t, ok)

	_, _, err = tbl.Put(2, 2)
	require.NoError(t, err)
	require.Equal(t, 4, tbl.Capacity())

	for i := 0; i < 3; i++ {
		v, ok, err := tbl.Get(i)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestNilKeys(t *testing.T) {
	tbl := oahash.MustNew[*int, string]()

	_, _, err := tbl.Put(nil, "x")
	require.True(t, errors.Is(err, oahash.ErrNilKey))
	_, _, err = tbl.Get(nil)
	require.True(t, errors.Is(err, oahash.ErrNilKey))
	_, _, err = tbl.Remove(nil)
	require.True(t, errors.Is(err, oahash.ErrNilKey))
	require.Equal(t, 0, tbl.Size())

	one := 1
	_, _, err = tbl.Put(&one, "one")
	require.NoError(t, err)
	v, ok, err := tbl.Get(&one)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "one", v)

	itbl := oahash.MustNew[any, int]()
	_, _, err = itbl.Put(nil, 1)
	require.True(t, errors.Is(err, oahash.ErrNilKey))
}

func TestUnhashableKey(t *testing.T) {
	tbl := oahash.MustNew[any, int]()

	_, _, err := tbl.Put([]int{1, 2}, 1)
	require.True(t, errors.Is(err, oahash.ErrUnhashableKey), "got %v", err)
	_, _, err = tbl.Get(map[string]int{})
	require.True(t, errors.Is(err, oahash.ErrUnhashableKey), "got %v", err)
	require.Equal(t, 0, tbl.Size())

	// Mixed comparable dynamic types are fine.
	_, _, err = tbl.Put("1", 1)
	require.NoError(t, err)
	_, _, err = tbl.Put(1, 2)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Size())

	v, ok, err := tbl.Get(1)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, v)
}

type point struct {
	X, Y int
}

// TestEqualityNotIdentity checks that distinct but equal key values are the same key.
func TestEqualityNotIdentity(t *testing.T) {
	tbl := oahash.MustNew[point, string]()

	_, _, err := tbl.Put(point{1, 2}, "first")
	require.NoError(t, err)

	p := point{X: 1}
	p.Y = 2
	prev, loaded, err := tbl.Put(p, "second")
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, "first", prev)
	require.Equal(t, 1, tbl.Size())

	// Strings built at runtime share no backing array with the literal.
	stbl := oahash.MustNew[string, int]()
	_, _, err = stbl.Put("hello", 1)
	require.NoError(t, err)
	b := []byte("hel")
	b = append(b, "lo"...)
	prev2, loaded, err := stbl.Put(string(b), 2)
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, 1, prev2)
}

type caseless string

func TestCustomHasherAndEqual(t *testing.T) {
	lower := func(s caseless) string {
		out := []byte(s)
		for i, c := range out {
			if 'A' <= c && c <= 'Z' {
				out[i] = c + 'a' - 'A'
			}
		}
		return string(out)
	}
	tbl, err := oahash.New[caseless, int](
		oahash.WithHasher(func(k caseless) uint64 {
			var h uint64
			for _, c := range []byte(lower(k)) {
				h = h*31 + uint64(c)
			}
			return h
		}),
		oahash.WithKeyEqual(func(a, b caseless) bool { return lower(a) == lower(b) }),
	)
	require.NoError(t, err)

	_, _, err = tbl.Put("Hello", 1)
	require.NoError(t, err)
	prev, loaded, err := tbl.Put("HELLO", 2)
	require.NoError(t, err)
	require.True(t, loaded)
	require.Equal(t, 1, prev)

	v, ok, err := tbl.Get("hello")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, v)
}

// TestHighBitHashes feeds hashes that would be negative as signed integers.
func TestHighBitHashes(t *testing.T) {
	tbl := oahash.MustNew[int, int](
		oahash.WithCapacity(7),
		oahash.WithHasher(func(k int) uint64 { return math.MaxUint64 - uint64(k) }),
	)
	for i := 0; i < 100; i++ {
		_, _, err := tbl.Put(i, -i)
		require.NoError(t, err)
	}
	for i := 0; i < 100; i++ {
		v, ok, err := tbl.Get(i)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, -i, v)
	}
}

type userID struct {
	tenant string
	id     int64
}

func (u userID) Hash() uint64 {
	return uint64(u.id) * 0x9E3779B97F4A7C15
}

type hashCalls struct {
	name string
}

var hashCallCount int

func (h *hashCalls) Hash() uint64 {
	hashCallCount++
	return uint64(len(h.name))
}

func TestHasherInterface(t *testing.T) {
	tbl := oahash.MustNew[userID, string]()
	_, _, err := tbl.Put(userID{"acme", 1}, "a")
	require.NoError(t, err)
	_, _, err = tbl.Put(userID{"globex", 1}, "b")
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Size(), "same hash, different keys")

	v, ok, err := tbl.Get(userID{"globex", 1})
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "b", v)

	// Pointer-receiver Hash on a value key type.
	hashCallCount = 0
	ptbl := oahash.MustNew[hashCalls, int]()
	_, _, err = ptbl.Put(hashCalls{"abc"}, 1)
	require.NoError(t, err)
	require.Equal(t, 1, hashCallCount)
}
