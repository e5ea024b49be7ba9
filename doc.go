/*
Package oahash provides an in-memory hash table built on open addressing
with linear probing.

Table maps any comparable key type to any value type. Collisions are
resolved by stepping forward one slot at a time, wrapping at the end of
the slot array. Removing a key leaves a tombstone in its slot so that keys
further along the same probe chain stay reachable; tombstones are dropped
the next time the table grows.

Basic usage:

	import "github.com/theflywheel/oahash"

	t, err := oahash.New[string, int](
		oahash.WithCapacity(64),
		oahash.WithLoadFactor(0.5),
	)
	if err != nil {
		log.Fatal(err)
	}

	t.Put("apples", 3)
	t.Put("pears", 0)

	// A stored zero value is still reported as present.
	if v, ok, _ := t.Get("pears"); ok {
		fmt.Println("pears:", v)
	}

	prev, loaded, _ := t.Remove("apples")
	fmt.Println(prev, loaded, t.Size())

Features:

  - Generic keys and values; keys need only be comparable
  - Absence reported through a boolean, never a sentinel value
  - Tombstone deletion, no backward shifting
  - Inserts reuse the first tombstone on their probe chain, so churn on a
    stable key set delays the next resize
  - Doubling resize once live plus tombstoned slots exceed
    capacity*loadFactor (default 0.5)
  - Capacity used exactly as given, default 1024 slots
  - Pluggable hash and equality through WithHasher and WithKeyEqual

Hashing:

Keys whose type has a Hash() uint64 method use it. String keys are hashed
with xxhash. All other keys use hash/maphash.Comparable with a seed chosen
per table. The hash is reduced to a slot index with an unsigned modulo, so
every hash value maps into [0, capacity).

Nil keys:

Unlike Go maps, a Table refuses nil keys. Put, Get and Remove return
ErrNilKey for a nil pointer, nil interface or nil channel key, and
ErrUnhashableKey for an interface key holding, for example, a slice.

Concurrency:

A Table is not safe for concurrent use. Callers that share one across
goroutines must guard it with their own lock.
*/
package oahash
