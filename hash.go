package oahash

import (
	"hash/maphash"
	"reflect"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Hasher is implemented by key types that compute their own hash. Keys
// that are equal must return the same hash.
//
// Usage:
//
//	type UserID struct {
//		Tenant string
//		ID     int64
//	}
//
//	func (u UserID) Hash() uint64 {
//		return xxhash.Sum64String(u.Tenant) ^ uint64(u.ID)
//	}
type Hasher interface {
	Hash() uint64
}

var hasherType = reflect.TypeFor[Hasher]()

// defaultHasher picks the hash for K in this order: a Hash method on K or
// *K, xxhash for string kinds, and the runtime's comparable hash for
// everything else.
func defaultHasher[K comparable]() func(K) uint64 {
	typ := reflect.TypeFor[K]()
	switch {
	case typ.Implements(hasherType):
		return func(key K) uint64 {
			return any(key).(Hasher).Hash()
		}
	case reflect.PointerTo(typ).Implements(hasherType):
		return func(key K) uint64 {
			return any(&key).(Hasher).Hash()
		}
	case typ.Kind() == reflect.String:
		return func(key K) uint64 {
			return xxhash.Sum64String(*(*string)(unsafe.Pointer(&key)))
		}
	default:
		seed := maphash.MakeSeed()
		return func(key K) uint64 {
			return maphash.Comparable(seed, key)
		}
	}
}

// hashIndex maps a hash onto [0, capacity). The modulo is taken on the
// unsigned value so a hash with the top bit set never yields a negative
// index.
func hashIndex(hash uint64, capacity int) int {
	return int(hash % uint64(capacity))
}

// nilableKind reports whether the zero value of typ is a nil reference.
func nilableKind(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

// holdsInterface reports whether hashing a value of typ can reach an
// interface, whose dynamic type may turn out to be unhashable.
func holdsInterface(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Interface:
		return true
	case reflect.Array:
		return holdsInterface(typ.Elem())
	case reflect.Struct:
		for i := 0; i < typ.NumField(); i++ {
			if holdsInterface(typ.Field(i).Type) {
				return true
			}
		}
	}
	return false
}
