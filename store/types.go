package store

import "github.com/iov-one/custody"

// Move references for all storage types into this package
// for shorter names everywhere

type KVStore = custody.KVStore
type ReadOnlyKVStore = custody.ReadOnlyKVStore
type SetDeleter = custody.SetDeleter
type CacheableKVStore = custody.CacheableKVStore
type KVCacheWrap = custody.KVCacheWrap

// Batch can write multiple ops to an underlying store at once.
type Batch interface {
	SetDeleter
	Write()
}
