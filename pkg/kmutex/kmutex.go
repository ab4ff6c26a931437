// Package kmutex provides a keyed mutex: callers lock individual string
// keys, operations on distinct keys proceed concurrently while operations
// on the same key are serialized.
package kmutex

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

type KMutex struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *KMutex {
	return &KMutex{entries: make(map[string]*entry)}
}

// Lock blocks until the key's mutex is held by the caller.
func (k *KMutex) Lock(key string) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the key's mutex. The entry is dropped once nobody waits
// on it, so the map does not grow with the key space.
func (k *KMutex) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		k.mu.Unlock()
		panic("kmutex: unlock of unlocked key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
