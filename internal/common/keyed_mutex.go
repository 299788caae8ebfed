package common

import "sync"

// KeyedMutex serializes writers per key. Ingestion locks the natural key
// (hotel_name|date) around each upsert so two batches touching the same
// record cannot interleave between the read and the write.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key, creating it on first use. Entries are
// kept for the process lifetime; the key space is bounded by the dataset.
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
}

func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	m := k.locks[key]
	k.mu.Unlock()

	if m != nil {
		m.Unlock()
	}
}
