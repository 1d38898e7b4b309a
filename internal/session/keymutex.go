package session

import "sync"

// KeyedMutex serializes whole critical sections per session id. Unlike the
// store's shard locks, a keyed lock may be held across durable-store calls:
// each key owns its own mutex, so a slow write for one session never blocks
// another. Mutexes are created on first use and kept for the process
// lifetime; the key space is bounded by the active fleet size.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex constructs a keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock function.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
