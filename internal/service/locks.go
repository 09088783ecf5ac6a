package service

import "sync"

// keyedMutex serializes read-modify-write cycles per key (user id for bill
// issuance, meter number for reading appends). Entries are never removed;
// key cardinality is bounded by the number of users and meters.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (m *keyedMutex) get(key string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	return lock
}

// Lock acquires the mutex for key.
func (m *keyedMutex) Lock(key string) {
	m.get(key).Lock()
}

// Unlock releases the mutex for key.
func (m *keyedMutex) Unlock(key string) {
	m.get(key).Unlock()
}
