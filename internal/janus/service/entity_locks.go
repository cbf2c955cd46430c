package service

import "sync"

// entityLocks hands out one mutex per entity key so taps touching the
// same card or zone serialize while unrelated taps run in parallel.
// Entries are never evicted; the map is bounded by the number of
// distinct cards and zones ever tapped, which is small.
type entityLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newEntityLocks() *entityLocks {
	return &entityLocks{m: make(map[string]*sync.Mutex)}
}

func (l *entityLocks) get(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	em, ok := l.m[key]
	if !ok {
		em = &sync.Mutex{}
		l.m[key] = em
	}
	return em
}

// lock acquires the mutex for key and returns its unlock func.
func (l *entityLocks) lock(key string) func() {
	em := l.get(key)
	em.Lock()
	return em.Unlock
}
