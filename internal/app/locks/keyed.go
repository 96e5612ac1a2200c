package locks

import "sync"

// Keyed hands out one mutex per key so admissions for independent offers
// never contend. Mutexes are retained for the life of the process; offer
// cardinality is small enough that this never matters.
type Keyed struct {
	mu    sync.Mutex
	items map[string]*sync.Mutex
}

func NewKeyed() *Keyed {
	return &Keyed{items: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *Keyed) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.items[key]
	if !ok {
		m = &sync.Mutex{}
		k.items[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
