package usecase

import "sync"

// keyedLock serializes mutations per key (one credential, one time slot)
// without a global lock. Mutex entries are never evicted; the key space is
// bounded by live credentials and time slots.
type keyedLock struct {
	mus sync.Map
}

func (l *keyedLock) lock(key string) (unlock func()) {
	v, _ := l.mus.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
