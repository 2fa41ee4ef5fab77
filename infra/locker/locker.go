// locker/locker.go
package locker

import "sync"

// Locker serializes work per transaction GUID. Events targeting the same
// transaction are mutually exclusive; different transactions proceed in
// parallel.
type Locker struct {
	mu   sync.Mutex
	cond *sync.Cond
	held map[string]bool
}

func New() *Locker {
	l := &Locker{
		held: make(map[string]bool),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Acquire blocks until the key is free, then holds it.
func (l *Locker) Acquire(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.held[key] {
		l.cond.Wait()
	}
	l.held[key] = true
}

// TryAcquire holds the key only if it is currently free.
func (l *Locker) TryAcquire(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false
	}
	l.held[key] = true
	return true
}

// Release frees the key and wakes blocked acquirers.
func (l *Locker) Release(key string) {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
	l.cond.Broadcast()
}
