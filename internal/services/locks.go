package services

import "sync"

// tenderLocks hands out one mutex per tender so writes for the same tender are
// processed one at a time inside this process. Repositories add their own
// cross-process serialization.
type tenderLocks struct {
	mu    sync.Mutex
	locks map[string]*tenderLock
}

type tenderLock struct {
	mu   sync.Mutex
	refs int
}

func newTenderLocks() *tenderLocks {
	return &tenderLocks{locks: make(map[string]*tenderLock)}
}

// Lock blocks until the tender's lock is held and returns its release func.
func (l *tenderLocks) Lock(tenderID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[tenderID]
	if !ok {
		lock = &tenderLock{}
		l.locks[tenderID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	lock.mu.Lock()

	return func() {
		lock.mu.Unlock()

		l.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(l.locks, tenderID)
		}
		l.mu.Unlock()
	}
}
