package service

import "sync"

// investorLocks serializes fund-flow processing per investor. Two concurrent
// Process calls for the same investor would race on current_shares and
// net_investment; holding the investor's mutex for the whole transition keeps
// the read-compute-write cycle atomic. Locks are never removed: the map grows
// by one small entry per investor ever processed, and investor records are
// retained forever anyway.
type investorLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newInvestorLocks() *investorLocks {
	return &investorLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for one investor, creating it on first use, and
// returns the unlock function.
func (l *investorLocks) Lock(investorID string) func() {
	l.mu.Lock()
	lock, ok := l.locks[investorID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[investorID] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
