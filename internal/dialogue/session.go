package dialogue

import "sync"

// sessionLocks serializes message handling per user. The matcher's per-user
// topic variable is read-modify-written during option resolution; two
// concurrent messages from the same user would leak the temporary override.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the user's session and returns the unlock function.
func (s *sessionLocks) acquire(userID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[userID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
