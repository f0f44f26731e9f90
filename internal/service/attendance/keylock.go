package attendance

import "sync"

// keyLock serializes work per string key. Punch writes lock their
// (employeeID, date) key so the strict-alternation check and the append are
// atomic per employee-day, while unrelated employees punch in parallel.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*keyLockEntry
}

type keyLockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*keyLockEntry)}
}

// Lock acquires the mutex for key and returns its unlock func. Entries are
// reference-counted and removed once the last holder releases, so the map
// does not grow with every employee-day ever seen.
func (k *keyLock) Lock(key string) func() {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &keyLockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		k.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
