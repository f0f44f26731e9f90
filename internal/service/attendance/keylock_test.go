package attendance

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLock_SerializesSameKey(t *testing.T) {
	kl := newKeyLock()

	const workers = 50
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := kl.Lock("emp-1:2025-03-10")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, workers, counter)
}

func TestKeyLock_DifferentKeysDoNotBlock(t *testing.T) {
	kl := newKeyLock()

	unlockA := kl.Lock("emp-1:2025-03-10")
	done := make(chan struct{})
	go func() {
		unlockB := kl.Lock("emp-2:2025-03-10")
		unlockB()
		close(done)
	}()

	<-done // must complete while emp-1's lock is still held
	unlockA()
}

func TestKeyLock_EntriesAreReleased(t *testing.T) {
	kl := newKeyLock()

	for i := 0; i < 100; i++ {
		unlock := kl.Lock("emp-1:2025-03-10")
		unlock()
	}

	kl.mu.Lock()
	defer kl.mu.Unlock()
	assert.Empty(t, kl.locks)
}
