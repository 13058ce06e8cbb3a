package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerSerializesPerKey(t *testing.T) {
	locker := NewLocalLocker()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "reconcile:RSL-F2FA9D", time.Second)
			require.NoError(t, err)
			defer release()

			// Unsynchronized on purpose; the lock is the synchronization.
			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, counter)
}

func TestLocalLockerIndependentKeys(t *testing.T) {
	locker := NewLocalLocker()

	release1, err := locker.Acquire(context.Background(), "reconcile:RSL-AAAAAA", time.Second)
	require.NoError(t, err)
	defer release1()

	// A different key must not block.
	done := make(chan struct{})
	go func() {
		release2, err := locker.Acquire(context.Background(), "reconcile:RSL-BBBBBB", time.Second)
		assert.NoError(t, err)
		release2()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("acquiring an independent key blocked")
	}
}
