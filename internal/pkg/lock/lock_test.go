package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLock_SerializesSameUser(t *testing.T) {
	ul := NewUserLock()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ul.Lock(1)
			counter++
			ul.Unlock(1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestUserLock_IndependentUsers(t *testing.T) {
	ul := NewUserLock()

	ul.Lock(1)
	// A different user's lock must not block.
	acquired := ul.TryLock(2)
	require.True(t, acquired)
	ul.Unlock(2)
	ul.Unlock(1)
}

func TestUserLock_TryLockHeld(t *testing.T) {
	ul := NewUserLock()

	ul.Lock(1)
	assert.False(t, ul.TryLock(1))
	ul.Unlock(1)
	assert.True(t, ul.TryLock(1))
	ul.Unlock(1)
}

func TestUserLock_WithLock(t *testing.T) {
	ul := NewUserLock()

	called := false
	err := ul.WithLock(1, func() error {
		called = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)

	// The lock is released after WithLock returns.
	assert.True(t, ul.TryLock(1))
	ul.Unlock(1)
}
