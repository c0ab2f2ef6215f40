package quiz

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_CreateGetDelete(t *testing.T) {
	store := NewStore(0)

	_, ok := store.Get(1)
	assert.False(t, ok)

	sess := store.CreateOrReset(1)
	require.NotNil(t, sess)

	got, ok := store.Get(1)
	require.True(t, ok)
	assert.Same(t, sess, got)

	store.Delete(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
}

func TestStore_CreateOrResetDiscardsProgress(t *testing.T) {
	store := NewStore(0)

	sess := store.CreateOrReset(1)
	sess.Score = 3
	sess.Total = 4

	fresh := store.CreateOrReset(1)
	assert.Equal(t, 0, fresh.Score)
	assert.Equal(t, 0, fresh.Total)
}

func TestStore_PerUserIndependence(t *testing.T) {
	store := NewStore(0)

	a := store.CreateOrReset(1)
	b := store.CreateOrReset(2)
	a.Score = 5

	assert.Equal(t, 0, b.Score)

	store.Delete(1)
	_, ok := store.Get(2)
	assert.True(t, ok)
}

func TestStore_SweepEvictsIdleSessions(t *testing.T) {
	store := NewStore(time.Hour)

	store.CreateOrReset(1)
	store.CreateOrReset(2)

	// Backdate user 1's session past the TTL.
	store.mu.Lock()
	store.sessions[1].touchedAt = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	evicted := store.sweep(time.Now())
	assert.Equal(t, 1, evicted)

	_, ok := store.Get(1)
	assert.False(t, ok)
	_, ok = store.Get(2)
	assert.True(t, ok, "an active session must survive the sweep")
}

func TestStore_GetTouchesSession(t *testing.T) {
	store := NewStore(time.Hour)

	store.CreateOrReset(1)
	store.mu.Lock()
	store.sessions[1].touchedAt = time.Now().Add(-2 * time.Hour)
	store.mu.Unlock()

	// An access refreshes the session, so the sweep keeps it.
	_, ok := store.Get(1)
	require.True(t, ok)

	assert.Equal(t, 0, store.sweep(time.Now()))
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(0)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		userID := int64(i % 10)
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.CreateOrReset(userID)
			store.Get(userID)
			store.Delete(userID)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, store.Len(), 10)
}
