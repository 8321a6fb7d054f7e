package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ExpiryAndSweep(t *testing.T) {
	st := NewMemoryStore()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, Session{ID: "short", UserID: "u1"}, time.Minute))
	require.NoError(t, st.Save(ctx, Session{ID: "long", UserID: "u2"}, time.Hour))

	_, err := st.Load(ctx, "short")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = st.Load(ctx, "short")
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, 2, st.Len())

	assert.Equal(t, 1, st.Sweep())
	assert.Equal(t, 1, st.Len())

	got, err := st.Load(ctx, "long")
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := string(rune('a' + i%26))
			_ = st.Save(ctx, Session{ID: id}, time.Minute)
			_, _ = st.Load(ctx, id)
			_ = st.Delete(ctx, id)
		}(i)
	}
	wg.Wait()
}

func TestMemoryStore_Sweeper(t *testing.T) {
	st := NewMemoryStore()
	require.NoError(t, st.Save(context.Background(), Session{ID: "gone"}, time.Millisecond))
	require.NoError(t, st.StartSweeper(50*time.Millisecond))
	defer st.StopSweeper()

	assert.Eventually(t, func() bool { return st.Len() == 0 }, 2*time.Second, 20*time.Millisecond)
}
