package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/weather-favourites/internal/config"
	"github.com/iliyamo/weather-favourites/internal/utils"
)

func newManager(t *testing.T) (*Manager, *MemoryStore) {
	t.Helper()
	st := NewMemoryStore()
	return NewManager(st, config.SessionConfig{Secret: "test-secret-0123456789", TTL: time.Hour}), st
}

func TestManager_StartResolveDestroy(t *testing.T) {
	m, st := newManager(t)
	ctx := context.Background()

	s, tok, err := m.Start(ctx, "u1", "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.UserID)
	assert.NotEmpty(t, tok.Token)
	assert.Equal(t, 1, st.Len())

	got, err := m.Resolve(ctx, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "a@x.com", got.Email)

	require.NoError(t, m.Destroy(ctx, tok.Token))
	_, err = m.Resolve(ctx, tok.Token)
	assert.ErrorIs(t, err, ErrNoSession)
	assert.Equal(t, 0, st.Len())
}

func TestManager_EachStartIsANewSession(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	a, _, err := m.Start(ctx, "u1", "a@x.com")
	require.NoError(t, err)
	b, _, err := m.Start(ctx, "u1", "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestManager_Resolve_Anonymous(t *testing.T) {
	m, _ := newManager(t)
	ctx := context.Background()

	forged, err := utils.SignSessionToken("someone-else", "sid", time.Hour)
	require.NoError(t, err)
	orphan, err := utils.SignSessionToken("test-secret-0123456789", "never-saved", time.Hour)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"empty":   "",
		"garbage": "abc",
		"forged":  forged.Token,
		"orphan":  orphan.Token,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Resolve(ctx, tok)
			assert.ErrorIs(t, err, ErrNoSession)
		})
	}
}

func TestManager_Destroy_IsUnconditional(t *testing.T) {
	m, _ := newManager(t)
	assert.NoError(t, m.Destroy(context.Background(), ""))
	assert.NoError(t, m.Destroy(context.Background(), "junk"))
	assert.NoError(t, m.DestroyID(context.Background(), ""))
	assert.NoError(t, m.DestroyID(context.Background(), "unknown"))
}

type failingStore struct{ MemoryStore }

func (f *failingStore) Save(context.Context, Session, time.Duration) error {
	return errors.New("store down")
}

func TestManager_Start_StoreError(t *testing.T) {
	m := NewManager(&failingStore{}, config.SessionConfig{Secret: "s", TTL: time.Minute})
	_, _, err := m.Start(context.Background(), "u1", "a@x.com")
	assert.EqualError(t, err, "store down")
}

func TestNewManager_PanicsWithoutStore(t *testing.T) {
	assert.Panics(t, func() { NewManager(nil, config.SessionConfig{}) })
}
