package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_EstablishAndResolve(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, time.Hour, nil)

	h := NewHandle("")
	ctx := WithHandle(context.Background(), h)

	require.NoError(t, m.Establish(ctx, 42))
	assert.True(t, h.Changed())
	require.NotEmpty(t, h.ID())

	userID, ok, err := m.Resolve(ctx, h.ID())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
}

func TestManager_EstablishReplacesPreviousSession(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, time.Hour, nil)
	require.NoError(t, store.Set(context.Background(), "old", 7, time.Hour))

	h := NewHandle("old")
	ctx := WithHandle(context.Background(), h)
	require.NoError(t, m.Establish(ctx, 7))

	assert.NotEqual(t, "old", h.ID())
	_, ok, err := m.Resolve(ctx, "old")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len())
}

func TestManager_Destroy(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(store, time.Hour, nil)

	h := NewHandle("")
	ctx := WithHandle(context.Background(), h)
	require.NoError(t, m.Establish(ctx, 1))
	id := h.ID()

	require.NoError(t, m.Destroy(ctx))
	assert.Empty(t, h.ID())
	assert.True(t, h.Changed())

	_, ok, err := m.Resolve(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_ResolveUnknown(t *testing.T) {
	m := NewManager(NewMemoryStore(), time.Hour, nil)

	_, ok, err := m.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = m.Resolve(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Set(context.Background(), "s", 3, time.Minute))
	got, err := store.Get(context.Background(), "s")
	require.NoError(t, err)
	assert.Equal(t, int64(3), got)

	now = now.Add(2 * time.Minute)
	_, err = store.Get(context.Background(), "s")
	assert.ErrorIs(t, err, ErrNoSession)
}
