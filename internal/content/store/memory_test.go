package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()

	select {
	case raw, ok := <-ch:
		require.True(t, ok, "updates channel closed")
		return raw
	case <-time.After(time.Second):
		t.Fatal("no snapshot received")
		return nil
	}
}

func TestMemoryBackendGetMerge(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend(zap.NewNop().Sugar())

	_, err := m.Get(ctx, "index")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Merge(ctx, "index", map[string]any{"hero": map[string]any{"title": "A"}}))
	require.NoError(t, m.Merge(ctx, "index", map[string]any{"hero": map[string]any{"subtitle": "B"}}))

	raw, err := m.Get(ctx, "index")
	require.NoError(t, err)
	assert.JSONEq(t, `{"hero":{"title":"A","subtitle":"B"}}`, string(raw))
}

func TestMemoryBackendWatch(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend(zap.NewNop().Sugar())
	m.Put("index", []byte(`{"v":1}`))

	w, err := m.Watch(ctx, "index")
	require.NoError(t, err)

	assert.JSONEq(t, `{"v":1}`, string(receive(t, w.Updates())))

	require.NoError(t, m.Merge(ctx, "index", map[string]any{"v": 2}))
	assert.JSONEq(t, `{"v":2}`, string(receive(t, w.Updates())))

	require.NoError(t, m.Merge(ctx, "other", map[string]any{"v": 3}))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Updates()
	assert.False(t, ok)

	require.NoError(t, m.Merge(ctx, "index", map[string]any{"v": 4}))
}

func TestMemoryBackendWatchKeepsNewest(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBackend(zap.NewNop().Sugar())

	w, err := m.Watch(ctx, "index")
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < watchBuffer*2; i++ {
		require.NoError(t, m.Merge(ctx, "index", map[string]any{"v": i}))
	}

	var last []byte
	for len(w.Updates()) > 0 {
		last = <-w.Updates()
	}
	assert.JSONEq(t, `{"v":31}`, string(last))
}

func TestMemoryBackendSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"index":{"hero":{"title":"Hei"}},"collection_blog":{"items":[]}}`), 0o600))

	m := NewMemoryBackend(zap.NewNop().Sugar())
	require.NoError(t, m.Seed(path))

	raw, err := m.Get(context.Background(), "index")
	require.NoError(t, err)
	assert.JSONEq(t, `{"hero":{"title":"Hei"}}`, string(raw))
}
