package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codexbridge/codex-bridge/bridge/delegate/adapters"
)

func TestInvalidatorDropsEntriesOnWrite(t *testing.T) {
	cache := adapters.NewLRUCache(8, time.Minute)
	inv, err := NewInvalidator(cache, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = inv.Close() })

	dir := t.TempDir()
	cache.Put("key-1", dir, "v1")
	cache.Put("key-2", dir, "v2")
	cache.Put("other", "/elsewhere", "v3")

	require.NoError(t, inv.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go inv.Run(ctx)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "touched.go"), []byte("package x\n"), 0o644))

	assert.Eventually(t, func() bool {
		_, ok1 := cache.Get("key-1")
		_, ok2 := cache.Get("key-2")
		return !ok1 && !ok2
	}, 2*time.Second, 10*time.Millisecond, "entries for the written directory should be dropped")

	_, ok := cache.Get("other")
	assert.True(t, ok, "entries for other directories must survive")
}

func TestInvalidatorWatchIsIdempotent(t *testing.T) {
	cache := adapters.NewLRUCache(4, time.Minute)
	inv, err := NewInvalidator(cache, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = inv.Close() })

	dir := t.TempDir()
	require.NoError(t, inv.Watch(dir))
	require.NoError(t, inv.Watch(dir))
}

func TestInvalidatorWatchRejectsMissingDir(t *testing.T) {
	cache := adapters.NewLRUCache(4, time.Minute)
	inv, err := NewInvalidator(cache, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = inv.Close() })

	assert.Error(t, inv.Watch(filepath.Join(t.TempDir(), "missing")))
}
