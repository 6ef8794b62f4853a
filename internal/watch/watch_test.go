package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("density: ball\n"), 0o644))

	var calls atomic.Int32
	fired := make(chan string, 4)
	w, err := New(path, func(p string) {
		calls.Add(1)
		fired <- p
	}, Options{Debounce: 100 * time.Millisecond})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx), "second start is a no-op")

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("density: solid\n"), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	select {
	case p := <-fired:
		assert.Equal(t, w.Path(), p)
	case <-time.After(3 * time.Second):
		t.Fatal("handler never fired")
	}
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst collapses into one reload")
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.yaml")
	require.NoError(t, os.WriteFile(path, []byte("density: ball\n"), 0o644))

	fired := make(chan string, 1)
	w, err := New(path, func(p string) { fired <- p }, Options{Debounce: 50 * time.Millisecond})
	require.NoError(t, err)
	defer w.Stop()
	require.NoError(t, w.Start(context.Background()))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))
	select {
	case <-fired:
		t.Fatal("sibling file triggered a reload")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestNewRequiresHandler(t *testing.T) {
	_, err := New("scene.yaml", nil, Options{})
	assert.Error(t, err)
}
