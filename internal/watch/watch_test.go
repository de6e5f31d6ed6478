package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/KaramelBytes/agriassist-cli/internal/dataset"
	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDispatchesInputWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, nil)
	require.NoError(t, err)
	defer w.Close()

	var (
		mu    sync.Mutex
		calls []dataset.Kind
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, k dataset.Kind, path string) {
			mu.Lock()
			defer mu.Unlock()
			calls = append(calls, k)
		})
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "soil.csv"), []byte("soil_type,ph\nloam,6.5\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) > 0
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	for _, k := range calls {
		assert.Equal(t, dataset.Soil, k)
	}
}

func TestAcceptFiltersEvents(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir, nil)
	require.NoError(t, err)
	defer w.Close()

	path := filepath.Join(dir, "market_prices.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,crop,price\n"), 0o644))

	kind, got, ok := w.accept(fsnotify.Event{Name: path, Op: fsnotify.Write})
	require.True(t, ok)
	assert.Equal(t, dataset.Market, kind)
	assert.Equal(t, path, got)

	// same modification time is a duplicate
	_, _, ok = w.accept(fsnotify.Event{Name: path, Op: fsnotify.Write})
	assert.False(t, ok)

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	_, _, ok = w.accept(fsnotify.Event{Name: path, Op: fsnotify.Write})
	assert.True(t, ok)

	_, _, ok = w.accept(fsnotify.Event{Name: path, Op: fsnotify.Remove})
	assert.False(t, ok)

	clean := filepath.Join(dir, "market_prices_clean.csv")
	require.NoError(t, os.WriteFile(clean, []byte("x"), 0o644))
	_, _, ok = w.accept(fsnotify.Event{Name: clean, Op: fsnotify.Write})
	assert.False(t, ok)
}

func TestNewMissingDir(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing"), nil)
	assert.Error(t, err)
}
