package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/solvent/internal/config"
	"git.home.luguber.info/inful/solvent/internal/retry"
	"git.home.luguber.info/inful/solvent/internal/solution"
)

type countingReloader struct {
	path     string
	count    atomic.Int32
	failures int32 // reloads that fail before one succeeds
	mu    sync.Mutex
	seen  []string
}

func (r *countingReloader) Path() string { return r.path }

func (r *countingReloader) Reload() (*solution.Solution, error) {
	if n := r.count.Add(1); n <= r.failures {
		return nil, errors.New("solution is being written")
	}
	data, err := os.ReadFile(r.path)
	r.mu.Lock()
	r.seen = append(r.seen, string(data))
	r.mu.Unlock()
	return nil, err
}

func startWatcher(t *testing.T, debounce time.Duration, opts ...Option) (*countingReloader, string) {
	t.Helper()
	return startWatcherWith(t, &countingReloader{}, append([]Option{WithDebounce(debounce)}, opts...)...)
}

func startWatcherWith(t *testing.T, r *countingReloader, opts ...Option) (*countingReloader, string) {
	t.Helper()
	dir := t.TempDir()
	r.path = filepath.Join(dir, "app.sln")
	require.NoError(t, os.WriteFile(r.path, []byte("v0"), 0o600))

	w, err := New(r, opts...)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(w.Stop)
	return r, dir
}

func TestSolutionWatcher_DebouncesWrites(t *testing.T) {
	r, _ := startWatcher(t, 200*time.Millisecond)

	for i := 1; i <= 5; i++ {
		require.NoError(t, os.WriteFile(r.path, []byte{byte('0' + i)}, 0o600))
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return r.count.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, int32(1), r.count.Load())

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, []string{"5"}, r.seen)
}

func TestSolutionWatcher_IgnoresOtherFiles(t *testing.T) {
	r, dir := startWatcher(t, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.sln"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.sln.user"), []byte("x"), 0o600))
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(0), r.count.Load())
}

func TestSolutionWatcher_AtomicReplace(t *testing.T) {
	r, dir := startWatcher(t, 50*time.Millisecond)

	tmp := filepath.Join(dir, "app.sln.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("replaced"), 0o600))
	require.NoError(t, os.Rename(tmp, r.path))

	require.Eventually(t, func() bool { return r.count.Load() >= 1 }, 5*time.Second, 20*time.Millisecond)
}

func TestSolutionWatcher_StopIsIdempotent(t *testing.T) {
	r := &countingReloader{path: filepath.Join(t.TempDir(), "app.sln")}
	w, err := New(r)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}

func TestSolutionWatcher_RetriesFailedReload(t *testing.T) {
	policy := retry.NewPolicy(config.RetryBackoffFixed, 20*time.Millisecond, 20*time.Millisecond, 3)
	r, _ := startWatcherWith(t, &countingReloader{failures: 2}, WithDebounce(50*time.Millisecond), WithRetry(policy))

	require.NoError(t, os.WriteFile(r.path, []byte("v1"), 0o600))

	require.Eventually(t, func() bool { return r.count.Load() >= 3 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(3), r.count.Load())

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Equal(t, []string{"v1"}, r.seen)
}

func TestSolutionWatcher_GivesUpAfterMaxRetries(t *testing.T) {
	policy := retry.NewPolicy(config.RetryBackoffLinear, 10*time.Millisecond, 30*time.Millisecond, 2)
	r, _ := startWatcherWith(t, &countingReloader{failures: 100}, WithDebounce(50*time.Millisecond), WithRetry(policy))

	require.NoError(t, os.WriteFile(r.path, []byte("v1"), 0o600))

	require.Eventually(t, func() bool { return r.count.Load() >= 3 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(3), r.count.Load())
}
