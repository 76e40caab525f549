package schedule

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/solvent/internal/build"
	ferrors "git.home.luguber.info/inful/solvent/internal/foundation/errors"
)

func newScheduler(t *testing.T, opts ...Option) *Scheduler {
	t.Helper()
	s, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })
	return s
}

func TestScheduler_ScheduleCron(t *testing.T) {
	t.Run("returns job id for valid cron", func(t *testing.T) {
		s := newScheduler(t)
		id, err := s.ScheduleCron("nightly", "0 2 * * *", func() {})
		require.NoError(t, err)
		require.NotEmpty(t, id)

		jobs := s.Jobs()
		require.Len(t, jobs, 1)
		assert.Equal(t, "nightly", jobs[0].Name)
		assert.Equal(t, id, jobs[0].ID)
	})

	t.Run("rejects invalid cron", func(t *testing.T) {
		s := newScheduler(t)
		_, err := s.ScheduleCron("nightly", "this is not a cron", func() {})
		require.Error(t, err)
		assert.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	})
}

func TestScheduler_ScheduleEvery(t *testing.T) {
	t.Run("returns job id for valid interval", func(t *testing.T) {
		s := newScheduler(t)
		id, err := s.ScheduleEvery("periodic", 10*time.Second, func() {})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s := newScheduler(t)
		_, err := s.ScheduleEvery("periodic", 0, func() {})
		require.Error(t, err)
	})
}

func TestScheduler_RunsWithFakeClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := newScheduler(t, WithClock(clock))

	var runs atomic.Int32
	_, err := s.ScheduleEvery("periodic", time.Minute, func() { runs.Add(1) })
	require.NoError(t, err)
	s.Start()

	require.Eventually(t, func() bool {
		clock.Advance(time.Minute)
		return runs.Load() >= 2
	}, 5*time.Second, 10*time.Millisecond)
}

type fakeRunner struct {
	mu      sync.Mutex
	state   build.State
	targets []string
	err     error
}

func (r *fakeRunner) Execute(target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets = append(r.targets, target)
	return r.err
}

func (r *fakeRunner) State() build.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func TestBuildTask(t *testing.T) {
	s := newScheduler(t)

	idle := &fakeRunner{state: build.StateCompleted}
	s.BuildTask(idle, build.TargetClean)()
	assert.Equal(t, []string{"clean"}, idle.targets)

	busy := &fakeRunner{state: build.StateRunning}
	s.BuildTask(busy, build.TargetBuild)()
	assert.Empty(t, busy.targets)

	failing := &fakeRunner{state: build.StateIdle, err: ferrors.SpawnError("no tool").Build()}
	s.BuildTask(failing, build.TargetBuild)()
	assert.Equal(t, []string{"build"}, failing.targets)
}
