package daemon

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScheduler_ScheduleEvery(t *testing.T) {
	t.Run("returns job id for valid interval", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		id, err := s.ScheduleEvery("test", 10*time.Second, func() {})
		require.NoError(t, err)
		require.NotEmpty(t, id)
	})

	t.Run("rejects non-positive interval", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		_, err = s.ScheduleEvery("test", 0, func() {})
		require.Error(t, err)
	})

	t.Run("replaces previous registration", func(t *testing.T) {
		s, err := NewScheduler()
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Stop() })

		first, err := s.ScheduleEvery("test", time.Hour, func() {})
		require.NoError(t, err)
		second, err := s.ScheduleEvery("test", time.Minute, func() {})
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})
}

func TestScheduler_RunsTask(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	var runs atomic.Int32
	_, err = s.ScheduleEvery("tick", 20*time.Millisecond, func() {
		runs.Add(1)
	})
	require.NoError(t, err)

	s.Start()

	require.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, 5*time.Second, 10*time.Millisecond)
}

func TestScheduler_Remove(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	require.NoError(t, s.Remove("never-registered"))

	_, err = s.ScheduleEvery("test", time.Hour, func() {})
	require.NoError(t, err)
	require.NoError(t, s.Remove("test"))

	// Second removal is a no-op once the registration is gone.
	require.NoError(t, s.Remove("test"))
}
