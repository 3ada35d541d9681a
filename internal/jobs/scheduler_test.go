package jobs

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMountRunsPeriodically(t *testing.T) {
	s := NewScheduler(zerolog.Nop())
	s.Start()
	defer s.Stop()

	var runs atomic.Int32
	s.Mount("sess-1", time.Second, func() { runs.Add(1) })

	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestMountIsReferenceCounted(t *testing.T) {
	s := NewScheduler(zerolog.Nop())

	s.Mount("sess-1", time.Minute, func() {})
	s.Mount("sess-1", time.Minute, func() {})
	assert.Len(t, s.cron.Entries(), 1)

	s.Release("sess-1")
	assert.True(t, s.Mounted("sess-1"))

	s.Release("sess-1")
	assert.False(t, s.Mounted("sess-1"))
	assert.Empty(t, s.cron.Entries())
}

func TestUnmountIgnoresReferences(t *testing.T) {
	s := NewScheduler(zerolog.Nop())

	s.Mount("sess-1", time.Minute, func() {})
	s.Mount("sess-1", time.Minute, func() {})
	s.Mount("sess-2", time.Minute, func() {})

	s.Unmount("sess-1")
	assert.False(t, s.Mounted("sess-1"))
	assert.True(t, s.Mounted("sess-2"))
	assert.Len(t, s.cron.Entries(), 1)

	s.Unmount("missing")
	s.Release("missing")
}

func TestUnmountStopsFurtherRuns(t *testing.T) {
	s := NewScheduler(zerolog.Nop())
	s.Start()
	defer s.Stop()

	var runs atomic.Int32
	s.Mount("sess-1", time.Second, func() { runs.Add(1) })
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)

	s.Unmount("sess-1")
	after := runs.Load()
	time.Sleep(1500 * time.Millisecond)
	assert.LessOrEqual(t, runs.Load(), after+1)
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	s := NewScheduler(zerolog.Nop())
	assert.Error(t, s.Schedule("not a spec", "bad", func() {}))
	assert.NoError(t, s.Schedule("0 0 3 * * *", "prune", func() {}))
}
