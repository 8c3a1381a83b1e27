package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduler_AddJob(t *testing.T) {
	s := New(zap.NewNop())

	require.NoError(t, s.AddJob("monthly-bills", "0 0 1 * *", time.Minute, func(context.Context) error { return nil }))

	err := s.AddJob("monthly-bills", "0 0 1 * *", 0, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrDuplicateJob)

	err = s.AddJob("broken", "every tuesday", 0, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "monthly-bills", jobs[0].Name)
	assert.Equal(t, JobStatusIdle, jobs[0].Status)
	assert.False(t, jobs[0].Next.IsZero())
}

func TestScheduler_NextRunBeforeAndAfterStart(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.AddJob("monthly-bills", "0 0 1 * *", 0, func(context.Context) error { return nil }))

	before := s.Jobs()[0].Next
	require.False(t, before.IsZero())
	assert.True(t, before.After(time.Now()))
	assert.Equal(t, 1, before.Day())
	assert.Equal(t, 0, before.Hour())

	s.Start(context.Background())
	defer func() { _ = s.Stop(context.Background()) }()

	assert.True(t, before.Equal(s.Jobs()[0].Next))
}

func TestScheduler_RunNowTracksStatus(t *testing.T) {
	s := New(nil)
	fail := errors.New("database unavailable")
	var calls atomic.Int32

	require.NoError(t, s.AddJob("ok", "@daily", 0, func(context.Context) error {
		calls.Add(1)
		return nil
	}))
	require.NoError(t, s.AddJob("failing", "@daily", 0, func(context.Context) error { return fail }))
	require.NoError(t, s.AddJob("panicking", "@daily", 0, func(context.Context) error { panic("boom") }))

	require.NoError(t, s.RunNow(context.Background(), "ok"))
	assert.ErrorIs(t, s.RunNow(context.Background(), "failing"), fail)
	assert.ErrorContains(t, s.RunNow(context.Background(), "panicking"), "panicked")
	assert.ErrorIs(t, s.RunNow(context.Background(), "missing"), ErrJobNotFound)

	byName := map[string]JobInfo{}
	for _, j := range s.Jobs() {
		byName[j.Name] = j
	}
	assert.Equal(t, JobStatusSuccess, byName["ok"].Status)
	assert.Equal(t, 1, byName["ok"].Runs)
	assert.NotNil(t, byName["ok"].LastEnded)
	assert.Equal(t, JobStatusFailed, byName["failing"].Status)
	assert.Equal(t, "database unavailable", byName["failing"].Error)
	assert.Equal(t, JobStatusFailed, byName["panicking"].Status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestScheduler_JobTimeout(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.AddJob("slow", "@daily", 20*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	assert.ErrorIs(t, s.RunNow(context.Background(), "slow"), context.DeadlineExceeded)
}

func TestScheduler_FiresOnSchedule(t *testing.T) {
	s := New(zap.NewNop())
	var calls atomic.Int32
	require.NoError(t, s.AddJob("tick", "@every 1s", 0, func(context.Context) error {
		calls.Add(1)
		return nil
	}))

	s.Start(context.Background())
	assert.ErrorIs(t, s.AddJob("late", "@daily", 0, func(context.Context) error { return nil }), ErrSchedulerRunning)

	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	s := New(nil)
	started := make(chan struct{})
	require.NoError(t, s.AddJob("long", "@daily", 0, func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	s.Start(context.Background())

	go func() { _ = s.RunNow(s.baseCtx, "long") }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}
