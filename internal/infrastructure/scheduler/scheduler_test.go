package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int64
	err  error
}

func (j *countingJob) Name() string        { return j.name }
func (j *countingJob) Description() string { return "counts its own runs" }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestIntervalSchedule_Next(t *testing.T) {
	s := NewIntervalSchedule(10 * time.Minute)
	now := time.Date(2025, 6, 3, 6, 0, 0, 0, time.UTC)

	assert.Equal(t, now.Add(10*time.Minute), s.Next(now))
	assert.Equal(t, "@every 10m0s", s.String())
}

func TestParseCronExpression(t *testing.T) {
	ce, err := ParseCronExpression("30 6 * * *")
	require.NoError(t, err)

	after := time.Date(2025, 6, 3, 5, 0, 0, 0, time.UTC)
	next := ce.Next(after)
	assert.Equal(t, 6, next.Hour())
	assert.Equal(t, 30, next.Minute())
	assert.Equal(t, 3, next.Day())

	// Already past today's slot, rolls to tomorrow.
	after = time.Date(2025, 6, 3, 7, 0, 0, 0, time.UTC)
	next = ce.Next(after)
	assert.Equal(t, 4, next.Day())
}

func TestParseCronExpression_Invalid(t *testing.T) {
	_, err := ParseCronExpression("not a cron")
	assert.Error(t, err)

	_, err = ParseCronExpression("61 * * * *")
	assert.Error(t, err)
}

func TestDailyAt(t *testing.T) {
	ce, err := DailyAt(6, 30)
	require.NoError(t, err)
	assert.Equal(t, "30 6 * * *", ce.String())

	_, err = DailyAt(24, 0)
	assert.Error(t, err)

	_, err = DailyAt(6, 60)
	assert.Error(t, err)
}

func TestScheduler_RegisterAndRunNow(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &countingJob{name: "cache_refresh"}

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))
	assert.ErrorIs(t, s.Register(job, NewIntervalSchedule(time.Hour)), ErrJobAlreadyExists)

	result, err := s.RunNow(context.Background(), "cache_refresh")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(1), job.runs.Load())

	_, err = s.RunNow(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrJobNotFound)

	infos := s.ListJobs()
	require.Len(t, infos, 1)
	assert.Equal(t, "cache_refresh", infos[0].Name)
	assert.Equal(t, int64(0), infos[0].RunCount) // manual runs don't count
}

func TestScheduler_RunNowRecordsFailure(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &countingJob{name: "narrative_backfill", err: errors.New("generator unavailable")}

	require.NoError(t, s.Register(job, NewIntervalSchedule(time.Hour)))

	result, err := s.RunNow(context.Background(), "narrative_backfill")
	require.Error(t, err)
	assert.False(t, result.Success)

	history := s.GetHistory(10)
	require.Len(t, history, 1)
	assert.False(t, history[0].Success)

	metrics := s.GetMetrics().Snapshot()
	assert.Equal(t, int64(1), metrics.TotalExecutions)
	assert.Equal(t, int64(1), metrics.TotalFailures)
}

func TestScheduler_EnableDisable(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	job := &countingJob{name: "daily_snapshot"}
	require.NoError(t, s.Register(job, MustParseCronExpression("30 6 * * *")))

	require.NoError(t, s.DisableJob("daily_snapshot"))
	info, err := s.GetJobInfo("daily_snapshot")
	require.NoError(t, err)
	assert.False(t, info.Enabled)

	require.NoError(t, s.EnableJob("daily_snapshot"))
	info, err = s.GetJobInfo("daily_snapshot")
	require.NoError(t, err)
	assert.True(t, info.Enabled)

	assert.ErrorIs(t, s.DisableJob("missing"), ErrJobNotFound)
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig())
	require.NoError(t, s.Register(&countingJob{name: "cache_refresh"}, NewIntervalSchedule(time.Hour)))

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}
