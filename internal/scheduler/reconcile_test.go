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

func TestValidateCronSchedule(t *testing.T) {
	assert.NoError(t, ValidateCronSchedule("30 3 * * *"))
	assert.NoError(t, ValidateCronSchedule("*/5 * * * *"))
	assert.Error(t, ValidateCronSchedule("every day"))
	assert.Error(t, ValidateCronSchedule("0 30 3 * * *"), "seconds field is not accepted")
}

func TestReconcileScheduler_StartStop(t *testing.T) {
	s := newReconcileScheduler("30 3 * * *", func(context.Context) error { return nil })

	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())
	require.NotNil(t, s.NextRun())
	assert.Equal(t, 3, s.NextRun().Hour())
	assert.Equal(t, 30, s.NextRun().Minute())

	require.NoError(t, s.Start(context.Background()), "starting twice is a no-op")

	s.Stop()
	assert.False(t, s.IsRunning())
	assert.Nil(t, s.NextRun())
}

func TestReconcileScheduler_InvalidSchedule(t *testing.T) {
	s := newReconcileScheduler("nonsense", func(context.Context) error { return nil })

	err := s.Start(context.Background())
	assert.ErrorContains(t, err, "invalid cron schedule")
	assert.False(t, s.IsRunning())
}

func TestReconcileScheduler_StopsWithContext(t *testing.T) {
	s := newReconcileScheduler("30 3 * * *", func(context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool { return !s.IsRunning() }, time.Second, 10*time.Millisecond)
}

func TestReconcileScheduler_RunNowAndTick(t *testing.T) {
	var calls atomic.Int32
	s := newReconcileScheduler("30 3 * * *", func(context.Context) error {
		calls.Add(1)
		return errors.New("queue unavailable")
	})

	err := s.RunNow(context.Background())
	assert.ErrorContains(t, err, "queue unavailable")

	s.tick()
	assert.Equal(t, int32(2), calls.Load())
}
