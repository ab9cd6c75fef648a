package cron_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Tiliavir/tick/internal/cron"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSchedulerRunsImmediatelyAndOnTicker(t *testing.T) {
	s := cron.NewScheduler(quietLogger())
	var runs atomic.Int32
	s.AddJob("count", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "job ran after Stop")
}

func TestSchedulerStopsWithContext(t *testing.T) {
	s := cron.NewScheduler(quietLogger())
	stopped := make(chan struct{})
	s.AddJob("wait", time.Hour, func(ctx context.Context) error {
		<-ctx.Done()
		close(stopped)
		return ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not observe cancellation")
	}
	s.Stop()
}

func TestFailingJobKeepsRunning(t *testing.T) {
	s := cron.NewScheduler(quietLogger())
	var fails, oks atomic.Int32
	s.AddJob("fail", 10*time.Millisecond, func(ctx context.Context) error {
		fails.Add(1)
		return errors.New("boom")
	})
	s.AddJob("ok", time.Hour, func(ctx context.Context) error {
		oks.Add(1)
		return nil
	})

	s.Start(context.Background())
	defer s.Stop()
	assert.Eventually(t, func() bool { return fails.Load() >= 2 && oks.Load() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestStopWithoutStart(t *testing.T) {
	s := cron.NewScheduler(nil)
	s.Stop()
}
