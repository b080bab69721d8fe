package jobs

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	n           int64
	err         error
	calls       int
	hadDeadline bool
}

func (f *fakePurger) PurgeExpired(ctx context.Context) (int64, error) {
	f.calls++
	_, f.hadDeadline = ctx.Deadline()
	return f.n, f.err
}

type fakeSweeper struct {
	n     int
	calls int
}

func (f *fakeSweeper) Cleanup() int {
	f.calls++
	return f.n
}

func newTestLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestScheduler_Register(t *testing.T) {
	tests := []struct {
		name     string
		tokens   TokenPurger
		buckets  BucketSweeper
		spec     string
		wantJobs int
		wantErr  bool
	}{
		{name: "both jobs", tokens: &fakePurger{}, buckets: &fakeSweeper{}, spec: "@hourly", wantJobs: 2},
		{name: "purge disabled by empty schedule", tokens: &fakePurger{}, buckets: &fakeSweeper{}, wantJobs: 1},
		{name: "five field cron expression", tokens: &fakePurger{}, spec: "*/15 * * * *", wantJobs: 1},
		{name: "no limiter", tokens: &fakePurger{}, spec: "@daily", wantJobs: 1},
		{name: "unparseable schedule", tokens: &fakePurger{}, spec: "every tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := newTestLogger()
			s := NewScheduler(logger, tt.tokens, tt.buckets)

			err := s.Register(tt.spec)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantJobs, s.Jobs())
		})
	}
}

func TestScheduler_PurgeTokens(t *testing.T) {
	t.Run("logs purged count", func(t *testing.T) {
		logger, buf := newTestLogger()
		tokens := &fakePurger{n: 3}
		s := NewScheduler(logger, tokens, nil)

		s.PurgeTokens(context.Background())

		assert.Equal(t, 1, tokens.calls)
		assert.True(t, tokens.hadDeadline)
		assert.Contains(t, buf.String(), "purged expired reset tokens")
		assert.Contains(t, buf.String(), "count=3")
	})

	t.Run("nothing to purge stays quiet", func(t *testing.T) {
		logger, buf := newTestLogger()
		s := NewScheduler(logger, &fakePurger{}, nil)

		s.PurgeTokens(context.Background())

		assert.Empty(t, buf.String())
	})

	t.Run("store error is logged", func(t *testing.T) {
		logger, buf := newTestLogger()
		s := NewScheduler(logger, &fakePurger{err: assert.AnError}, nil)

		s.PurgeTokens(context.Background())

		assert.Contains(t, buf.String(), "level=ERROR")
		assert.Contains(t, buf.String(), "failed to purge expired reset tokens")
	})
}

func TestScheduler_SweepBuckets(t *testing.T) {
	logger, buf := newTestLogger()
	buckets := &fakeSweeper{n: 2}
	s := NewScheduler(logger, nil, buckets)

	s.SweepBuckets()

	assert.Equal(t, 1, buckets.calls)
	assert.Contains(t, buf.String(), "dropped idle rate limit buckets")
}

func TestScheduler_SweepsEveryLimiter(t *testing.T) {
	logger, buf := newTestLogger()
	reset, rsvp := &fakeSweeper{n: 1}, &fakeSweeper{n: 4}
	s := NewScheduler(logger, nil, reset, nil, rsvp)
	require.NoError(t, s.Register(""))
	assert.Equal(t, 1, s.Jobs())

	s.SweepBuckets()

	assert.Equal(t, 1, reset.calls)
	assert.Equal(t, 1, rsvp.calls)
	assert.Contains(t, buf.String(), "count=5")
}

func TestScheduler_StartStop(t *testing.T) {
	logger, _ := newTestLogger()
	s := NewScheduler(logger, &fakePurger{}, &fakeSweeper{})
	require.NoError(t, s.Register("@hourly"))

	s.Start()
	<-s.Stop().Done()
}
