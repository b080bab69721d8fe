package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// limiterSweepSpec is how often idle rate-limit buckets are dropped.
const limiterSweepSpec = "@every 1m"

// TokenPurger deletes expired password reset tokens.
type TokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// BucketSweeper drops idle rate-limit buckets.
type BucketSweeper interface {
	Cleanup() int
}

// Scheduler runs the periodic housekeeping jobs.
type Scheduler struct {
	cron    *cron.Cron
	logger  *slog.Logger
	tokens  TokenPurger
	buckets []BucketSweeper
	timeout time.Duration
}

// NewScheduler creates a Scheduler. A nil tokens leaves the purge unregistered;
// nil sweepers are ignored, and with none the sweep job is not registered.
func NewScheduler(logger *slog.Logger, tokens TokenPurger, buckets ...BucketSweeper) *Scheduler {
	cl := cronLogger{logger: logger}
	var sweepers []BucketSweeper
	for _, b := range buckets {
		if b != nil {
			sweepers = append(sweepers, b)
		}
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		logger:  logger,
		tokens:  tokens,
		buckets: sweepers,
		timeout: 30 * time.Second,
	}
}

// Register adds the jobs. An empty purgeSpec leaves the token purge disabled.
func (s *Scheduler) Register(purgeSpec string) error {
	if s.tokens != nil && purgeSpec != "" {
		if _, err := s.cron.AddFunc(purgeSpec, func() { s.PurgeTokens(context.Background()) }); err != nil {
			return fmt.Errorf("invalid token purge schedule %q: %w", purgeSpec, err)
		}
	}
	if len(s.buckets) > 0 {
		if _, err := s.cron.AddFunc(limiterSweepSpec, s.SweepBuckets); err != nil {
			return fmt.Errorf("failed to schedule rate limiter sweep: %w", err)
		}
	}
	return nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop stops scheduling and returns a context that is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// PurgeTokens deletes expired reset tokens once.
func (s *Scheduler) PurgeTokens(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	n, err := s.tokens.PurgeExpired(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to purge expired reset tokens", "err", err)
		return
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "purged expired reset tokens", "count", n)
	}
}

// SweepBuckets drops idle rate-limit buckets from every limiter once.
func (s *Scheduler) SweepBuckets() {
	n := 0
	for _, b := range s.buckets {
		n += b.Cleanup()
	}
	if n > 0 {
		s.logger.Debug("dropped idle rate limit buckets", "count", n)
	}
}

// cronLogger routes cron's own logging through slog.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append([]interface{}{"err", err}, keysAndValues...)...)
}
