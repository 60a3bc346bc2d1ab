package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/feral-file/ff-author-checker/internal/job"
	"github.com/feral-file/ff-author-checker/internal/logger"
)

const DEFAULT_CRON = "@daily"

// AssociationExpiryConfig holds configuration for the association expiry sweeper
type AssociationExpiryConfig struct {
	// Cron is a standard cron expression or a descriptor such as "@daily" or "@every 1h"
	Cron string
	// RunOnStart runs a check as soon as the sweeper starts
	RunOnStart bool
}

// associationExpirySweeper runs the author associations check on a cron schedule
type associationExpirySweeper struct {
	config    AssociationExpiryConfig
	job       job.Handler
	running   atomic.Bool
	mu        sync.Mutex // guards stopChan and stoppedCh, recreated on every start
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewAssociationExpirySweeper creates a new association expiry sweeper
func NewAssociationExpirySweeper(config AssociationExpiryConfig, jobHandler job.Handler) Sweeper {
	if config.Cron == "" {
		config.Cron = DEFAULT_CRON
	}

	return &associationExpirySweeper{
		config: config,
		job:    jobHandler,
	}
}

// Name returns the sweeper's name
func (s *associationExpirySweeper) Name() string {
	return "association-expiry-sweeper"
}

// Start schedules the check and blocks until the context is canceled or stop is requested
func (s *associationExpirySweeper) Start(ctx context.Context) error {
	schedule, err := cron.ParseStandard(s.config.Cron)
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", s.config.Cron, err)
	}

	s.mu.Lock()
	if !s.running.CompareAndSwap(false, true) {
		s.mu.Unlock()
		return errors.New("sweeper already running")
	}
	stopChan := make(chan struct{})
	stoppedCh := make(chan struct{})
	s.stopChan, s.stoppedCh = stopChan, stoppedCh
	s.mu.Unlock()

	defer func() {
		s.running.Store(false)
		close(stoppedCh)
	}()

	// Runs never overlap: a tick during a run is skipped
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{})),
	)
	entryID := c.Schedule(schedule, cron.FuncJob(func() {
		s.runOnce(ctx, "cron")
	}))
	wrapped := c.Entry(entryID).WrappedJob

	logger.InfoCtx(ctx, "Starting association expiry sweeper", zap.String("cron", s.config.Cron))

	c.Start()
	logger.InfoCtx(ctx, "Next association expiry check scheduled", zap.Time("next", c.Entry(entryID).Next))

	// The first run goes through the cron chain so a tick never overlaps it
	var initial sync.WaitGroup
	if s.config.RunOnStart {
		initial.Add(1)
		go func() {
			defer initial.Done()
			wrapped.Run()
		}()
	}

	select {
	case <-ctx.Done():
		logger.InfoCtx(ctx, "Association expiry sweeper stopping due to context cancellation", zap.Error(ctx.Err()))
	case <-stopChan:
		logger.InfoCtx(ctx, "Association expiry sweeper stop requested")
	}

	// Wait for a running check to complete
	<-c.Stop().Done()
	initial.Wait()

	return nil
}

// Stop gracefully stops the sweeper with timeout support
func (s *associationExpirySweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running.CompareAndSwap(true, false) {
		s.mu.Unlock()
		return nil // Already stopped
	}
	close(s.stopChan)
	stoppedCh := s.stoppedCh
	s.mu.Unlock()

	logger.InfoCtx(ctx, "Stopping association expiry sweeper")

	select {
	case <-stoppedCh:
		logger.InfoCtx(ctx, "Association expiry sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Association expiry sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

func (s *associationExpirySweeper) runOnce(ctx context.Context, source string) {
	if ctx.Err() != nil {
		return
	}

	resp, err := s.job.Handle(ctx, &job.Request{Source: source})
	if err != nil {
		logger.ErrorCtx(ctx, err, zap.String("sweeper", s.Name()))
		return
	}

	logger.InfoCtx(ctx, resp.Body, zap.String("sweeper", s.Name()))
}

// cronLogger routes cron scheduler logs to zap
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Default().Sugar().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Default().Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
