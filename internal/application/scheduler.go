package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/nova-runner/internal/domain"
	"github.com/bnema/nova-runner/internal/ports"
	"go.uber.org/zap"
)

var (
	ErrAccountTimeout = errors.New("account run timed out")
	ErrWorkerPanic    = errors.New("account worker panicked")
)

const defaultAccountTimeout = 24 * time.Hour

// Job runs one account to completion. It must honor ctx cancellation to free
// its goroutine; the scheduler stops waiting for it at the deadline either way.
type Job func(ctx context.Context, binding domain.Binding) error

type SchedulerSettings struct {
	BatchSize      int
	AccountTimeout time.Duration
	BatchPause     time.Duration
	PassInterval   time.Duration
}

type Result struct {
	Account  domain.Account
	Err      error
	TimedOut bool
	Elapsed  time.Duration
}

type PassSummary struct {
	Results   []Result
	Succeeded int
	Failed    int
	Elapsed   time.Duration
}

type Scheduler struct {
	settings SchedulerSettings
	job      Job
	clock    ports.Clock
	logger   *zap.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewScheduler(settings SchedulerSettings, job Job, clock ports.Clock, logger *zap.Logger) *Scheduler {
	if settings.BatchSize <= 0 {
		settings.BatchSize = 1
	}
	if settings.AccountTimeout <= 0 {
		settings.AccountTimeout = defaultAccountTimeout
	}
	if settings.BatchPause < 0 {
		settings.BatchPause = 0
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		settings: settings,
		job:      job,
		clock:    clock,
		logger:   logger,
		sleep:    ports.Sleep,
	}
}

// Batches splits bindings into consecutive groups of at most size elements.
func Batches(bindings []domain.Binding, size int) [][]domain.Binding {
	if size <= 0 {
		size = 1
	}

	groups := make([][]domain.Binding, 0, (len(bindings)+size-1)/size)
	for start := 0; start < len(bindings); start += size {
		end := min(start+size, len(bindings))
		groups = append(groups, bindings[start:end])
	}

	return groups
}

// RunPass runs every binding once, one batch at a time. A batch starts only
// after every worker of the previous batch has reported back. Canceling ctx
// stops the pass before the next batch.
func (s *Scheduler) RunPass(ctx context.Context, bindings []domain.Binding) PassSummary {
	start := s.clock.Now()
	summary := PassSummary{Results: make([]Result, 0, len(bindings))}

	groups := Batches(bindings, s.settings.BatchSize)
	for i, group := range groups {
		if ctx.Err() != nil {
			break
		}

		s.logger.Info("starting batch",
			zap.Int("batch", i+1),
			zap.Int("batches", len(groups)),
			zap.Int("accounts", len(group)),
		)

		results := make(chan Result, len(group))
		for _, binding := range group {
			go func(binding domain.Binding) {
				results <- s.runOne(ctx, binding)
			}(binding)
		}

		for range group {
			result := <-results
			summary.Results = append(summary.Results, result)
			if result.Err != nil {
				summary.Failed++
				s.logger.Error("account failed",
					zap.Int("account", result.Account.Label()),
					zap.Bool("timed_out", result.TimedOut),
					zap.Duration("elapsed", result.Elapsed),
					zap.Error(result.Err),
				)
				continue
			}
			summary.Succeeded++
		}

		if i < len(groups)-1 {
			if err := s.sleep(ctx, s.settings.BatchPause); err != nil {
				break
			}
		}
	}

	summary.Elapsed = s.clock.Now().Sub(start)
	return summary
}

func (s *Scheduler) runOne(ctx context.Context, binding domain.Binding) Result {
	start := s.clock.Now()
	result := Result{Account: binding.Account}

	jobCtx, cancel := context.WithTimeout(ctx, s.settings.AccountTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				done <- fmt.Errorf("%w: %v", ErrWorkerPanic, recovered)
			}
		}()
		done <- s.job(jobCtx, binding)
	}()

	select {
	case err := <-done:
		result.Err = err
		if err != nil && errors.Is(jobCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			result.TimedOut = true
			result.Err = fmt.Errorf("%w: %w", ErrAccountTimeout, err)
		}
	case <-jobCtx.Done():
		if ctx.Err() != nil {
			result.Err = ctx.Err()
		} else {
			result.TimedOut = true
			result.Err = fmt.Errorf("%w after %s", ErrAccountTimeout, s.settings.AccountTimeout)
		}
	}

	result.Elapsed = s.clock.Now().Sub(start)
	return result
}

// Run repeats passes until ctx is canceled, sleeping PassInterval between
// them. onPass, when set, sees every completed pass.
func (s *Scheduler) Run(ctx context.Context, bindings []domain.Binding, onPass func(PassSummary)) error {
	for pass := 1; ; pass++ {
		summary := s.RunPass(ctx, bindings)
		s.logger.Info("pass completed",
			zap.Int("pass", pass),
			zap.Int("succeeded", summary.Succeeded),
			zap.Int("failed", summary.Failed),
			zap.Duration("elapsed", summary.Elapsed),
		)
		if onPass != nil {
			onPass(summary)
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.Info("waiting for next pass", zap.Duration("interval", s.settings.PassInterval))
		if err := s.sleep(ctx, s.settings.PassInterval); err != nil {
			return err
		}
	}
}
