package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/bnema/nova-runner/internal/domain"
	"github.com/bnema/nova-runner/internal/logging"
	"github.com/bnema/nova-runner/internal/ports"
	"go.uber.org/zap"
)

type Stage string

const (
	StageInit         Stage = "init"
	StageProxyCheck   Stage = "proxy_check"
	StageAuthenticate Stage = "authenticate"
	StageSyncProfile  Stage = "sync_profile"
	StageCheckIn      Stage = "check_in"
	StageTasks        Stage = "tasks"
	StageFinalSync    Stage = "final_sync"
	StageDone         Stage = "done"
)

// StageError marks the stage at which an account run was aborted.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

type RunnerSettings struct {
	UseProxy       bool
	AutoTask       bool
	AutoCheckIn    bool
	SkipTasks      []string
	StartJitterMin time.Duration
	StartJitterMax time.Duration
	TaskJitterMin  time.Duration
	TaskJitterMax  time.Duration
	ExplorerURL    string
}

// Report summarizes one account run.
type Report struct {
	// Stage is the last stage reached; StageDone after a full run.
	Stage       Stage
	IP          string
	Profile     domain.Profile
	Points      float64
	CheckInTx   string
	TasksDone   int
	TasksFailed int
}

// Runner drives one account through its lifecycle against the rewards API.
type Runner struct {
	settings RunnerSettings
	checkIns ports.CheckInSubmitter
	sleep    func(ctx context.Context, d time.Duration) error
	jitter   func(lo, hi time.Duration) time.Duration
}

func NewRunner(settings RunnerSettings, checkIns ports.CheckInSubmitter) *Runner {
	return &Runner{
		settings: settings,
		checkIns: checkIns,
		sleep:    ports.Sleep,
		jitter:   newJitter(time.Now().UnixNano()),
	}
}

type loggerSetter interface {
	SetLogger(*zap.Logger)
}

func (r *Runner) Run(ctx context.Context, account domain.Account, api ports.RewardsAPI, logger *zap.Logger) (Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	report := Report{Stage: StageInit}

	if err := api.LoadSession(ctx); err != nil {
		return report, &StageError{Stage: StageInit, Err: err}
	}

	if r.settings.UseProxy {
		report.Stage = StageProxyCheck
		ip, err := api.ResolveIP(ctx)
		if err != nil {
			logger.Warn("cannot check proxy ip", zap.Error(err))
			return report, &StageError{Stage: StageProxyCheck, Err: err}
		}
		report.IP = ip
		logger = logging.WithIP(logger, ip)
		if setter, ok := api.(loggerSetter); ok {
			setter.SetLogger(logger)
		}

		delay := r.jitter(r.settings.StartJitterMin, r.settings.StartJitterMax)
		logger.Info("starting after delay", zap.Duration("delay", delay))
		if err := r.sleep(ctx, delay); err != nil {
			return report, &StageError{Stage: StageProxyCheck, Err: err}
		}
	}

	report.Stage = StageAuthenticate
	if _, err := api.ValidToken(ctx, false); err != nil {
		logger.Error("cannot obtain access token", zap.Error(err))
		return report, &StageError{Stage: StageAuthenticate, Err: err}
	}

	report.Stage = StageSyncProfile
	profile, synced, err := r.syncProfile(ctx, api, logger, &report)
	if err != nil {
		return report, &StageError{Stage: StageSyncProfile, Err: err}
	}
	if !synced {
		logger.Error("cannot get user info, skipping")
		return report, nil
	}
	if !profile.TwitterBound {
		logger.Warn("twitter must be bound before tasks can run")
		return report, nil
	}

	if r.settings.AutoCheckIn {
		report.Stage = StageCheckIn
		if err := r.checkIn(ctx, account, api, logger, &report); err != nil {
			return report, &StageError{Stage: StageCheckIn, Err: err}
		}
	}

	if r.settings.AutoTask {
		report.Stage = StageTasks
		if err := r.runTasks(ctx, api, logger, &report); err != nil {
			return report, &StageError{Stage: StageTasks, Err: err}
		}
	}

	report.Stage = StageFinalSync
	if err := r.sleep(ctx, time.Second); err != nil {
		return report, &StageError{Stage: StageFinalSync, Err: err}
	}
	if _, _, err := r.syncProfile(ctx, api, logger, &report); err != nil {
		return report, &StageError{Stage: StageFinalSync, Err: err}
	}

	report.Stage = StageDone
	return report, nil
}

// syncProfile fetches profile and balance. A profile failure is tolerated
// (synced is false); only an authentication failure is returned as an error.
func (r *Runner) syncProfile(ctx context.Context, api ports.RewardsAPI, logger *zap.Logger, report *Report) (domain.Profile, bool, error) {
	logger.Info("syncing data")

	profile, outcome := api.Profile(ctx)
	if outcome.Fatal() {
		return domain.Profile{}, false, outcome.Err
	}

	balance := api.Balance(ctx)
	if balance.Fatal() {
		return domain.Profile{}, false, balance.Err
	}

	if !outcome.Success {
		logger.Warn("cannot sync new data", zap.Int("status", outcome.Status), zap.Error(outcome.Err))
		return domain.Profile{}, false, nil
	}

	points := 0.0
	if balance.Success {
		points = domain.AggregatePoints(balance.Data)
	}
	report.Profile = profile
	report.Points = points

	fields := []zap.Field{
		zap.String("email", boundValue(profile.EmailBound, profile.Email)),
		zap.String("twitter", boundValue(profile.TwitterBound, profile.TwitterName)),
		zap.Float64("points", points),
		zap.Bool("banned", profile.Banned),
	}
	if profile.Banned {
		logger.Error("account synced", fields...)
	} else {
		logger.Info("account synced", fields...)
	}

	return profile, true, nil
}

func boundValue(bound bool, value string) string {
	if !bound {
		return "not bound"
	}
	return value
}

// checkIn submits the on-chain check-in and reports it. Only an
// authentication failure aborts the account.
func (r *Runner) checkIn(ctx context.Context, account domain.Account, api ports.RewardsAPI, logger *zap.Logger, report *Report) error {
	if r.checkIns == nil {
		return nil
	}

	txHash, err := r.checkIns.SubmitCheckIn(ctx, account)
	if err != nil {
		logger.Warn("check-in transaction failed", zap.Error(err))
		return nil
	}

	outcome := api.CheckIn(ctx, txHash)
	if outcome.Fatal() {
		return outcome.Err
	}
	if !outcome.Success {
		logger.Warn("check-in report failed", zap.Int("status", outcome.Status), zap.Error(outcome.Err))
		return nil
	}

	report.CheckInTx = txHash
	logger.Info("check-in succeeded", zap.String("tx", r.settings.ExplorerURL+txHash))

	credit := api.CheckInCredit(ctx)
	if credit.Fatal() {
		return credit.Err
	}
	if credit.Success {
		logger.Info("check-in credit", zap.ByteString("data", credit.Data))
	}

	return nil
}

func (r *Runner) runTasks(ctx context.Context, api ports.RewardsAPI, logger *zap.Logger, report *Report) error {
	tasks, outcome := api.Tasks(ctx)
	if outcome.Fatal() {
		return outcome.Err
	}
	if !outcome.Success {
		logger.Error("cannot get tasks", zap.Error(outcome.Err))
		return nil
	}

	pending := domain.FilterTasks(tasks, r.settings.SkipTasks)
	if len(pending) == 0 {
		logger.Warn("no tasks available")
		return nil
	}

	for _, task := range pending {
		delay := r.jitter(r.settings.TaskJitterMin, r.settings.TaskJitterMax)
		taskLogger := logger.With(zap.String("task", task.ID), zap.String("title", task.Title()))
		taskLogger.Info("starting task", zap.Duration("delay", delay))
		if err := r.sleep(ctx, delay); err != nil {
			return err
		}

		result := api.CompleteTask(ctx, task.ID)
		if result.Fatal() {
			return result.Err
		}
		if !result.Success {
			report.TasksFailed++
			taskLogger.Error("task failed", zap.Int("status", result.Status), zap.Error(result.Err))
			continue
		}

		report.TasksDone++
		taskLogger.Info("task completed", zap.ByteString("data", result.Data))
	}

	return nil
}

// newJitter returns a goroutine-safe uniform picker over [min, max].
func newJitter(seed int64) func(lo, hi time.Duration) time.Duration {
	var mu sync.Mutex
	rng := rand.New(rand.NewSource(seed))

	return func(lo, hi time.Duration) time.Duration {
		if hi <= lo {
			return lo
		}
		mu.Lock()
		defer mu.Unlock()
		return lo + time.Duration(rng.Int63n(int64(hi-lo)+1))
	}
}

// IsFatal reports whether err ended an account run early for lack of a token.
func IsFatal(err error) bool {
	return errors.Is(err, domain.ErrAuthenticationFailed)
}

// ClientFactory builds the rewards API session for one bound account.
type ClientFactory func(binding domain.Binding, userAgent string, logger *zap.Logger) ports.RewardsAPI

// Job adapts the runner to the scheduler: every binding gets its own client,
// user agent and account-scoped logger.
func (r *Runner) Job(factory ClientFactory, userAgents map[string]string, logger *zap.Logger) Job {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(ctx context.Context, binding domain.Binding) error {
		accountLogger := logging.ForAccount(logger, binding.Account.Label(), binding.Account.Address)
		api := factory(binding, userAgents[binding.Account.Address], accountLogger)

		report, err := r.Run(ctx, binding.Account, api, accountLogger)
		if err != nil {
			if IsFatal(err) {
				accountLogger.Error("account aborted, no valid token", zap.String("stage", string(report.Stage)))
			}
			return err
		}

		accountLogger.Info("account finished",
			zap.String("stage", string(report.Stage)),
			zap.Float64("points", report.Points),
			zap.Int("tasks_done", report.TasksDone),
			zap.Int("tasks_failed", report.TasksFailed),
		)
		return nil
	}
}
