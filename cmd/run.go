package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bnema/nova-runner/internal/adapters/chain"
	"github.com/bnema/nova-runner/internal/adapters/input"
	"github.com/bnema/nova-runner/internal/adapters/vendor"
	"github.com/bnema/nova-runner/internal/application"
	"github.com/bnema/nova-runner/internal/domain"
	"github.com/bnema/nova-runner/internal/ports"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(app *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every account now and then again on each interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAccounts(cmd, app, once)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")

	return cmd
}

func runAccounts(cmd *cobra.Command, app *app, once bool) error {
	cfg := app.cfg

	logger, err := app.newLogger(cmd.OutOrStdout())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	accounts, err := app.loadAccounts()
	if err != nil {
		return err
	}
	proxies, err := input.LoadProxies(app.path(cfg.Files.Proxies), cfg.UseProxy)
	if err != nil {
		return fmt.Errorf("load proxies: %w", err)
	}

	bindings, err := domain.BindProxies(accounts, proxies, cfg.UseProxy)
	if err != nil {
		return err
	}
	if !cfg.UseProxy {
		logger.Warn("running without proxies")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	baseURL, err := resolveEndpoint(ctx, cmd.ErrOrStderr(), cfg.BaseURLs, func(ctx context.Context, candidates []string) (string, error) {
		return app.discover(ctx, candidates, discoveryTimeout)
	})
	if err != nil {
		return err
	}
	logger.Info("api endpoint resolved", zap.String("base_url", baseURL))

	userAgents, err := app.identity.AssignUserAgents(ctx, accounts)
	if err != nil {
		return fmt.Errorf("assign user agents: %w", err)
	}

	accountTimeout, err := cfg.AccountTimeoutDuration()
	if err != nil {
		return err
	}
	batchPause, err := cfg.BatchPauseDuration()
	if err != nil {
		return err
	}

	var checkIns ports.CheckInSubmitter
	if cfg.AutoCheckIn {
		checkIns = chain.NewCheckInSubmitter(chain.CheckInConfig{
			RPCURL:          cfg.Chain.RPCURL,
			Contract:        cfg.Chain.Contract,
			Method:          cfg.Chain.Method,
			GasLimit:        cfg.Chain.GasLimit,
			MaxGasPriceGwei: cfg.Chain.MaxGasPriceGwei,
		})
	}

	startMin, startMax := cfg.StartJitter()
	taskMin, taskMax := cfg.TaskJitter()
	runner := application.NewRunner(application.RunnerSettings{
		UseProxy:       cfg.UseProxy,
		AutoTask:       cfg.AutoTask,
		AutoCheckIn:    cfg.AutoCheckIn,
		SkipTasks:      cfg.SkipTasks,
		StartJitterMin: startMin,
		StartJitterMax: startMax,
		TaskJitterMin:  taskMin,
		TaskJitterMax:  taskMax,
		ExplorerURL:    cfg.Chain.Explorer,
	}, checkIns)

	clientSettings := vendor.Settings{
		BaseURL:      baseURL,
		RefCode:      cfg.RefCode,
		UseProxy:     cfg.UseProxy,
		RequestDelay: cfg.RequestDelay(),
	}
	factory := func(binding domain.Binding, userAgent string, accountLogger *zap.Logger) ports.RewardsAPI {
		return vendor.NewClient(clientSettings, vendor.Options{
			Account:   binding.Account,
			Proxy:     binding.Proxy,
			UserAgent: userAgent,
			Signer:    app.signer,
			Sessions:  app.sessions,
			Logger:    accountLogger,
		})
	}

	scheduler := application.NewScheduler(application.SchedulerSettings{
		BatchSize:      cfg.BatchSize(),
		AccountTimeout: accountTimeout,
		BatchPause:     batchPause,
		PassInterval:   cfg.PassInterval(),
	}, runner.Job(factory, userAgents, logger), nil, logger)

	if once {
		summary := scheduler.RunPass(ctx, bindings)
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "pass finished: %d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
		return err
	}

	err = scheduler.Run(ctx, bindings, nil)
	if errors.Is(err, context.Canceled) {
		logger.Info("stopped")
		return nil
	}

	return err
}
