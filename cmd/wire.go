package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bnema/nova-runner/internal/adapters/chain"
	"github.com/bnema/nova-runner/internal/adapters/input"
	statusadapter "github.com/bnema/nova-runner/internal/adapters/render/status"
	"github.com/bnema/nova-runner/internal/adapters/repo/jsonfile"
	"github.com/bnema/nova-runner/internal/adapters/vendor"
	"github.com/bnema/nova-runner/internal/application"
	"github.com/bnema/nova-runner/internal/config"
	"github.com/bnema/nova-runner/internal/domain"
	"github.com/bnema/nova-runner/internal/logging"
	"github.com/bnema/nova-runner/internal/ports"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const discoveryTimeout = 15 * time.Second

type app struct {
	dir            string
	cfg            config.Config
	sessions       *jsonfile.SessionStore
	userAgents     *jsonfile.UserAgentStore
	statusService  *application.StatusService
	identity       *application.IdentityService
	signer         chain.Signer
	statusRenderer func([]application.Status, statusadapter.RenderOptions) (string, error)
	discover       func(ctx context.Context, candidates []string, timeout time.Duration) (string, error)
	now            func() time.Time
}

func wireApp() (*app, error) {
	dir := workDir()

	cfg, err := config.Load(viper.New(), dir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	sessions, err := jsonfile.NewSessionStore(resolvePath(dir, cfg.Files.Sessions))
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	userAgents, err := jsonfile.NewUserAgentStore(resolvePath(dir, cfg.Files.UserAgents))
	if err != nil {
		return nil, fmt.Errorf("wire user agent store: %w", err)
	}

	return &app{
		dir:            dir,
		cfg:            cfg,
		sessions:       sessions,
		userAgents:     userAgents,
		statusService:  application.NewStatusService(sessions, userAgents, ports.SystemClock{}),
		identity:       application.NewIdentityService(userAgents, nil),
		signer:         chain.Signer{},
		statusRenderer: statusadapter.Render,
		discover:       vendor.Discover,
		now:            time.Now,
	}, nil
}

func (a *app) path(name string) string {
	return resolvePath(a.dir, name)
}

func (a *app) loadAccounts() ([]domain.Account, error) {
	accounts, err := input.LoadAccounts(a.path(a.cfg.Files.PrivateKeys))
	if err != nil {
		return nil, fmt.Errorf("load private keys: %w", err)
	}

	return accounts, nil
}

// newLogger logs to the colored terminal, or to w when the command output
// was redirected (tests).
func (a *app) newLogger(w io.Writer) (*zap.Logger, error) {
	opts := logging.Options{Level: a.cfg.Log.Level}
	if a.cfg.Log.File != "" {
		opts.File = a.path(a.cfg.Log.File)
	}
	if w != os.Stdout {
		opts.Console = w
	}

	return logging.New(opts)
}

func workDir() string {
	return envOrDefault("NOVA_HOME", ".")
}

func resolvePath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
