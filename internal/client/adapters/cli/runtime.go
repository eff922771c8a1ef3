// Package cli реализует терминальный интерфейс клиента на cobra.
package cli

import (
	"context"
	"fmt"

	"notedesk/internal/client/adapters/httpapi"
	storeadapter "notedesk/internal/client/adapters/store"
	"notedesk/internal/client/app"
	"notedesk/internal/client/config"
	"notedesk/internal/client/ports/store"
	"notedesk/pkg/logger"
)

const (
	ErrorFailedBuild      = "failed to initialize client"
	ErrorFailedInitLogger = "failed to initialize logger"
	ErrorFailedOpenStore  = "failed to open session store"

	defaultLogLevel = "warn"
	verboseLogLevel = "debug"
)

// GlobalFlags - флаги корневой команды.
type GlobalFlags struct {
	Verbose   bool
	Ephemeral bool
	EnvFile   string
}

// Deps - зависимости одной команды.
type Deps struct {
	Logger     *logger.Logger
	Controller *app.Controller
	Close      func() error
}

// BuildFunc собирает зависимости команды.
type BuildFunc func(ctx context.Context, flags GlobalFlags) (*Deps, error)

// DefaultBuild читает конфигурацию из окружения и открывает настоящее хранилище.
// Журнал пишется в stderr: warn по умолчанию, debug с --verbose.
func DefaultBuild(ctx context.Context, flags GlobalFlags) (*Deps, error) {
	level := defaultLogLevel
	if flags.Verbose {
		level = verboseLogLevel
	}
	log, err := logger.NewLogger(logger.Development, level)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorFailedInitLogger, err)
	}
	ctx = logger.NewContext(ctx, log)

	cfg, err := config.LoadFrom(ctx, flags.EnvFile)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorFailedBuild, err)
	}
	if flags.Ephemeral {
		cfg.Store.Driver = config.DriverMemory
	}

	kv, err := storeadapter.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrorFailedOpenStore, err)
	}

	return NewDeps(log, kv, httpapi.NewClient(&cfg.Remote, nil)), nil
}

// NewDeps связывает хранилище и клиента сервиса в контроллер.
func NewDeps(log *logger.Logger, kv store.KV, api *httpapi.Client) *Deps {
	return &Deps{
		Logger:     log,
		Controller: app.NewController(api, app.NewSessionStore(kv), nil),
		Close: func() error {
			_ = log.Sync()
			return kv.Close()
		},
	}
}
