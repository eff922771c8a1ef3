package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"notedesk/internal/client/adapters/httpapi"
	storeadapter "notedesk/internal/client/adapters/store"
	"notedesk/internal/client/adapters/web"
	"notedesk/internal/client/app"
	"notedesk/internal/client/config"
	"notedesk/internal/client/metrics"
	"notedesk/pkg/logger"
	"notedesk/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "NOTEDESK_LOGGER_MODE"
	EnvLoggerLevel = "NOTEDESK_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrOpenStore            = "failed to open session store"
	ErrStartHTTPServer      = "failed to start HTTP server"
	ErrShutdown             = "shutdown finished with errors"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "notedesk web started"
	LogServiceShutdownDone = "notedesk web shutdown complete"
	LogInitStore           = "opening session store"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
	LogStoppingHTTP        = "stopping HTTP server"
	LogClosingStore        = "closing session store"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == string(logger.Production) {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}
	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := logger.NewLogger(cfg.Logging.GetEnvironment(), cfg.Logging.Level)
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger
		ctx = logger.NewContext(ctx, log)

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("store_driver", cfg.Store.Driver),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		log.Info(ctx, LogInitStore)
		kv, err := storeadapter.New(ctx, cfg)
		if err != nil {
			log.Error(ctx, ErrOpenStore, zap.Error(err))
			exitCode = 1
			return
		}

		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m := metrics.New(registry)

		ctrl := app.NewController(httpapi.NewClient(&cfg.Remote, m), app.NewSessionStore(kv), m)

		log.Info(ctx, LogInitHTTPServer)
		server := web.NewApp(&cfg.Web, ctrl, registry, log)

		waitCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		listenFailed := make(chan struct{})
		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.Web.GetAddress()))
		go func() {
			if err := server.Listen(cfg.Web.GetAddress(), fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
				log.Error(ctx, ErrStartHTTPServer, zap.Error(err))
				close(listenFailed)
				cancel()
			}
		}()

		err = shutdown.Wait(waitCtx, cfg.Web.ShutdownTimeout,
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return server.ShutdownWithContext(ctx)
			},
		)
		log.Info(ctx, LogClosingStore)
		err = errors.Join(err, kv.Close())
		if err != nil {
			log.Error(ctx, ErrShutdown, zap.Error(err))
			exitCode = 1
		}

		select {
		case <-listenFailed:
			exitCode = 1
		default:
		}

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
