// Package config содержит конфигурацию клиента заметок.
package config

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "notedesk/pkg/config"
	"notedesk/pkg/logger"
)

const (
	serviceName = "notedesk"

	LogConfigLoaded     = "configuration loaded"
	ErrFailedLoadConfig = "failed to load configuration"
)

// Config - полная конфигурация клиента.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Store   StoreConfig   `yaml:"store"`
	Redis   RedisConfig   `yaml:"redis"`
	Remote  RemoteConfig  `yaml:"remote"`
	Web     WebConfig     `yaml:"web"`
}

// Load читает конфигурацию из окружения и .env в текущем каталоге.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, pkgconfig.DefaultDotEnv)
}

// LoadFrom читает конфигурацию, подмешивая указанный .env файл.
func LoadFrom(ctx context.Context, dotEnvPath string) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, serviceName, dotEnvPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Store.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	logger.Log(ctx).Debug(ctx, LogConfigLoaded,
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.String("store_driver", cfg.Store.Driver),
		zap.String("store_path", cfg.Store.ResolvedPath()),
		zap.String("redis_address", cfg.Redis.GetAddress()),
		zap.Duration("remote_timeout", cfg.Remote.Timeout),
		zap.String("web_address", cfg.Web.GetAddress()),
		zap.Duration("shutdown_timeout", cfg.Web.ShutdownTimeout))

	return cfg, nil
}
