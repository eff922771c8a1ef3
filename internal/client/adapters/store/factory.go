package store

import (
	"context"
	"fmt"

	"notedesk/internal/client/config"
	"notedesk/internal/client/ports/store"
)

// New открывает хранилище, выбранное в конфигурации.
func New(ctx context.Context, cfg *config.Config) (store.KV, error) {
	switch cfg.Store.Driver {
	case config.DriverFile:
		return NewFileKV(cfg.Store.ResolvedPath())
	case config.DriverRedis:
		return NewRedisKV(ctx, &cfg.Redis)
	case config.DriverMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}
