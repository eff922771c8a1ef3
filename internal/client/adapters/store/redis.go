// Package store содержит реализации локального хранилища сессии.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"notedesk/internal/client/config"
	"notedesk/internal/client/ports/store"
	"notedesk/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodGet    = "get"
	LogMethodSet    = "set"
	LogMethodDelete = "delete"

	ErrorFailedToConnect = "failed to connect to redis"
	ErrorFailedToGet     = "failed to get value from redis"
	ErrorFailedToSet     = "failed to set value in redis"
	ErrorFailedToDelete  = "failed to delete value from redis"
	ErrorFailedToClose   = "failed to close redis connection"
)

// RedisKV хранит ключи сессии в Redis без срока жизни.
type RedisKV struct {
	client *redis.Client
	prefix string
}

var _ store.KV = (*RedisKV)(nil)

// NewRedisKV подключается к Redis и проверяет соединение.
func NewRedisKV(ctx context.Context, cfg *config.RedisConfig) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            cfg.GetAddress(),
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     cfg.ConnectTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdle,
		ConnMaxIdleTime: cfg.IdleTimeout,
		ConnMaxLifetime: cfg.MaxConnLifetime,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", ErrorFailedToConnect, err)
	}

	return &RedisKV{client: client, prefix: cfg.KeyPrefix}, nil
}

func (s *RedisKV) key(k string) string {
	return s.prefix + k
}

// Get возвращает значение или "" для отсутствующего ключа.
func (s *RedisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		logger.Log(ctx).Error(ctx, ErrorFailedToGet,
			zap.String("method", LogMethodGet), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}
	return value, nil
}

// Set сохраняет значение без TTL.
func (s *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToSet,
			zap.String("method", LogMethodSet), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}
	return nil
}

// Delete удаляет ключ; отсутствие ключа ошибкой не считается.
func (s *RedisKV) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		logger.Log(ctx).Error(ctx, ErrorFailedToDelete,
			zap.String("method", LogMethodDelete), zap.String("key", key), zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDelete, err)
	}
	return nil
}

// Close закрывает соединение с Redis.
func (s *RedisKV) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("%s: %w", ErrorFailedToClose, err)
	}
	return nil
}
