// Package store определяет локальное хранилище ключ-значение для сессии.
package store

import "context"

// KV - плоское хранилище строк. Get возвращает "" для отсутствующего ключа.
type KV interface {
	Get(ctx context.Context, key string) (string, error)

	Set(ctx context.Context, key string, value string) error

	Delete(ctx context.Context, key string) error

	Close() error
}
