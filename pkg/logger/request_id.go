package logger

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// MaxRequestIDLength - предел длины id, принятого от клиента.
const MaxRequestIDLength = 64

type requestIDKey struct{}

// NewRequestIDContext кладет идентификатор запроса в контекст.
// Пустой или недопустимый id заменяется сгенерированным.
func NewRequestIDContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, NormalizeRequestID(requestID))
}

// GetRequestID извлекает идентификатор запроса из контекста.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}

// NormalizeRequestID принимает id из заголовка X-Request-ID.
// Допустимы буквы, цифры и символы "-_.:" длиной до MaxRequestIDLength,
// иначе возвращается новый id.
func NormalizeRequestID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" || len(id) > MaxRequestIDLength {
		return GenerateRequestID()
	}
	for _, r := range id {
		if !isRequestIDRune(r) {
			return GenerateRequestID()
		}
	}
	return id
}

func isRequestIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '-', r == '_', r == '.', r == ':':
		return true
	default:
		return false
	}
}

// GenerateRequestID генерирует новый идентификатор запроса.
func GenerateRequestID() string {
	return uuid.New().String()
}
