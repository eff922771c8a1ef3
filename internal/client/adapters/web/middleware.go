package web

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"notedesk/pkg/logger"
)

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

const localRequestID = "request_id"

const (
	LogRequestStarted   = "request started"
	LogRequestCompleted = "request completed"
	LogRequestFailed    = "request failed"
	LogServerPanic      = "server panic"
	ErrorSendPanicReply = "failed to send error response after panic"
)

// requestContext собирает контекст обработчика: логгер и id запроса.
func requestContext(c fiber.Ctx, log *logger.Logger) context.Context {
	ctx := logger.NewContext(c.Context(), log)
	if id, ok := c.Locals(localRequestID).(string); ok && id != "" {
		ctx = logger.NewRequestIDContext(ctx, id)
	}
	return ctx
}

// NewRequestIDMiddleware берет id из заголовка запроса, если он допустим, или создает новый.
func NewRequestIDMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		id := logger.NormalizeRequestID(c.Get(HeaderRequestID))
		c.Locals(localRequestID, id)
		c.Set(HeaderRequestID, id)
		return c.Next()
	}
}

// NewLoggerMiddleware логирует начало и завершение каждого запроса.
func NewLoggerMiddleware(base *logger.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		ctx := requestContext(c, base)
		start := time.Now()

		log := logger.Log(ctx).With(
			zap.String("path", c.Path()),
			zap.String("method", c.Method()),
			zap.String("ip", c.IP()),
		)
		log.Debug(ctx, LogRequestStarted)

		err := c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			log.Error(ctx, LogRequestFailed, append(fields, zap.Error(err))...)
			return fmt.Errorf("request processing error: %w", err)
		}

		log.Info(ctx, LogRequestCompleted, fields...)
		return nil
	}
}

// NewRecoveryMiddleware превращает панику обработчика в ответ 500.
func NewRecoveryMiddleware(base *logger.Logger) fiber.Handler {
	return func(c fiber.Ctx) (err error) {
		ctx := requestContext(c, base)

		defer func() {
			if r := recover(); r != nil {
				logger.Log(ctx).Error(ctx, LogServerPanic,
					zap.String("error", fmt.Sprintf("%v", r)),
					zap.String("stack", string(debug.Stack())),
				)
				if sendErr := c.Status(fiber.StatusInternalServerError).SendString("internal server error"); sendErr != nil {
					logger.Log(ctx).Error(ctx, ErrorSendPanicReply, zap.Error(sendErr))
				}
				err = nil
			}
		}()

		return c.Next()
	}
}
