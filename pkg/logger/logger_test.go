package logger_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notedesk/pkg/logger"
)

func TestNewLogger(t *testing.T) {
	levels := []string{"debug", "info", "warn", "warning", "error", "invalid", ""}

	for _, env := range []logger.Environment{logger.Development, logger.Production} {
		for _, level := range levels {
			t.Run(string(env)+"/level="+level, func(t *testing.T) {
				log, err := logger.NewLogger(env, level)
				require.NoError(t, err)
				require.NotNil(t, log)

				assert.NotPanics(t, func() {
					log.Debug(context.Background(), "debug message")
					log.Info(context.Background(), "info message")
				})
			})
		}
	}
}

func TestFromContext(t *testing.T) {
	t.Run("logger stored in context is returned", func(t *testing.T) {
		testLogger, err := logger.NewLogger(logger.Development, "debug")
		require.NoError(t, err)

		ctx := logger.NewContext(context.Background(), testLogger)

		got, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, testLogger, got)
	})

	t.Run("derived context keeps the logger", func(t *testing.T) {
		testLogger := logger.NewNop()

		type key struct{}
		ctx := context.WithValue(logger.NewContext(context.Background(), testLogger), key{}, "v")

		got, err := logger.FromContext(ctx)
		require.NoError(t, err)
		assert.Same(t, testLogger, got)
	})

	t.Run("missing logger is an error", func(t *testing.T) {
		got, err := logger.FromContext(context.Background())
		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, logger.ErrLoggerNotFound)
	})
}

func TestLog(t *testing.T) {
	logger.SetGlobalLogger(nil)
	defer logger.SetGlobalLogger(nil)

	t.Run("context logger wins over global", func(t *testing.T) {
		contextLogger := logger.NewNop()
		globalLogger := logger.NewNop()
		logger.SetGlobalLogger(globalLogger)

		got := logger.Log(logger.NewContext(context.Background(), contextLogger))
		assert.Same(t, contextLogger, got)
	})

	t.Run("global logger used when context has none", func(t *testing.T) {
		globalLogger := logger.NewNop()
		logger.SetGlobalLogger(globalLogger)

		assert.Same(t, globalLogger, logger.Log(context.Background()))
	})

	t.Run("fallback logger used when nothing is configured", func(t *testing.T) {
		logger.SetGlobalLogger(nil)

		got := logger.Log(context.Background())
		require.NotNil(t, got)
		assert.NotPanics(t, func() {
			got.Warn(context.Background(), "fallback message")
		})
	})
}

func TestInitGlobalLogger(t *testing.T) {
	logger.SetGlobalLogger(nil)
	defer logger.SetGlobalLogger(nil)

	require.NoError(t, logger.InitGlobalLogger(logger.Production, "info"))
	first := logger.Log(context.Background())

	require.NoError(t, logger.InitGlobalLogger(logger.Development, "debug"))
	second := logger.Log(context.Background())

	assert.Same(t, first, second, "second init must not replace the global logger")
}

func TestNormalizeRequestID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		keep bool
	}{
		{name: "plain", raw: "req-1", keep: true},
		{name: "uuid", raw: "0b6f3c1e-8a2d-4c59-9e1f-3d2a7b6c5e4f", keep: true},
		{name: "dots and colons", raw: "edge:1.2_a", keep: true},
		{name: "empty", raw: ""},
		{name: "spaces inside", raw: "a b"},
		{name: "newline", raw: "a\nb"},
		{name: "html", raw: "<script>"},
		{name: "too long", raw: strings.Repeat("a", logger.MaxRequestIDLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := logger.NormalizeRequestID(tt.raw)
			if tt.keep {
				assert.Equal(t, tt.raw, got)
				return
			}
			assert.NotEqual(t, tt.raw, got)
			assert.Len(t, got, 36)
		})
	}

	assert.Equal(t, "req-2", logger.NormalizeRequestID("  req-2 "))
}

func TestRequestID(t *testing.T) {
	t.Run("explicit id is kept", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "req-1")

		id, ok := logger.GetRequestID(ctx)
		assert.True(t, ok)
		assert.Equal(t, "req-1", id)
	})

	t.Run("empty id is generated", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "")

		id, ok := logger.GetRequestID(ctx)
		assert.True(t, ok)
		assert.Len(t, id, 36)
	})

	t.Run("invalid id is replaced", func(t *testing.T) {
		ctx := logger.NewRequestIDContext(context.Background(), "bad id\n")

		id, ok := logger.GetRequestID(ctx)
		assert.True(t, ok)
		assert.NotEqual(t, "bad id\n", id)
		assert.Len(t, id, 36)
	})

	t.Run("With keeps fields and returns a copy", func(t *testing.T) {
		base := logger.NewNop()
		withField := base.With(zap.String("k", "v"))

		assert.NotSame(t, base, withField)
	})
}
