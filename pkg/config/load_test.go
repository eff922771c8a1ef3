package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notedesk/pkg/config"
)

type sample struct {
	Name  string `env:"NOTEDESK_SAMPLE_NAME" env-default:"fallback"`
	Count int    `env:"NOTEDESK_SAMPLE_COUNT" env-default:"1"`
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults when nothing is set", func(t *testing.T) {
		cfg, err := config.Load[sample](ctx, "test", "")
		require.NoError(t, err)
		assert.Equal(t, "fallback", cfg.Name)
		assert.Equal(t, 1, cfg.Count)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("NOTEDESK_SAMPLE_NAME", "from-env")

		cfg, err := config.Load[sample](ctx, "test", "")
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.Name)
	})

	t.Run("dotenv file fills unset variables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("NOTEDESK_SAMPLE_COUNT=7\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("NOTEDESK_SAMPLE_COUNT") })

		cfg, err := config.Load[sample](ctx, "test", path)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.Count)
	})

	t.Run("missing dotenv file is ignored", func(t *testing.T) {
		cfg, err := config.Load[sample](ctx, "test", filepath.Join(t.TempDir(), "absent.env"))
		require.NoError(t, err)
		assert.Equal(t, "fallback", cfg.Name)
	})

	t.Run("malformed value is an error", func(t *testing.T) {
		t.Setenv("NOTEDESK_SAMPLE_COUNT", "many")

		cfg, err := config.Load[sample](ctx, "test", "")
		require.Error(t, err)
		assert.Nil(t, cfg)
	})
}
