// Package config загружает конфигурацию из переменных окружения и необязательного .env файла.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"notedesk/pkg/logger"
)

const (
	msgLoadingConfiguration = "loading configuration"
	msgConfigurationLoaded  = "configuration loaded successfully"
	msgDotEnvSkipped        = "dotenv file not loaded"

	errFailedLoadConfiguration = "failed to load configuration"

	attrService = "service"
	attrPath    = "path"
)

// DefaultDotEnv - путь к .env файлу по умолчанию.
const DefaultDotEnv = ".env"

// Load заполняет структуру T из окружения. Если dotEnvPath указывает на
// существующий файл, его значения подмешиваются в окружение первыми,
// при этом уже выставленные переменные не перезаписываются.
func Load[T any](ctx context.Context, serviceName, dotEnvPath string) (*T, error) {
	log := logger.Log(ctx)

	log.Debug(ctx, msgLoadingConfiguration,
		zap.String(attrService, serviceName),
		zap.String(attrPath, dotEnvPath))

	if dotEnvPath != "" {
		if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn(ctx, msgDotEnvSkipped, zap.String(attrPath, dotEnvPath), zap.Error(err))
		}
	}

	var cfg T
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Error(ctx, errFailedLoadConfiguration,
			zap.String(attrService, serviceName),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
	}

	log.Debug(ctx, msgConfigurationLoaded, zap.String(attrService, serviceName))

	return &cfg, nil
}
