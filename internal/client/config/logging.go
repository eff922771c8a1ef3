package config

import "notedesk/pkg/logger"

// LoggingConfig - настройки логирования.
type LoggingConfig struct {
	Level string `yaml:"level" env:"NOTEDESK_LOGGER_LEVEL" env-default:"info"`
	Mode  string `yaml:"mode" env:"NOTEDESK_LOGGER_MODE" env-default:"production"`
}

// GetEnvironment возвращает режим работы логгера.
func (c *LoggingConfig) GetEnvironment() logger.Environment {
	if c.Mode == string(logger.Development) {
		return logger.Development
	}
	return logger.Production
}
