package config

import "time"

// RemoteConfig - настройки обращения к удаленному сервису.
// Нулевой таймаут оставляет значение транспорта по умолчанию.
type RemoteConfig struct {
	Timeout   time.Duration `yaml:"timeout" env:"NOTEDESK_REMOTE_TIMEOUT" env-default:"0s"`
	UserAgent string        `yaml:"user_agent" env:"NOTEDESK_REMOTE_USER_AGENT" env-default:"notedesk"`
}
