package config

import (
	"fmt"
	"time"
)

// WebConfig - настройки локального веб-интерфейса.
// ShutdownTimeout ограничивает время остановки HTTP сервера.
type WebConfig struct {
	Host            string        `yaml:"host" env:"NOTEDESK_WEB_HOST" env-default:"127.0.0.1"`
	Port            int           `yaml:"port" env:"NOTEDESK_WEB_PORT" env-default:"8090"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"NOTEDESK_WEB_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"NOTEDESK_WEB_WRITE_TIMEOUT" env-default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"NOTEDESK_WEB_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// GetAddress возвращает адрес веб-сервера.
func (c *WebConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
