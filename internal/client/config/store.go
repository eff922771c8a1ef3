package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Драйверы локального хранилища.
const (
	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

const defaultSessionFile = ".notedesk/session.yaml"

// StoreConfig выбирает хранилище сессии.
type StoreConfig struct {
	Driver string `yaml:"driver" env:"NOTEDESK_STORE_DRIVER" env-default:"file"`
	Path   string `yaml:"path" env:"NOTEDESK_STORE_PATH"`
}

// Validate проверяет имя драйвера.
func (c *StoreConfig) Validate() error {
	switch c.Driver {
	case DriverFile, DriverRedis, DriverMemory:
		return nil
	default:
		return fmt.Errorf("unknown store driver %q", c.Driver)
	}
}

// ResolvedPath возвращает путь файла сессии, по умолчанию в домашнем каталоге.
func (c *StoreConfig) ResolvedPath() string {
	if c.Path != "" {
		return c.Path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultSessionFile
	}
	return filepath.Join(home, defaultSessionFile)
}

// RedisConfig - настройки драйвера redis.
type RedisConfig struct {
	Host            string        `yaml:"host" env:"NOTEDESK_REDIS_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"NOTEDESK_REDIS_PORT" env-default:"6379"`
	Password        string        `yaml:"password" env:"NOTEDESK_REDIS_PASSWORD" env-default:""`
	DB              int           `yaml:"db" env:"NOTEDESK_REDIS_DB" env-default:"0"`
	KeyPrefix       string        `yaml:"key_prefix" env:"NOTEDESK_REDIS_KEY_PREFIX" env-default:"notedesk:"`
	ConnectTimeout  time.Duration `yaml:"connect_timeout" env:"NOTEDESK_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"NOTEDESK_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"NOTEDESK_REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize        int           `yaml:"pool_size" env:"NOTEDESK_REDIS_POOL_SIZE" env-default:"4"`
	MinIdle         int           `yaml:"min_idle" env:"NOTEDESK_REDIS_MIN_IDLE" env-default:"1"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"NOTEDESK_REDIS_IDLE_TIMEOUT" env-default:"5m"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime" env:"NOTEDESK_REDIS_MAX_CONN_LIFETIME" env-default:"1h"`
}

// GetAddress возвращает адрес Redis в формате host:port.
func (c *RedisConfig) GetAddress() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
