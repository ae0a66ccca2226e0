package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config — конфигурация процесса. Загружается один раз при старте
// и дальше не изменяется; компоненты получают ее по значению.
type Config struct {
	PostgresConn    string
	ServerAddress   string
	JWTSecret       string
	ArchiveInterval time.Duration
}

const (
	defaultServerAddress   = "0.0.0.0:8080"
	defaultArchiveInterval = 60 // минут
	minSecretLen           = 10
)

// Load читает конфигурацию из окружения.
// Отсутствие обязательных значений — ошибка старта процесса.
func Load() (Config, error) {
	cfg := Config{
		PostgresConn:  os.Getenv("POSTGRES_CONN"),
		ServerAddress: os.Getenv("SERVER_ADDRESS"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}

	if cfg.PostgresConn == "" {
		return Config{}, fmt.Errorf("POSTGRES_CONN env variable is not set")
	}
	if cfg.ServerAddress == "" {
		cfg.ServerAddress = defaultServerAddress
	}
	if len(cfg.JWTSecret) < minSecretLen {
		return Config{}, fmt.Errorf("JWT_SECRET must be set and at least %d characters", minSecretLen)
	}

	minutes := defaultArchiveInterval
	if v := os.Getenv("ARCHIVE_INTERVAL_MINUTES"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m <= 0 {
			return Config{}, fmt.Errorf("invalid ARCHIVE_INTERVAL_MINUTES value %q", v)
		}
		minutes = m
	}
	cfg.ArchiveInterval = time.Duration(minutes) * time.Minute

	return cfg, nil
}
