package config

import (
	"os"
	"strconv"
)

type Config struct {
	ProxyURL       string
	Concurrency    int
	Retries        int
	TimeoutSec     int
	LogLevel       string
	ProxyPort      int
	AllowedOrigins string
	ProxyRetries   int
	ProxyTimeout   int
}

func Load() Config {
	return Config{
		ProxyURL:       envStr("ROUNDEX_PROXY_URL", "http://127.0.0.1:8787"),
		Concurrency:    envInt("ROUNDEX_CONCURRENCY", 4),
		Retries:        envInt("ROUNDEX_RETRIES", 4),
		TimeoutSec:     envInt("ROUNDEX_TIMEOUT_SEC", 35),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		ProxyPort:      envInt("SHAREPROXY_PORT", 8787),
		AllowedOrigins: envStr("SHAREPROXY_ALLOWED_ORIGINS", "*"),
		ProxyRetries:   envInt("SHAREPROXY_RETRIES", 3),
		ProxyTimeout:   envInt("SHAREPROXY_TIMEOUT_SEC", 35),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
