package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ROUNDEX_PROXY_URL", "ROUNDEX_CONCURRENCY", "ROUNDEX_RETRIES",
		"ROUNDEX_TIMEOUT_SEC", "LOG_LEVEL", "SHAREPROXY_PORT",
		"SHAREPROXY_ALLOWED_ORIGINS", "SHAREPROXY_RETRIES", "SHAREPROXY_TIMEOUT_SEC",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ProxyURL != "http://127.0.0.1:8787" {
		t.Errorf("expected default proxy url, got %s", cfg.ProxyURL)
	}
	if cfg.Concurrency != 4 {
		t.Errorf("expected default concurrency 4, got %d", cfg.Concurrency)
	}
	if cfg.Retries != 4 {
		t.Errorf("expected default retries 4, got %d", cfg.Retries)
	}
	if cfg.TimeoutSec != 35 {
		t.Errorf("expected default timeout 35, got %d", cfg.TimeoutSec)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.ProxyPort != 8787 {
		t.Errorf("expected default proxy port 8787, got %d", cfg.ProxyPort)
	}
	if cfg.AllowedOrigins != "*" {
		t.Errorf("expected default origins *, got %s", cfg.AllowedOrigins)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("ROUNDEX_PROXY_URL", "https://proxy.example.workers.dev")
	t.Setenv("ROUNDEX_CONCURRENCY", "8")
	t.Setenv("ROUNDEX_RETRIES", "2")
	t.Setenv("ROUNDEX_TIMEOUT_SEC", "10")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SHAREPROXY_PORT", "9999")
	t.Setenv("SHAREPROXY_ALLOWED_ORIGINS", "http://localhost:5500")

	cfg := Load()

	if cfg.ProxyURL != "https://proxy.example.workers.dev" {
		t.Errorf("expected custom proxy url, got %s", cfg.ProxyURL)
	}
	if cfg.Concurrency != 8 {
		t.Errorf("expected concurrency 8, got %d", cfg.Concurrency)
	}
	if cfg.Retries != 2 {
		t.Errorf("expected retries 2, got %d", cfg.Retries)
	}
	if cfg.TimeoutSec != 10 {
		t.Errorf("expected timeout 10, got %d", cfg.TimeoutSec)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.LogLevel)
	}
	if cfg.ProxyPort != 9999 {
		t.Errorf("expected proxy port 9999, got %d", cfg.ProxyPort)
	}
	if cfg.AllowedOrigins != "http://localhost:5500" {
		t.Errorf("expected custom origins, got %s", cfg.AllowedOrigins)
	}
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("ROUNDEX_CONCURRENCY", "notanumber")

	cfg := Load()

	if cfg.Concurrency != 4 {
		t.Errorf("expected default concurrency on invalid value, got %d", cfg.Concurrency)
	}
}
