package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/coursekit/roundex/internal/config"
	"github.com/coursekit/roundex/internal/proxy"
)

func main() {
	cfg := config.Load()

	port := flag.Int("port", cfg.ProxyPort, "Bind port.")
	origins := flag.String("allowed-origins", cfg.AllowedOrigins, `Comma-separated origins, or "*" for any.`)
	retries := flag.Int("retries", cfg.ProxyRetries, "Retries per upstream URL.")
	timeoutSec := flag.Int("timeout", cfg.ProxyTimeout, "Upstream timeout in seconds.")
	flag.Parse()

	setupLogging(cfg.LogLevel)

	upstream := proxy.NewUpstream(*retries, time.Duration(*timeoutSec)*time.Second, slog.Default())
	srv := proxy.NewServer(*port, *origins, upstream, slog.Default())

	slog.Info("shareproxy starting", "port", *port, "allowed_origins", *origins)
	if err := srv.Start(); err != nil {
		slog.Error("proxy server error", "error", err)
		os.Exit(1)
	}
}

func setupLogging(level string) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}
