package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/coursekit/roundex/internal/batch"
	"github.com/coursekit/roundex/internal/config"
	"github.com/coursekit/roundex/internal/fetch"
	"github.com/coursekit/roundex/internal/share"
	"github.com/coursekit/roundex/internal/workbook"
)

func main() {
	cfg := config.Load()

	linksFile := flag.String("links", "", "File with one share link per line, optionally prefixed with a display name and a tab.")
	metadata := flag.String("metadata", "", "Metadata workbook with display names in column B and share links in column C.")
	students := flag.String("students", "all", `Comma-separated display names to process from the metadata workbook, or "all".`)
	outDir := flag.String("out", "results", "Output directory for per-conversation workbooks.")
	zipPath := flag.String("zip", "", "Write a single ZIP archive to this path instead of a directory.")
	statusPath := flag.String("status", "", "Status workbook path. Default: <out>/status.xlsx.")
	proxyURL := flag.String("proxy", cfg.ProxyURL, "Fetch proxy base URL.")
	concurrency := flag.Int("concurrency", cfg.Concurrency, "Maximum fetches in flight.")
	retries := flag.Int("retries", cfg.Retries, "Fetch attempts per link.")
	timeoutSec := flag.Int("timeout", cfg.TimeoutSec, "Per-attempt fetch timeout in seconds.")
	flag.Parse()

	setupLogging(cfg.LogLevel)

	targets, preFailed, err := collectTargets(*linksFile, *metadata, *students, flag.Args())
	if err != nil {
		slog.Error("failed to collect targets", "error", err)
		os.Exit(1)
	}
	if len(targets) == 0 && len(preFailed) == 0 {
		slog.Error("no share links given; pass links as arguments, --links or --metadata")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("roundex starting",
		"targets", len(targets),
		"proxy", *proxyURL,
		"concurrency", *concurrency,
	)

	client := fetch.NewClient(*proxyURL, *retries, time.Duration(*timeoutSec)*time.Second, slog.Default())
	runner := batch.NewRunner(client, slog.Default())

	result := &batch.Result{}
	if len(targets) > 0 {
		result, err = runner.Run(ctx, targets, *concurrency)
		if err != nil {
			slog.Error("batch failed", "error", err)
			os.Exit(1)
		}
	}
	records := append(result.Records, preFailed...)

	if *zipPath != "" {
		err = writeArchive(*zipPath, result.Outputs, records)
	} else {
		err = writeDirectory(*outDir, *statusPath, result.Outputs, records)
	}
	if err != nil {
		slog.Error("failed to write outputs", "error", err)
		os.Exit(1)
	}

	slog.Info("roundex finished",
		"succeeded", len(result.Outputs),
		"failed", len(records)-len(result.Outputs),
	)
}

// collectTargets merges the three input surfaces. Metadata students absent
// from the workbook come back as pre-failed status records.
func collectTargets(linksFile, metadata, students string, args []string) ([]share.Link, []workbook.StatusRecord, error) {
	var targets []share.Link
	var preFailed []workbook.StatusRecord

	for _, arg := range args {
		targets = append(targets, share.Link{URL: strings.TrimSpace(arg)})
	}

	if linksFile != "" {
		fromFile, err := readLinksFile(linksFile)
		if err != nil {
			return nil, nil, err
		}
		targets = append(targets, fromFile...)
	}

	if metadata != "" {
		var filter []string
		if !strings.EqualFold(strings.TrimSpace(students), "all") {
			filter = strings.Split(students, ",")
		}
		fromMeta, missing, err := workbook.ReadTargets(metadata, filter)
		if err != nil {
			return nil, nil, err
		}
		targets = append(targets, fromMeta...)
		preFailed = append(preFailed, missing...)
	}

	return targets, preFailed, nil
}

// readLinksFile parses one link per line; a display name may precede the
// link, separated by a tab. Blank lines and #-comments are skipped.
func readLinksFile(path string) ([]share.Link, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open links file: %w", err)
	}
	defer f.Close()

	var out []share.Link
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, link, ok := strings.Cut(line, "\t"); ok {
			out = append(out, share.Link{URL: strings.TrimSpace(link), Name: strings.TrimSpace(name)})
		} else {
			out = append(out, share.Link{URL: line})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}
	return out, nil
}

func writeArchive(path string, outputs []batch.Output, records []workbook.StatusRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	defer f.Close()
	if err := batch.WriteArchive(f, outputs, records); err != nil {
		return err
	}
	return f.Close()
}

func writeDirectory(dir, statusPath string, outputs []batch.Output, records []workbook.StatusRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	for _, out := range outputs {
		if err := out.File.SaveAs(filepath.Join(dir, out.Name+".xlsx")); err != nil {
			return fmt.Errorf("save workbook %s: %w", out.Name, err)
		}
	}

	status, err := workbook.Status(records)
	if err != nil {
		return fmt.Errorf("build status workbook: %w", err)
	}
	if statusPath == "" {
		statusPath = filepath.Join(dir, "status.xlsx")
	}
	if err := status.SaveAs(statusPath); err != nil {
		return fmt.Errorf("save status workbook: %w", err)
	}
	return nil
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

