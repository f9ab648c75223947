// Command riskscan checks a URL against urlscan.io and PhishStats.
//
//	riskscan <url>          scan a URL and print the combined report
//	riskscan history [n]    print the last n saved scans (default 5)
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"riskscan/internal/app"
	"riskscan/internal/config"
	"riskscan/internal/domain"
	"riskscan/internal/logging"
	"riskscan/internal/ports"
	checksvc "riskscan/internal/services/checker"
	"riskscan/internal/services/tally"
)

const usage = "usage: riskscan <url> | riskscan history [n]"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return 2
	}
	cfg, cfgErr := config.Load()
	logging.Configure(cfg.LogLevel)
	slog.Debug("config", "warning", cfgErr)

	if args[0] == "history" {
		return history(ctx, cfg, args[1:], stdout, stderr)
	}
	if len(args) != 1 {
		fmt.Fprintln(stderr, usage)
		return 2
	}
	return scan(ctx, cfg, args[0], stdout, stderr)
}

func scan(ctx context.Context, cfg config.Config, raw string, stdout, stderr io.Writer) int {
	target, err := domain.NormalizeURL(raw)
	if err != nil {
		if strings.TrimSpace(raw) == "" {
			fmt.Fprintln(stderr, "Please enter a URL.")
		} else {
			fmt.Fprintln(stderr, "Invalid URL.")
		}
		slog.Debug("rejected input", "err", err)
		return 2
	}

	var (
		scanner ports.Scanner
		hist    ports.HistoryRepository
	)
	if cfg.BackendURL != "" {
		b := app.RemoteBackend(cfg)
		scanner, hist = b, b
	} else {
		scanner = app.DirectScanner(cfg)
		if scanner == nil {
			fmt.Fprintln(stderr, "URLSCAN_API_KEY missing (or set BACKEND_URL)")
			return 1
		}
		if cfg.DatabaseURL != "" {
			h, err := app.OpenHistory(ctx, cfg)
			if err != nil {
				slog.Warn("scan history disabled", "err", err)
			} else {
				defer h.Close()
				hist = h
			}
		}
	}

	store, closeStore, err := app.OpenCounterStore(ctx, cfg)
	if err != nil {
		fmt.Fprintln(stderr, "Error running checks.")
		slog.Error("counter store unavailable", "err", err)
		return 1
	}
	defer closeStore()

	checker := checksvc.New(scanner, app.Reputation(cfg), hist, tally.Load(ctx, store))
	fmt.Fprintln(stderr, "Scanning...")
	report, err := checker.Check(ctx, target)
	if err != nil {
		fmt.Fprintln(stderr, "Error running checks.")
		slog.Debug("check failed", "err", errors.Unwrap(err))
		return 1
	}
	fmt.Fprint(stdout, report.Text)
	c := report.Counts
	fmt.Fprintf(stdout, "\nTotals: Safe %d, Suspicious %d, Malicious %d\n", c.Safe, c.Suspicious, c.Malicious)
	return 0
}

func history(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) int {
	n := 5
	if len(args) > 1 {
		fmt.Fprintln(stderr, usage)
		return 2
	}
	if len(args) == 1 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 || v > 100 {
			fmt.Fprintln(stderr, "n must be between 1 and 100")
			return 2
		}
		n = v
	}

	var repo ports.HistoryRepository
	if cfg.BackendURL != "" {
		repo = app.RemoteBackend(cfg)
	} else {
		if cfg.DatabaseURL == "" {
			fmt.Fprintln(stderr, "DATABASE_URL or BACKEND_URL required for history")
			return 1
		}
		h, err := app.OpenHistory(ctx, cfg)
		if err != nil {
			fmt.Fprintln(stderr, "history unavailable:", err)
			return 1
		}
		defer h.Close()
		repo = h
	}

	recs, err := repo.Recent(ctx, n)
	if err != nil {
		fmt.Fprintln(stderr, "history unavailable:", err)
		return 1
	}
	if len(recs) == 0 {
		fmt.Fprintln(stdout, "No scans yet.")
		return 0
	}
	for _, r := range recs {
		fmt.Fprintf(stdout, "%s  %s  %s\n", r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.URL, r.Result)
	}
	return 0
}
