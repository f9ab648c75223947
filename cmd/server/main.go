package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	httpadapter "riskscan/internal/adapters/http"
	"riskscan/internal/app"
	"riskscan/internal/config"
	"riskscan/internal/logging"
	"riskscan/internal/ports"
	checksvc "riskscan/internal/services/checker"
	profsvc "riskscan/internal/services/profiles"
	"riskscan/internal/services/tally"
)

func main() {
	cfg, err := config.Load()
	logging.Configure(cfg.LogLevel)
	if err != nil {
		slog.Warn("config", "warning", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	history, err := app.OpenHistory(ctx, cfg)
	if err != nil {
		slog.Error("history store unavailable", "err", err)
		os.Exit(1)
	}
	defer history.Close()

	counterStore, closeCounters, err := app.OpenCounterStore(ctx, cfg)
	if err != nil {
		slog.Error("counter store unavailable", "err", err)
		os.Exit(1)
	}
	defer closeCounters()
	counts := tally.Load(ctx, counterStore)

	scanner := app.DirectScanner(cfg)
	var checker ports.Checker
	if scanner != nil {
		checker = checksvc.New(scanner, app.Reputation(cfg), history, counts)
	} else {
		slog.Warn("URLSCAN_API_KEY missing, /urlscan and /check disabled")
	}

	srv := httpadapter.New(scanner, checker, history, profsvc.New(history), counts)
	r := chi.NewRouter()
	r.Mount("/", srv.Routes())

	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	slog.Info("listening", "addr", cfg.ListenAddr, "env", cfg.Env)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		slog.Info("shutting down", "signal", sig.String())
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown", "err", err)
		}
		cancel()
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}
}
