package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/term"

	"github.com/andy6609/framechat/internal/chat"
	"github.com/andy6609/framechat/internal/chatlog"
	"github.com/andy6609/framechat/internal/config"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if err := run(os.Args[1:], logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// run owns every resource it opens, so its defers run before main exits.
func run(args []string, logger *slog.Logger) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if cfg.Interactive && term.IsTerminal(int(os.Stdin.Fd())) {
		if err := config.Prompt(cfg, os.Stdin, os.Stdout); err != nil {
			return fmt.Errorf("invalid startup answer: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	commandLog, err := chatlog.OpenFile(cfg.CommandLogPath)
	if err != nil {
		return err
	}
	defer commandLog.Close()

	messageLog, err := chatlog.OpenFile(cfg.MessageLogPath)
	if err != nil {
		return err
	}
	defer messageLog.Close()

	srv := chat.NewServer(chat.Options{
		Addr:         cfg.Addr(),
		MaxClients:   cfg.MaxClients,
		CommandChar:  cfg.CommandChar,
		BufferSize:   cfg.BufferSize,
		WriteTimeout: cfg.WriteTimeout,
		CommandLog:   commandLog,
		MessageLog:   messageLog,
		History:      messageLog,
	}, logger)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	metrics := startMetrics(cfg.MetricsAddr, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	if metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		_ = metrics.Shutdown(ctx)
		cancel()
	}
	srv.Stop()
	return nil
}

func startMetrics(addr string, logger *slog.Logger) *http.Server {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	hs := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics endpoint failed", "addr", addr, "error", err)
		}
	}()
	logger.Info("metrics endpoint started", "addr", addr)
	return hs
}
