// Package main implements the entry point for the task dispatcher
// node: it wires the event queue, state cache, and dispatch core
// together, exposes the operator control surface over HTTP, and runs
// until stopped or fatally errored.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashgrid/tasknode/internal/api"
	"github.com/hashgrid/tasknode/internal/config"
	"github.com/hashgrid/tasknode/internal/event"
	"github.com/hashgrid/tasknode/internal/platform/logger"
	"github.com/hashgrid/tasknode/internal/state"
	"github.com/hashgrid/tasknode/internal/task"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("dispatcher exited with error: %v", err)
	}
}

// run loads configuration, wires dependencies, and drives the
// dispatcher until a signal or fatal fault stops it.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("dispatcher configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"task_name", cfg.Task.Name,
		"distributed", cfg.Task.Distributed)

	queue := event.NewMemoryQueue(cfg.Task.QueueSize, appLogger)
	defer queue.Close()
	cache := state.NewMemoryCache()

	dispatcher := task.NewDispatcher(queue, cache, task.NewInferenceRunner, task.DispatcherConfig{
		RetryDelay:    time.Duration(cfg.Task.RetryDelaySeconds) * time.Second,
		TaskName:      cfg.Task.Name,
		Distributed:   cfg.Task.Distributed,
		AckTimeout:    time.Duration(cfg.Task.AckTimeoutSeconds) * time.Second,
		ShutdownGrace: time.Duration(cfg.Task.ShutdownGraceSeconds) * time.Second,
	}, appLogger)
	task.SetDefault(dispatcher)

	handler := api.NewDispatcherHandler(dispatcher, appLogger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.NewRouter(handler),
	}

	go func() {
		appLogger.Info("control surface listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Error("control surface failed", "error", err)
			dispatcher.Stop()
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdownCh
		appLogger.Info("shutdown signal received", "signal", sig.String())
		dispatcher.Stop()
	}()

	// Blocks until Stop is called or a fatal fault occurs.
	startErr := dispatcher.Start(context.Background())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("control surface shutdown failed", "error", err)
	}

	return startErr
}
