package cli

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"fintrack/internal/config"
	"fintrack/internal/log"
)

func TestNewLogger(t *testing.T) {
	cfg := &config.Config{LogLevel: "debug", LogFormat: "json"}

	logger := NewLogger(cfg, log.ComponentWorker)
	if logger.Component() != log.ComponentWorker {
		t.Fatalf("component = %q, want %q", logger.Component(), log.ComponentWorker)
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("expected debug level to be enabled")
	}

	if got := NewLogger(&config.Config{LogLevel: "warn"}, "").Component(); got != log.ComponentApp {
		t.Fatalf("default component = %q, want %q", got, log.ComponentApp)
	}
}

func TestWaitForShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	returned := make(chan struct{})
	go func() {
		WaitForShutdown(ctx, done)
		close(returned)
	}()

	cancel()
	select {
	case <-returned:
		t.Fatal("returned before shutdown completed")
	case <-time.After(20 * time.Millisecond):
	}

	close(done)
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("did not return after shutdown completed")
	}
}
