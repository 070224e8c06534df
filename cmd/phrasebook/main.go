// Phrasebook is a multi-language phrasebook daemon: it serves categorized
// phrase translations over a REST API and proxies speech requests to an
// external text-to-speech engine.
//
// Usage:
//
//	phrasebook [flags]
//	phrasebook --config /path/to/phrasebook.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nadzzz/phrasebook/internal/config"
	"github.com/nadzzz/phrasebook/internal/contextual"
	"github.com/nadzzz/phrasebook/internal/health"
	"github.com/nadzzz/phrasebook/internal/phrase"
	"github.com/nadzzz/phrasebook/internal/server"
	"github.com/nadzzz/phrasebook/internal/store"
	ttsremote "github.com/nadzzz/phrasebook/internal/tts/remote"

	_ "github.com/nadzzz/phrasebook/docs"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configFile := flag.String("config", "", "path to config file (e.g. configs/phrasebook.local.yaml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("phrasebook %s\n", version)
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging.
	config.SetupLogging(cfg.Logging)
	slog.Info("phrasebook starting", "version", version)

	// Create root context with signal handling for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load the translation store. No requests are served until this
	// completes; in unified mode a broken file means the process must not
	// start at all.
	st := store.New(cfg.Data)
	if err := st.Load(); err != nil {
		slog.Error("failed to load translation data", "error", err)
		os.Exit(1)
	}

	// Optional datasets: the phrasebook runs without them.
	dataset, err := contextual.LoadDataset(cfg.Data.ContextualFile)
	if err != nil {
		logDatasetSkip("contextual phrases", err)
	}
	convs, err := contextual.LoadIndex(cfg.Data.ConversationIndex, cfg.Data.ConversationsDir)
	if err != nil {
		logDatasetSkip("conversation index", err)
	}

	// Speech engine client.
	engine := ttsremote.New(cfg.TTS)
	defer engine.Close()
	slog.Info("using tts engine", "base_url", cfg.TTS.BaseURL, "timeout", cfg.TTS.Timeout)

	// Start health check server.
	healthServer := health.New(cfg.Server.HealthPort, engine)
	go func() {
		if err := healthServer.ListenAndServe(ctx); err != nil {
			slog.Error("health server failed", "error", err)
		}
	}()

	// Start the API server.
	apiServer := server.New(cfg, st, dataset, convs, engine)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := apiServer.Listen(ctx); err != nil {
			slog.Error("api server failed", "error", err)
			cancel()
		}
	}()

	// Mark as ready once the store is loaded and the servers are up.
	healthServer.SetReady(true)
	slog.Info("phrasebook ready",
		"port", cfg.Server.Port,
		"health_port", cfg.Server.HealthPort,
		"languages", len(st.Languages()))

	// Block until shutdown signal.
	<-ctx.Done()
	slog.Info("shutdown signal received, draining...")

	if err := apiServer.Close(); err != nil {
		slog.Error("api server close error", "error", err)
	}

	wg.Wait()
	slog.Info("phrasebook stopped")
}

// logDatasetSkip downgrades a missing optional dataset to a warning; any
// other load failure (corrupt file, IO error) is fatal so the process never
// serves silently degraded data.
func logDatasetSkip(name string, err error) {
	if errors.Is(err, phrase.ErrNotFound) {
		slog.Warn("optional dataset not present", "dataset", name, "error", err)
		return
	}
	slog.Error("failed to load dataset", "dataset", name, "error", err)
	os.Exit(1)
}
