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

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/flashgest/internal/aggregate"
	"github.com/dgallion1/flashgest/internal/api"
	"github.com/dgallion1/flashgest/internal/config"
	"github.com/dgallion1/flashgest/internal/generate"
	"github.com/dgallion1/flashgest/internal/pipeline"
	"github.com/dgallion1/flashgest/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	if err := run(log); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize clients.
	records, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer records.Close()

	gen, stats, closeGen, err := buildGenerator(cfg, log)
	if err != nil {
		return err
	}
	defer closeGen()

	// Initialize pipeline.
	prep := pipeline.Preparer{Chunking: cfg.Chunking(), PDFFallback: cfg.PDFFallbackPdftotext}
	worker := pipeline.NewWorker(prep, gen, cfg.Quotas(), records, log)
	orch := pipeline.NewOrchestrator(cfg, worker, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, records, stats, generate.NameOf(gen), log, cfg)
	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting flashgest", "port", cfg.Port, "generator", generate.NameOf(gen), "store", cfg.Store)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	// Graceful shutdown.
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		orch.Stop()
		return err
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		return pg, nil
	default:
		s, err := store.OpenFile(cfg.RecordsFile)
		if err != nil {
			return nil, err
		}
		log.Info("file record store ready", "path", cfg.RecordsFile)
		return s, nil
	}
}

// buildGenerator wires the configured model behind latency tracking, the
// retry policy and a rule-based fallback.
func buildGenerator(cfg config.Config, log *slog.Logger) (aggregate.Generator, *generate.Stats, func(), error) {
	closeGen := func() {}
	var primary aggregate.Generator
	switch cfg.Generator {
	case config.GeneratorOllama:
		o, err := generate.NewOllama(cfg.OllamaHost, cfg.OllamaModel)
		if err != nil {
			return nil, nil, nil, err
		}
		primary = o
	case config.GeneratorClaude:
		c := generate.NewClaude(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		primary, closeGen = c, c.Close
	case config.GeneratorRemote:
		primary = generate.NewRemote(cfg.MLServiceURL, cfg.GenerateTimeout)
	case config.GeneratorRules:
		primary = generate.Rules{}
	default:
		return nil, nil, nil, fmt.Errorf("unknown generator %q", cfg.Generator)
	}

	stats := generate.NewStats(time.Hour)
	observed := &generate.Observed{Generator: primary, Stats: stats}
	if cfg.Generator == config.GeneratorRules {
		return observed, stats, closeGen, nil
	}

	retrying := &pipeline.Retrying{
		Generator: observed,
		Policy: pipeline.RetryPolicy{
			MaxAttempts: cfg.RetryMaxAttempts,
			BaseDelay:   cfg.RetryBaseDelay,
			Multiplier:  cfg.RetryMultiplier,
			Timeout:     cfg.GenerateTimeout,
			Jitter:      true,
		},
		Log: log,
	}
	gen := &generate.Fallback{Primary: retrying, Secondary: generate.Rules{}, Log: log}
	return gen, stats, closeGen, nil
}
