// CLAUDE:SUMMARY serve subcommand: wires store, engine, router and chassis, plus the optional source checker.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hazyhaar/cercaclasse/pkg/api"
	"github.com/hazyhaar/cercaclasse/pkg/catalog"
	"github.com/hazyhaar/cercaclasse/pkg/chassis"
	"github.com/hazyhaar/cercaclasse/pkg/importer"
	"github.com/hazyhaar/cercaclasse/pkg/search"
)

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	addr := fs.String("addr", "", "listen address (overrides config)")
	dataDir := fs.String("data-dir", "", "data directory (overrides config)")
	dataset := fs.String("dataset", "", "dataset directory name under data-dir (overrides config)")
	logLevel := fs.String("log-level", "", "debug, info, warn or error (overrides config)")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *dataset != "" {
		cfg.Dataset = *dataset
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger := newLogger(cfg.LogLevel)

	// The dataset is parsed on the first query, not here.
	engine, err := newEngine(cfg, logger)
	if err != nil {
		logger.Error("engine", "error", err)
		os.Exit(1)
	}

	srv, err := chassis.New(chassis.Config{
		Addr:       cfg.Addr,
		Handler:    api.NewRouter(engine, logger),
		CertFile:   cfg.TLS.CertFile,
		KeyFile:    cfg.TLS.KeyFile,
		SelfSigned: cfg.TLS.SelfSigned,
		HTTP3:      cfg.TLS.HTTP3,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("chassis", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})

	if cfg.CheckInterval > 0 {
		sdb, err := openSources(cfg.sourcesDBPath())
		if err != nil {
			logger.Error("sources db", "error", err)
			os.Exit(1)
		}
		defer sdb.Close()

		checker := importer.NewChecker(sdb, logger, cfg.CheckInterval)
		g.Go(func() error {
			checker.Start(gctx)
			return nil
		})
	}

	logger.Info("cercaclasse listening", "addr", cfg.Addr, "dataset", cfg.datasetDir())

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

func newEngine(cfg config, logger *slog.Logger) (*search.Engine, error) {
	store := catalog.NewStore(catalog.DirLoader(cfg.datasetDir()))
	return search.NewEngine(store, search.Options{
		CacheSize: cfg.CacheSize,
		Logger:    logger,
	})
}

// openSources opens the source registry, creating its directory, and seeds
// it with the built-in adapters.
func openSources(path string) (*importer.SourceDB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("sources db dir: %w", err)
	}
	sdb, err := importer.OpenSourceDB(path)
	if err != nil {
		return nil, err
	}
	if err := sdb.Seed(importer.All()); err != nil {
		sdb.Close()
		return nil, err
	}
	return sdb, nil
}
