package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hazyhaar/cercaclasse/pkg/importer"
)

// cmdCheck runs one availability pass over the source URLs and prints the
// stored status of every source.
func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)

	sdb, err := openSources(cfg.sourcesDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sources db: %v\n", err)
		os.Exit(1)
	}
	defer sdb.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The interval is unused: CheckAll is a single pass.
	importer.NewChecker(sdb, logger, 0).CheckAll(ctx)
	printSources(sdb)
}
