package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/cercaclasse/pkg/api"
)

// cmdMCP serves the search tool on stdin/stdout. Logs go to stderr so they
// never mix with the protocol stream.
func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	dataDir := fs.String("data-dir", "", "data directory (overrides config)")
	dataset := fs.String("dataset", "", "dataset directory name under data-dir (overrides config)")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *dataset != "" {
		cfg.Dataset = *dataset
	}
	logger := newLogger(cfg.LogLevel)

	engine, err := newEngine(cfg, logger)
	if err != nil {
		logger.Error("engine", "error", err)
		os.Exit(1)
	}

	if err := server.ServeStdio(api.NewMCPServer(engine, logger)); err != nil {
		logger.Error("mcp stdio", "error", err)
		os.Exit(1)
	}
}
