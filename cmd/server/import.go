// CLAUDE:SUMMARY CLI subcommand that downloads public school datasets and builds dataset directories via import adapters.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/hazyhaar/cercaclasse/pkg/importer"
)

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	source := fs.String("source", "", "adapter ID to import (e.g. miur-anagrafe-statali)")
	all := fs.Bool("all", false, "import all sources that have a URL")
	url := fs.String("url", "", "source URL, stored for later runs (with --source)")
	outputDir := fs.String("output-dir", "", "output directory for datasets (default: data_dir from config)")
	fs.Parse(args)

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *outputDir != "" {
		cfg.DataDir = *outputDir
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	sdb, err := openSources(cfg.sourcesDBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening sources db: %v\n", err)
		os.Exit(1)
	}
	defer sdb.Close()

	if !*all && *source == "" {
		printSources(sdb)
		fmt.Println()
		fmt.Println("Usage:")
		fmt.Println("  cercaclasse import --source <id> [--url <url>] [--output-dir <dir>]")
		fmt.Println("  cercaclasse import --all [--output-dir <dir>]")
		return
	}
	if *all && *url != "" {
		fmt.Fprintln(os.Stderr, "Error: --url needs --source")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Hour)
	defer cancel()

	if *all {
		failed := 0
		for _, a := range importer.All() {
			if err := runImport(ctx, sdb, a, "", cfg.DataDir); err != nil {
				fmt.Fprintf(os.Stderr, "[%s] ERROR: %v\n", a.ID(), err)
				failed++
			}
		}
		if failed > 0 {
			os.Exit(1)
		}
		return
	}

	a, err := importer.Get(*source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Println("\nAvailable sources:")
		for _, a := range importer.All() {
			fmt.Printf("  %s\n", a.ID())
		}
		os.Exit(1)
	}
	if err := runImport(ctx, sdb, a, *url, cfg.DataDir); err != nil {
		fmt.Fprintf(os.Stderr, "[%s] ERROR: %v\n", a.ID(), err)
		os.Exit(1)
	}
}

func runImport(ctx context.Context, sdb *importer.SourceDB, a importer.Adapter, override, outputDir string) error {
	url, err := sdb.ResolveURL(a.ID(), override)
	if err != nil {
		return err
	}

	fmt.Printf("[%s] importing...\n", a.ID())
	n, err := a.Import(ctx, url, outputDir)
	if err != nil {
		return err
	}
	if err := sdb.RecordImport(a.ID(), n); err != nil {
		return err
	}
	fmt.Printf("[%s] OK, %d records -> %s/%s/\n", a.ID(), n, outputDir, a.DatasetID())
	return nil
}

func printSources(sdb *importer.SourceDB) {
	sources, err := sdb.ListSources()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Println("Available sources:")
	fmt.Println()
	for _, src := range sources {
		status := ""
		if src.LastStatus != nil {
			status = fmt.Sprintf("  [%d]", *src.LastStatus)
		}
		if src.LastRecords != nil {
			status += fmt.Sprintf("  %d records", *src.LastRecords)
		}
		if src.Changed != nil && *src.Changed {
			status += "  (changed upstream, re-import)"
		}
		if src.SourceURL == "" {
			status += "  (no URL, use --url)"
		}
		fmt.Printf("  %-25s  %s  (-> %s)%s\n", src.AdapterID, src.Description, src.DatasetID, status)
	}
}
