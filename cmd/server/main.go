package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	case "import":
		cmdImport(os.Args[2:])
	case "check":
		cmdCheck(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: cercaclasse <command> [flags]

Commands:
  serve    Start the HTTP server (search API, page, MCP, metrics)
  mcp      Serve the search tool over MCP stdio
  import   Download a public dataset into the data directory
  check    Check that the import source URLs are reachable
`)
}
