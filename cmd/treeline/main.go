// Treeline: hierarchical task manager MCP server
//
// Work items live in a strict 4-level tree (project → stage → task →
// subtask), persisted as materialized paths in SQLite and exposed to any
// MCP-capable AI tool as a set of task tools.
//
// Usage:
//
//	treeline serve    # Start MCP server (stdio transport)
//	treeline update   # Update to the latest version
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	treeserver "github.com/HendryAvila/treeline/internal/server"
	"github.com/HendryAvila/treeline/internal/updater"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("treeline v%s\n", treeserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	opts := treeserver.Options{
		DataDir:               os.Getenv("TREELINE_DATA_DIR"),
		AllowCrossProjectMove: os.Getenv("TREELINE_ALLOW_CROSS_PROJECT_MOVE") == "1",
	}

	s, cleanup, err := treeserver.New(opts)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	return server.ServeStdio(s)
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Network failures are silently
// ignored.
func checkForUpdates() {
	result := updater.CheckVersion(treeserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  Update available: v%s → v%s\n"+
				"  Run: treeline update\n"+
				"  Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "Checking for updates...\n")

	result := updater.CheckVersion(treeserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)

	if err := updater.SelfUpdate(treeserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n  You can download manually from:\n  %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Updated to v%s! Restart treeline to use the new version.\n", result.LatestVersion)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Treeline v%s — hierarchical task manager MCP server

Usage:
  treeline serve    Start the MCP server (stdio transport)
  treeline update   Update to the latest version

Environment:
  TREELINE_DATA_DIR                  Override the database location (default ~/.treeline)
  TREELINE_ALLOW_CROSS_PROJECT_MOVE  Set to 1 to allow moves between projects

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "treeline": {
        "command": "treeline",
        "args": ["serve"]
      }
    }
  }
`, treeserver.Version)
}
