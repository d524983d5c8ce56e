// Command chainguard runs the MCP tool-dispatch server that enforces
// scope, validation, and completion gates on an autonomous coding agent.
//
// Usage:
//
//	chainguard serve    # Start the MCP server (stdio transport)
//	chainguard update   # Self-update to the latest release
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	chainguardserver "github.com/kodestack/chainguard/internal/server"
	"github.com/kodestack/chainguard/internal/updater"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chainguard",
		Short: "Enforcement MCP server for autonomous coding agents",
		Long: `chainguard is a long-running coordination service that governs how an
autonomous coding agent interacts with a developer's workstation: scope
declaration, file tracking, validation, and a completion gate, served over
MCP's stdio transport.`,
	}

	cmd.AddCommand(serveCmd(), updateCmd(), versionCmd())
	return cmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := chainguardserver.New()
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			defer cleanup()

			// Background version check — prints to stderr so it doesn't
			// interfere with MCP's stdio transport on stdout.
			go checkForUpdates()

			return server.ServeStdio(s)
		},
	}
}

func updateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Self-update to the latest release",
		Run: func(cmd *cobra.Command, args []string) {
			runUpdate()
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the running version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("chainguard v%s\n", chainguardserver.Version)
		},
	}
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Best-effort: network failures are
// silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(chainguardserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Run: chainguard update\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "🔍 Checking for updates...\n")

	result := updater.CheckVersion(chainguardserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "⬇️  Downloading...\n")

	if err := updater.SelfUpdate(chainguardserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n   You can download manually from:\n   %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "   Restart chainguard to use the new version.\n")
}
