package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rmacdonaldsmith/diamondcut-go/internal/artifacts"
)

var (
	// Global flags
	artifactsDir string
	logLevel     string

	// Shared instances, set up before each command runs
	logger *slog.Logger
	store  *artifacts.Store
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "diamondcut",
		Short: "Plan and encode diamond upgrades",
		Long: `diamondcut computes the facet cuts that move a diamond's deployed
selector routing to the routing described by a set of compiled facets.
It reads compiler artifacts and a loupe snapshot, and writes the ABI-encoded
diamondCut arguments for submission by other tooling.`,
		PersistentPreRunE: initialize,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&artifactsDir, "artifacts", artifacts.DefaultDir, "Compiler artifacts directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newBuildCommand())
	rootCmd.AddCommand(newPlanCommand())
	rootCmd.AddCommand(newFormatCommand())
	rootCmd.AddCommand(newSelectorsCommand())

	return rootCmd
}

// initialize sets up logging and the artifact store from the global flags
func initialize(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	store = artifacts.NewStore(artifactsDir)
	return nil
}

// writeOutput writes data to path, or to the command output when path is empty
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Info("Wrote output", "path", path, "bytes", len(data))
	return nil
}
