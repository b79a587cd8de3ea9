// LogForge - Synthetic business process event log generator.
// Builds random process graphs and simulates case event logs over them.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/logforge/logforge/pkg/config"
	"github.com/logforge/logforge/pkg/logging"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

// Global flags
var (
	configPath string
	logLevel   string
	verbose    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "logforge",
	Short: "LogForge - Generate synthetic business process event logs",
	Long: `LogForge generates synthetic business process event logs for process
mining: random process graphs, optional LLM-assisted activity naming, and
case simulation over a working-hours calendar.

Examples:
  logforge run --processes 5
  logforge run "Order Fulfillment" "Claims Handling" --cases 1000
  logforge run --all-names --workers 10 --formats csv,parquet
  logforge graph "Invoice Processing" --seed 42 --dot invoice.dot
  logforge watch --names-file processes.txt`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Shorthand for --log-level debug")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("logforge %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	},
}

// loadConfig resolves the effective configuration: defaults, config
// files, environment, then global flags.
func loadConfig() (*config.Config, error) {
	mgr := config.Global()
	if configPath != "" {
		if err := mgr.LoadFile(configPath); err != nil {
			return nil, err
		}
	}

	cfg := mgr.Get()
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted, cleaning up...")
		cancel()
	}()

	return ctx, cancel
}
