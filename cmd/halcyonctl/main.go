package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/halcyon-audio/halcyon/internal/config"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

var (
	flagConfig   string
	flagURL      string
	flagLogLevel string
)

// cfg is the effective configuration, resolved in setup before any
// subcommand runs.
var cfg *config.Config

// logLevel backs the process-wide slog handler so a config hot-reload can
// change verbosity without rebuilding the logger.
var logLevel = new(slog.LevelVar)

func main() {
	rootCmd := &cobra.Command{
		Use:   "halcyonctl",
		Short: "Inspect and follow the state of a Halcyon player daemon",
		Long: `halcyonctl connects to a Halcyon player daemon over WebSocket and
mirrors its state locally: read a store's current value, force an
authoritative refresh, or follow the synchronization stream live.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "daemon WebSocket URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug | info | warn | error (overrides config)")

	rootCmd.AddCommand(
		getCmd(),
		watchCmd(),
		refreshCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// setup resolves config (file, then flag overrides) and installs the
// process-wide slog handler.
func setup(cmd *cobra.Command, args []string) error {
	if flagConfig != "" {
		c, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = c
	} else {
		cfg = config.Default()
	}

	if flagURL != "" {
		cfg.Player.URL = flagURL
	}
	if cfg.Player.URL == "" {
		return errors.New("no daemon URL: pass --url or set player.url in the config file")
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	logLevel.Set(cfg.Log.SlogLevel())
	opts := &slog.HandlerOptions{Level: logLevel}
	var h slog.Handler
	if cfg.Log.Format == "json" {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("halcyonctl %s (%s)\n", version, commit)
		},
	}
}
