package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/attendance"
	"github.com/Tiliavir/tick/internal/config"
	"github.com/Tiliavir/tick/internal/logging"
	"github.com/Tiliavir/tick/internal/storage"
)

// Exit codes.
const (
	exitUsage   = 1
	exitStorage = 2
)

var homeFlag string

// Loaded by the root command before any subcommand runs.
var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tick",
	Short: "tick – attendance punches, anomaly findings and payroll templates",
	Long: `tick records clock-in, clock-out and break punches, pairs them into
work intervals and flags anomalies (missing clock-outs, overly long shifts,
repeated clock-ins, late arrivals, early departures) for review.
By default all data is stored as human-readable JSON files in ~/.tick/.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&homeFlag, "home", "", "Data directory (default $TICK_HOME or ~/.tick)")

	rootCmd.AddCommand(clockCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(alertsCmd)
	rootCmd.AddCommand(ackCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(kioskCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if homeFlag != "" {
		cfg, err = config.LoadFrom(homeFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	logger, err = logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// openStore opens the configured store, exiting with the storage exit code on
// failure.
func openStore() storage.Store {
	store, err := storage.Open(cfg.Storage.Driver, cfg.Home, cfg.Storage.Path)
	if err != nil {
		fail(exitStorage, err)
	}
	return store
}

func classifier() attendance.Classifier {
	c, err := cfg.Classifier()
	if err != nil {
		fail(exitUsage, err)
	}
	return c
}

// fail prints err and exits. Rejected punches are usage errors; anything
// else coming out of the store is a storage error.
func fail(code int, err error) {
	if errors.Is(err, storage.ErrInvalidPunch) {
		code = exitUsage
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(code)
}

// ctx is the context used by one-shot commands.
func ctx(cmd *cobra.Command) context.Context {
	if c := cmd.Context(); c != nil {
		return c
	}
	return context.Background()
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
