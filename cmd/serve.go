package cmd

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/logging"
	"github.com/Tiliavir/tick/internal/monitor"
	"github.com/Tiliavir/tick/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the attendance HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	interval, err := cfg.WatchInterval()
	if err != nil {
		fail(exitUsage, err)
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fail(exitUsage, err)
	}

	sigCtx, stop := signal.NotifyContext(ctx(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore()
	defer store.Close()

	c := classifier()
	mon := monitor.New(store, c, logger)
	stopJobs := startMonitor(sigCtx, mon, interval)
	defer stopJobs()

	accessLog := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: server.AccessLogReplaceAttr,
	}))
	router := server.NewRouter(server.NewHandler(store, c, mon, logger), server.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AccessLog:      accessLog,
		LogLevel:       level,
	})

	if err := server.Run(sigCtx, addr, router, logger); err != nil {
		logger.Error("http server failed", "error", err)
		return err
	}
	return nil
}
