package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/tick/internal/cron"
	"github.com/Tiliavir/tick/internal/monitor"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-evaluate today's punches periodically and log new findings",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	interval, err := cfg.WatchInterval()
	if err != nil {
		fail(exitUsage, err)
	}

	sigCtx, stop := signal.NotifyContext(ctx(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStore()
	defer store.Close()

	mon := monitor.New(store, classifier(), logger)
	stopJobs := startMonitor(sigCtx, mon, interval)
	defer stopJobs()

	fmt.Fprintf(out(cmd), "Watching for findings every %s (Ctrl+C to stop)\n", interval)
	<-sigCtx.Done()
	return nil
}

// startMonitor schedules the monitor's refresh job and returns a function
// that stops it.
func startMonitor(c context.Context, mon *monitor.Monitor, interval time.Duration) func() {
	s := cron.NewScheduler(logger)
	mon.RegisterJobs(s, interval)
	s.Start(c)
	logger.Info("monitor started", "interval", interval.String())
	return s.Stop
}
