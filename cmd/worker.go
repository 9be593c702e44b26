package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jeycentre/care-center-backend/internal/core/events"
	"github.com/jeycentre/care-center-backend/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers such as the auto-checkout sweeper.`,
}

// Auto-checkout sweeper command
var autoCheckoutWorkerCmd = &cobra.Command{
	Use:   "autocheckout",
	Short: "Start the auto-checkout sweeper",
	Long:  `Close attendance records whose checkout was missed, once per day at the configured hour.`,
	Run: func(cmd *cobra.Command, args []string) {
		startAutoCheckoutWorker()
	},
}

// Event Bus worker command
var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus `,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

var sweepNow bool

func startAutoCheckoutWorker() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	log := deps.Logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sweep := func() {
		closed, err := deps.AttendanceService.AutoCheckoutSweep(ctx)
		if err != nil {
			log.Error("auto-checkout sweep failed", "error", err)
			return
		}
		log.Info("auto-checkout sweep done", "closed", closed)
	}

	if sweepNow {
		sweep()
		return
	}

	sweepAt, err := time.Parse("15:04", deps.Config.Attendance.AutoCheckoutAt)
	if err != nil {
		log.Error("invalid auto_checkout_at, falling back to 23:30", "value", deps.Config.Attendance.AutoCheckoutAt)
		sweepAt, _ = time.Parse("15:04", "23:30")
	}

	log.Info("auto-checkout sweeper started", "runs_at", sweepAt.Format("15:04"))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	timer := time.NewTimer(untilNext(time.Now(), sweepAt.Hour(), sweepAt.Minute()))
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			sweep()
			timer.Reset(untilNext(time.Now(), sweepAt.Hour(), sweepAt.Minute()))
		case sig := <-sigChan:
			log.Info("received signal, shutting down sweeper", "signal", sig)
			return
		}
	}
}

// untilNext returns the duration until the next occurrence of hh:mm.
func untilNext(now time.Time, hour, minute int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

func startEventWorker() {
	_, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logger.LoggerWrapper()

	eventBus := events.NewEventBus(logger)

	eventBus.Subscribe("test.event", func(ctx context.Context, event events.Event) error {
		logger.Info("received test event",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	})

	logger.Info("event bus worker started. Waiting for events...")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	logger.Info("event bus is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	logger.Info("received signal, shutting down event bus", "signal", sig)
	logger.Info("event bus shutdown complete")
}

func init() {
	autoCheckoutWorkerCmd.Flags().BoolVar(&sweepNow, "now", false, "Run a single sweep immediately and exit")

	workerCmd.AddCommand(autoCheckoutWorkerCmd)
	workerCmd.AddCommand(eventWorkerCmd)

	rootCmd.AddCommand(workerCmd)
}
