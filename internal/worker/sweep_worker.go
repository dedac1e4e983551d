// Package worker hosts the time-triggered tasks of the service.
package worker

import (
	"context"
	"time"

	"ridesync/internal/service"

	"github.com/rs/zerolog"
)

// SweepRunner is implemented by service.Sweeper.
type SweepRunner interface {
	Run(ctx context.Context) (*service.SweepSummary, error)
}

// SweepWorker runs the expired-booking sweep on a fixed cadence.
type SweepWorker struct {
	sweeper    SweepRunner
	interval   time.Duration
	runTimeout time.Duration
	location   *time.Location
	logger     *zerolog.Logger
}

func NewSweepWorker(sweeper SweepRunner, interval time.Duration, location *time.Location, logger *zerolog.Logger) *SweepWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	if location == nil {
		location = time.UTC
	}
	return &SweepWorker{
		sweeper:    sweeper,
		interval:   interval,
		runTimeout: 5 * time.Minute,
		location:   location,
		logger:     logger,
	}
}

// Start launches the loop; stops when ctx is done.
func (w *SweepWorker) Start(ctx context.Context) {
	w.logger.Info().Dur("interval", w.interval).Str("timezone", w.location.String()).Msg("Sweep worker started")
	defer w.logger.Info().Msg("Sweep worker stopped")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

func (w *SweepWorker) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, w.runTimeout)
	defer cancel()

	summary, err := w.sweeper.Run(runCtx)
	if err != nil {
		w.logger.Error().Err(err).Msg("Sweep run failed")
		return
	}

	w.logger.Info().
		Int("cleaned_count", summary.CleanedCount).
		Strs("booking_ids", summary.BookingIDs).
		Time("local_time", summary.Timestamp.In(w.location)).
		Msg("Sweep run finished")
}
