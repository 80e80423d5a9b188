package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/lacedup/footwork/internal/model"
)

// Runner is one full aggregation pass over every configured source.
type Runner interface {
	Run(ctx context.Context) (model.RunStats, error)
}

// Scheduler owns the daemon loop: ticks on an interval and executes one
// aggregation run per tick.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger
}

func New(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
	}
}

// Run starts the loop. It executes one immediate run, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful
// shutdown). A failed run is logged and the loop keeps going; only
// cancellation stops it.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler", "interval", s.interval.String())

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	stats, err := s.runner.Run(ctx)
	if err != nil {
		s.logger.Error("aggregation run failed", "error", err)
		return
	}

	s.logger.Info("aggregation run complete",
		"checked", stats.Checked,
		"new", stats.New,
		"sources_ok", stats.SourcesOK,
		"sources_failed", stats.SourcesFailed,
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
}
