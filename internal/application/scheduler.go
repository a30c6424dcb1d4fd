package application

import (
	"context"
	"os"
	"sync"
	"time"

	"code.cloudfoundry.org/clock"
	"go.uber.org/zap"
)

type Scheduler struct {
	log       *zap.Logger
	use       *SweepUseCase
	every     time.Duration
	pauseFile string
	clock     clock.Clock

	mu   sync.RWMutex
	opts SweepOptions
}

func NewScheduler(l *zap.Logger, u *SweepUseCase, opts SweepOptions, every time.Duration, pauseFile string, clk clock.Clock) *Scheduler {
	return &Scheduler{
		log: l, use: u, opts: opts, every: every, pauseFile: pauseFile, clock: clk,
	}
}

func (s *Scheduler) UpdateOptions(opts SweepOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opts = opts
	s.log.Info("config reloaded",
		zap.String("group", opts.GroupName),
		zap.Int("max_days", opts.MaxDays),
		zap.Bool("dry_run", opts.DryRun),
	)
}

func (s *Scheduler) Options() SweepOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opts
}

// Run sweeps immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	t := s.clock.NewTicker(s.every)
	defer t.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C():
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.isPaused() {
		s.log.Debug("paused: skipping sweep")
		return
	}

	rep, err := s.use.Run(ctx, s.Options())
	if err != nil {
		s.log.Error("sweep failed", zap.Error(err))
		return
	}

	s.log.Info("sweep done",
		zap.Int("projects", len(rep.Results)),
		zap.Int("stale", rep.Stale),
		zap.Int("triggered", rep.Triggered),
		zap.Int("failed", rep.Failed),
	)
}

func (s *Scheduler) isPaused() bool {
	if s.pauseFile == "" {
		return false
	}
	_, err := os.Stat(s.pauseFile)
	return err == nil
}
