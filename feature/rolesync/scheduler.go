package rolesync

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper runs a full sweep over every guild.
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// Connectivity reports whether the chat gateway is usable.
type Connectivity interface {
	Connected() bool
}

// Scheduler runs periodic sweeps.
type Scheduler struct {
	sweeper  Sweeper
	conn     Connectivity
	delay    time.Duration
	interval time.Duration
	logger   *zap.Logger
}

// NewScheduler creates a scheduler that sweeps after delay and then every interval.
func NewScheduler(sweeper Sweeper, conn Connectivity, delay, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		sweeper:  sweeper,
		conn:     conn,
		delay:    delay,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks until ctx is done. Ticks that arrive while the gateway is
// disconnected are skipped; a running sweep delays the next tick.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Sweep scheduler started",
		zap.Duration("delay", s.delay),
		zap.Duration("interval", s.interval),
	)

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	s.tick(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Sweep scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if s.conn != nil && !s.conn.Connected() {
		s.logger.Warn("Skipping scheduled sweep, gateway disconnected")
		return
	}
	if err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Warn("Scheduled sweep finished with errors", zap.Error(err))
	}
}
