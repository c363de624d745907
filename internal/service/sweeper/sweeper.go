package sweeper

import (
	"context"
	"time"

	"github.com/fastandfab/sellerservice/internal/logger"
)

const defaultInterval = time.Hour

type purger interface {
	// Delete expired records and return how many were deleted
	PurgeExpired(ctx context.Context) (int64, error)
}

type Config struct {
	// Time between purges. One hour if not set
	Interval time.Duration

	Logger logger.Logger
}

// Periodically deletes expired refresh tokens
type Sweeper struct {
	interval time.Duration
	logger   logger.Logger
	purger   purger
}

func New(cfg Config, p purger) *Sweeper {
	if cfg.Interval == 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNoOpLogger()
	}

	return &Sweeper{
		interval: cfg.Interval,
		logger:   cfg.Logger,
		purger:   p,
	}
}

// Purge on every tick until context is cancelled
// Returned channel is closed when the sweeper stops
func (s *Sweeper) Run(ctx context.Context) <-chan struct{} {
	idleStopped := make(chan struct{})
	s.logger.Debug("Starting sweeper", "interval", s.interval)

	go func() {
		defer close(idleStopped)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Debug("Sweeper stopped by context")
				return

			case <-ticker.C:
				deleted, err := s.purger.PurgeExpired(ctx)
				if err != nil {
					s.logger.Error("Failed to purge expired refresh tokens", "error", err)
					continue
				}
				if deleted > 0 {
					s.logger.Info("Expired refresh tokens purged", "count", deleted)
				}
			}
		}
	}()

	return idleStopped
}
