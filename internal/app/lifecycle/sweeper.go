package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

var ErrSweeperNotConfigured = errors.New("lifecycle: sweeper needs a manager and a positive interval")

// Sweeper periodically expires overdue PENDING bookings. It is a safety net
// behind lazy expiry: both mechanisms apply the same idempotent transition,
// so their order never matters.
type Sweeper struct {
	Manager  *Manager
	Interval time.Duration
	Logger   *slog.Logger
}

func (s *Sweeper) Run(ctx context.Context) error {
	if s.Manager == nil || s.Interval <= 0 {
		return ErrSweeperNotConfigured
	}
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			expired, err := s.Manager.SweepExpired(ctx)
			if err != nil {
				if s.Logger != nil {
					s.Logger.Error("expiry sweep failed", "error", err)
				}
				continue
			}
			if expired > 0 && s.Logger != nil {
				s.Logger.Info("expiry sweep", "expired", expired)
			}
		}
	}
}
