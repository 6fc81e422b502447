package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/drawpoint/authd/internal/auth/store"
)

// HousekeepingService deletes token rows that are both expired and revoked
// on a fixed interval. Rows that are merely expired stay in place so
// introspection keeps answering for them until revocation catches up.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService builds a housekeeping worker. An interval of zero
// or less falls back to hourly.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the background worker. Non-blocking; call Stop to shut it
// down. The first sweep runs immediately so restarts do not postpone
// cleanup by a full interval.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the worker and blocks until any in-progress sweep
// finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	if err := s.Store.Tokens().DeleteExpiredRevokedTokens(ctx); err != nil {
		s.Logger.Error("failed to delete expired revoked tokens", "error", err)
		return
	}

	s.Logger.Debug("housekeeping sweep completed")
}
