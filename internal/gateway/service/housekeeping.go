package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/threeds/internal/gateway/store"
)

// DefaultWebhookRetention is how long webhook audit records are kept.
const DefaultWebhookRetention = 30 * 24 * time.Hour

// HousekeepingService periodically expires abandoned challenges and prunes
// old webhook audit records.
type HousekeepingService struct {
	Store    store.Store
	Checkout *CheckoutService
	Logger   *slog.Logger
	Interval time.Duration

	// WebhookRetention of 0 uses DefaultWebhookRetention.
	WebhookRetention time.Duration
	Now              func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(st store.Store, checkout *CheckoutService, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}

	return &HousekeepingService{
		Store:    st,
		Checkout: checkout,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop() to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each step is independent; a failure in one does not
// stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := nowFunc(s.Now)
	var successful int

	// Expire abandoned challenges
	if expired, err := s.Checkout.ExpireSessions(ctx, now, 100); err != nil {
		s.Logger.Error("failed to expire auth sessions", "error", err)
	} else {
		s.Logger.Debug("expired auth sessions", "count", expired)
		successful++
	}

	// Prune webhook audit records
	retention := s.WebhookRetention
	if retention <= 0 {
		retention = DefaultWebhookRetention
	}
	if deleted, err := s.Store.WebhookEvents().DeleteWebhookEventsBefore(ctx, now.Add(-retention)); err != nil {
		s.Logger.Error("failed to prune webhook events", "error", err)
	} else {
		s.Logger.Debug("pruned webhook events", "count", deleted)
		successful++
	}

	s.Logger.Info("housekeeping cleanup completed", "successful_cleanups", successful)
}
