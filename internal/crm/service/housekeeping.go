package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/litecrm/internal/crm/store"
	"github.com/aussiebroadwan/litecrm/pkg/slogx"
)

const (
	// defaultSweepInterval is how often the background sweep runs.
	defaultSweepInterval = 15 * time.Minute

	// resetRetention keeps reset tokens around well past their validity
	// window so a late "token expired" response is still accurate.
	resetRetention = 24 * time.Hour

	// inviteRetention keeps consumed invites for a month for audit trails.
	inviteRetention = 30 * 24 * time.Hour
)

// HousekeepingService periodically removes rows nothing will read again:
// password reset tokens past their retention window and invites consumed
// long ago. Pending invites are never touched.
type HousekeepingService struct {
	Store    store.Store
	Interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// Start launches the background sweep loop. One sweep runs immediately so a
// restart doesn't defer cleanup by a full interval.
func (s *HousekeepingService) Start(ctx context.Context) {
	if s.Interval <= 0 {
		s.Interval = defaultSweepInterval
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)
}

// Stop signals the loop and waits for the in-flight sweep to finish.
func (s *HousekeepingService) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

func (s *HousekeepingService) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one cleanup pass. Errors are logged, never fatal; the next tick
// tries again.
func (s *HousekeepingService) sweep(ctx context.Context) {
	log := slogx.FromContext(ctx)
	now := time.Now().UTC()

	if err := s.Store.PasswordResets().DeletePasswordResetsBefore(ctx, now.Add(-resetRetention)); err != nil {
		log.Error("failed to sweep password resets", slog.Any("error", err))
	}

	if err := s.Store.Invites().DeleteConsumedInvitesBefore(ctx, now.Add(-inviteRetention)); err != nil {
		log.Error("failed to sweep consumed invites", slog.Any("error", err))
	}

	log.Debug("housekeeping sweep complete")
}
