package jobs

import (
	"context"
	"time"

	"notesboard/cmd/internal/utils"

	"github.com/labstack/gommon/log"
)

const pendingSweepPeriod = time.Hour

type StaleUserRepository interface {
	DeleteStaleUnverified(ctx context.Context, before int64) (int64, error)
}

// PendingUserCleaner frees usernames and emails held by accounts that never verified.
// An account is removed once its code has been expired for longer than 'grace'.
type PendingUserCleaner struct {
	repo   StaleUserRepository
	grace  time.Duration
	period time.Duration
}

func NewPendingUserCleaner(repo StaleUserRepository, grace time.Duration) *PendingUserCleaner {
	return &PendingUserCleaner{repo: repo, grace: grace, period: pendingSweepPeriod}
}

func (p *PendingUserCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(p.period)
	defer ticker.Stop()

	log.Infof("Pending user cleaner started (grace: %s)", p.grace)

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping pending user cleaner...")
			return
		case <-ticker.C:
			p.sweep(ctx)
		}
	}
}

func (p *PendingUserCleaner) sweep(ctx context.Context) {
	before := utils.NowUTC() - p.grace.Milliseconds()
	removed, err := p.repo.DeleteStaleUnverified(ctx, before)
	if err != nil {
		log.Errorf("PendingUserCleaner: failed to remove stale accounts: %v", err)
		return
	}

	if removed > 0 {
		log.Infof("PendingUserCleaner: removed %d unverified accounts", removed)
	}
}
