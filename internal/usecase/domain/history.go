package domain

import (
	"context"
	"fmt"

	"task-manager/internal/entities"
	"task-manager/internal/policy"
)

// ListHistory queries the whole ledger.
func (u *Usecase) ListHistory(ctx context.Context, actor entities.Actor, filter entities.HistoryFilter) ([]entities.HistoryEntry, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageHistory(actor), actor, policy.OpManageHistory, ""); err != nil {
		return nil, err
	}
	filter.VisibleTo = nil
	filter.Page = filter.Page.WithDefault(entities.DefaultHistoryLimit)
	return u.repo.ListHistory(ctx, filter)
}

// PurgeHistory deletes entries older than days. Zero means the configured
// retention.
func (u *Usecase) PurgeHistory(ctx context.Context, actor entities.Actor, days int) (int64, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := u.check(policy.CanManageHistory(actor), actor, policy.OpManageHistory, ""); err != nil {
		return 0, err
	}
	if days < 0 {
		return 0, fmt.Errorf("%w: days must be positive", entities.ErrInvalidArgument)
	}
	if days == 0 {
		days = u.retentionDays
	}

	cutoff := entities.RetentionCutoff(u.now(), days)
	deleted, err := u.repo.PurgeHistory(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	u.metrics.HistoryPurged(deleted)
	u.log.Infow("history purged", "before", cutoff, "deleted", deleted, "admin_id", actor.ID)
	return deleted, nil
}
