package cron

import (
	"context"
	"fmt"

	"github.com/basho-studio/storefront/pkg/logger"
)

type snapshotPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// CartPurgeJob deletes cart snapshots whose session TTL has lapsed. Expired
// rows already read as empty carts, so this only reclaims storage.
type CartPurgeJob struct {
	repo snapshotPurger
	logg *logger.Logger
}

func NewCartPurgeJob(repo snapshotPurger, logg *logger.Logger) (*CartPurgeJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("snapshot repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &CartPurgeJob{repo: repo, logg: logg}, nil
}

func (j *CartPurgeJob) Name() string { return "cart_snapshot_purge" }

func (j *CartPurgeJob) Run(ctx context.Context) error {
	removed, err := j.repo.PurgeExpired(ctx)
	if err != nil {
		return fmt.Errorf("purge expired cart snapshots: %w", err)
	}
	if removed > 0 {
		j.logg.Info(j.logg.WithField(ctx, "removed", removed), "cart.snapshots.purged")
	}
	return nil
}
