package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/avelinelabs/orderfin-backend/pkg/logger"
)

// priceRefresher is the slice of the pricing service this job needs.
type priceRefresher interface {
	RefreshExpired(ctx context.Context, before time.Time, limit int) (int, error)
}

// PriceRefreshJobParams configure the snapshot refresh job.
type PriceRefreshJobParams struct {
	Logger    *logger.Logger
	Pricing   priceRefresher
	BatchSize int
}

// NewPriceRefreshJob builds the cron job that reprices orders whose money
// snapshot expired, so read paths rarely pay for a recompute.
func NewPriceRefreshJob(params PriceRefreshJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pricing == nil {
		return nil, fmt.Errorf("pricing service required")
	}
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = 200
	}
	return &priceRefreshJob{
		logg:      params.Logger,
		pricing:   params.Pricing,
		batchSize: batchSize,
		now:       time.Now,
	}, nil
}

type priceRefreshJob struct {
	logg      *logger.Logger
	pricing   priceRefresher
	batchSize int
	now       func() time.Time
}

func (j *priceRefreshJob) Name() string { return "price-refresh" }

func (j *priceRefreshJob) Run(ctx context.Context) error {
	refreshed, err := j.pricing.RefreshExpired(ctx, j.now().UTC(), j.batchSize)
	if err != nil {
		return fmt.Errorf("refresh expired snapshots: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": refreshed})
	j.logg.Info(logCtx, "price refresh loop complete")
	return nil
}
