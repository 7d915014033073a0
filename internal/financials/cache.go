package financials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	"github.com/avelinelabs/orderfin-backend/pkg/logger"
	"github.com/avelinelabs/orderfin-backend/pkg/metrics"
	"github.com/avelinelabs/orderfin-backend/pkg/money"
	"github.com/avelinelabs/orderfin-backend/pkg/redis"
)

// viewStore is the slice of the redis client the cache needs.
type viewStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FinancialsKey(orderID string) string
}

// CachedService caches combined financial views in redis for a short TTL.
// Only GetFinancials is cached: the single-field reads are already cheap,
// and the batch path is expected to hit many cold orders anyway.
type CachedService struct {
	inner   Service
	store   viewStore
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.FinancialsMetrics
}

// NewCachedService decorates the given service with a redis view cache.
func NewCachedService(inner Service, store viewStore, ttl time.Duration, logg *logger.Logger, m *metrics.FinancialsMetrics) (*CachedService, error) {
	if inner == nil {
		return nil, fmt.Errorf("financials service required")
	}
	if store == nil {
		return nil, fmt.Errorf("view store required")
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedService{
		inner:   inner,
		store:   store,
		ttl:     ttl,
		logg:    logg,
		metrics: m,
	}, nil
}

func (c *CachedService) GetFinancials(ctx context.Context, orderID uuid.UUID) (*OrderFinancials, error) {
	key := c.store.FinancialsKey(orderID.String())

	cached, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var view OrderFinancials
		if unmarshalErr := json.Unmarshal([]byte(cached), &view); unmarshalErr == nil {
			c.metrics.IncCacheHit()
			return &view, nil
		}
		// Corrupt entries are recomputed rather than surfaced.
	case !errors.Is(err, redis.Nil):
		if c.logg != nil {
			c.logg.Warn(c.logg.WithOrderID(ctx, orderID.String()), "financials cache read failed")
		}
	}
	c.metrics.IncCacheMiss()

	view, err := c.inner.GetFinancials(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if payload, marshalErr := json.Marshal(view); marshalErr == nil {
		if setErr := c.store.Set(ctx, key, payload, c.ttl); setErr != nil && c.logg != nil {
			c.logg.Warn(c.logg.WithOrderID(ctx, orderID.String()), "financials cache write failed")
		}
	}
	return view, nil
}

func (c *CachedService) GetFinancialsBatch(ctx context.Context, orderIDs []uuid.UUID) ([]OrderFinancials, error) {
	return c.inner.GetFinancialsBatch(ctx, orderIDs)
}

func (c *CachedService) GetPaymentStatus(ctx context.Context, orderID uuid.UUID) (enums.ChargeStatus, error) {
	return c.inner.GetPaymentStatus(ctx, orderID)
}

func (c *CachedService) GetTotalBalance(ctx context.Context, orderID uuid.UUID) (money.Money, error) {
	return c.inner.GetTotalBalance(ctx, orderID)
}

func (c *CachedService) GetRemainingGrantableRefund(ctx context.Context, orderID uuid.UUID) (money.Money, error) {
	return c.inner.GetRemainingGrantableRefund(ctx, orderID)
}
