package pricing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
	pkgerrors "github.com/avelinelabs/orderfin-backend/pkg/errors"
	"github.com/avelinelabs/orderfin-backend/pkg/logger"
	"github.com/avelinelabs/orderfin-backend/pkg/metrics"
)

// Service keeps order money snapshots fresh. Snapshots are valid until
// their price_expiration; reads inside the window reuse the cache and
// recomputation happens at most once per window per order.
type Service interface {
	EnsureFreshPrices(ctx context.Context, order *models.Order, lines []models.OrderLine) (*models.Order, []models.OrderLine, error)
	RefreshExpired(ctx context.Context, before time.Time, limit int) (int, error)
}

type service struct {
	repo       Repository
	calculator Calculator
	ttl        time.Duration
	logg       *logger.Logger
	metrics    *metrics.FinancialsMetrics
	now        func() time.Time
}

// ServiceParams collects the pricing service dependencies.
type ServiceParams struct {
	Repo       Repository
	Calculator Calculator
	TTL        time.Duration
	Logger     *logger.Logger
	Metrics    *metrics.FinancialsMetrics
}

// NewService wires a pricing service with the required collaborators.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("pricing repository required")
	}
	if params.Calculator == nil {
		return nil, fmt.Errorf("calculator required")
	}
	if params.TTL <= 0 {
		params.TTL = time.Hour
	}
	return &service{
		repo:       params.Repo,
		calculator: params.Calculator,
		ttl:        params.TTL,
		logg:       params.Logger,
		metrics:    params.Metrics,
		now:        time.Now,
	}, nil
}

func (s *service) EnsureFreshPrices(ctx context.Context, order *models.Order, lines []models.OrderLine) (*models.Order, []models.OrderLine, error) {
	if order == nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	now := s.now()
	if !order.PricesExpired(now) {
		s.metrics.IncPriceRefresh("cached")
		return order, lines, nil
	}

	priced, err := s.calculator.Calculate(ctx, order, lines)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recompute order prices")
	}
	quantizeSnapshot(priced)

	won, err := s.repo.PersistSnapshot(ctx, priced, now, now.Add(s.ttl))
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist price snapshot")
	}
	if won {
		s.metrics.IncPriceRefresh("refreshed")
		priced.Order.PriceExpiration = now.Add(s.ttl)
		return priced.Order, priced.Lines, nil
	}

	// Another writer refreshed the snapshot first; its version is the one
	// readers must agree on.
	s.metrics.IncPriceRefresh("lost_race")
	reloaded, reloadedLines, err := s.repo.ReloadOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload refreshed snapshot")
	}
	return reloaded, reloadedLines, nil
}

func (s *service) RefreshExpired(ctx context.Context, before time.Time, limit int) (int, error) {
	expired, err := s.repo.ListPriceExpired(ctx, before, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired snapshots")
	}

	refreshed := 0
	var errs []error
	for i := range expired {
		order := &expired[i]
		lines, err := s.repo.LinesByOrderID(ctx, order.ID)
		if err != nil {
			errs = append(errs, fmt.Errorf("order %s: load lines: %w", order.ID, err))
			continue
		}
		if _, _, err := s.EnsureFreshPrices(ctx, order, lines); err != nil {
			if s.logg != nil {
				s.logg.Error(s.logg.WithOrderID(ctx, order.ID.String()), "price refresh failed", err)
			}
			errs = append(errs, fmt.Errorf("order %s: %w", order.ID, err))
			continue
		}
		refreshed++
	}
	return refreshed, multierr.Combine(errs...)
}

// quantizeSnapshot rounds every persisted amount half-up to the currency's
// minor units; tax rates keep 4 decimal places.
func quantizeSnapshot(priced *PricedOrder) {
	order := priced.Order
	units := order.Currency.MinorUnits()

	order.SubtotalNetAmount = order.SubtotalNetAmount.Round(units)
	order.SubtotalGrossAmount = order.SubtotalGrossAmount.Round(units)
	order.ShippingPriceNetAmount = order.ShippingPriceNetAmount.Round(units)
	order.ShippingPriceGrossAmount = order.ShippingPriceGrossAmount.Round(units)
	order.TotalNetAmount = order.TotalNetAmount.Round(units)
	order.TotalGrossAmount = order.TotalGrossAmount.Round(units)
	order.UndiscountedTotalNet = order.UndiscountedTotalNet.Round(units)
	order.UndiscountedTotalGross = order.UndiscountedTotalGross.Round(units)
	order.ShippingTaxRate = order.ShippingTaxRate.Round(4)

	for i := range priced.Lines {
		line := &priced.Lines[i]
		line.UnitPriceNetAmount = line.UnitPriceNetAmount.Round(units)
		line.UnitPriceGrossAmount = line.UnitPriceGrossAmount.Round(units)
		line.TotalPriceNetAmount = line.TotalPriceNetAmount.Round(units)
		line.TotalPriceGrossAmount = line.TotalPriceGrossAmount.Round(units)
		line.TaxRate = line.TaxRate.Round(4)
	}
}
