package financials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	pkgerrors "github.com/avelinelabs/orderfin-backend/pkg/errors"
	"github.com/avelinelabs/orderfin-backend/pkg/metrics"
	"github.com/avelinelabs/orderfin-backend/pkg/money"
)

// PriceRefresher recomputes an order's price snapshot when it has expired.
type PriceRefresher interface {
	EnsureFreshPrices(ctx context.Context, order *models.Order, lines []models.OrderLine) (*models.Order, []models.OrderLine, error)
}

// Service exposes the derived financial views of orders.
type Service interface {
	GetFinancials(ctx context.Context, orderID uuid.UUID) (*OrderFinancials, error)
	GetFinancialsBatch(ctx context.Context, orderIDs []uuid.UUID) ([]OrderFinancials, error)
	GetPaymentStatus(ctx context.Context, orderID uuid.UUID) (enums.ChargeStatus, error)
	GetTotalBalance(ctx context.Context, orderID uuid.UUID) (money.Money, error)
	GetRemainingGrantableRefund(ctx context.Context, orderID uuid.UUID) (money.Money, error)
}

// OrderFinancials is the combined monetary view of a single order.
type OrderFinancials struct {
	OrderID  uuid.UUID         `json:"order_id"`
	Number   int64             `json:"number"`
	Currency enums.Currency    `json:"currency"`
	Status   enums.OrderStatus `json:"status"`
	Origin   enums.OrderOrigin `json:"origin"`

	Subtotal          money.TaxedMoney `json:"subtotal"`
	ShippingPrice     money.TaxedMoney `json:"shipping_price"`
	ShippingTaxRate   decimal.Decimal  `json:"shipping_tax_rate"`
	Total             money.TaxedMoney `json:"total"`
	UndiscountedTotal money.TaxedMoney `json:"undiscounted_total"`

	PaymentStatus            enums.ChargeStatus `json:"payment_status"`
	IsPaid                   bool               `json:"is_paid"`
	TotalCharged             money.Money        `json:"total_charged"`
	TotalBalance             money.Money        `json:"total_balance"`
	RemainingGrantableRefund money.Money        `json:"remaining_grantable_refund"`
}

type service struct {
	orders  OrderReader
	loader  *Loader
	pricing PriceRefresher
	metrics *metrics.FinancialsMetrics
}

// NewService wires a financials service with the required collaborators.
func NewService(orders OrderReader, loader *Loader, pricing PriceRefresher, m *metrics.FinancialsMetrics) (Service, error) {
	if orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if loader == nil {
		return nil, fmt.Errorf("snapshot loader required")
	}
	if pricing == nil {
		return nil, fmt.Errorf("price refresher required")
	}
	return &service{
		orders:  orders,
		loader:  loader,
		pricing: pricing,
		metrics: m,
	}, nil
}

func (s *service) GetFinancials(ctx context.Context, orderID uuid.UUID) (*OrderFinancials, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveDerivation("financials", time.Since(start))
	}()

	order, snap, err := s.loadOne(ctx, orderID)
	if err != nil {
		return nil, err
	}
	view, err := s.buildView(ctx, order, snap)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *service) GetFinancialsBatch(ctx context.Context, orderIDs []uuid.UUID) ([]OrderFinancials, error) {
	if len(orderIDs) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one order id required")
	}
	start := time.Now()
	defer func() {
		s.metrics.ObserveDerivation("financials_batch", time.Since(start))
	}()
	s.metrics.ObserveBatchSize(len(orderIDs))

	orders, err := s.orders.FindOrdersByIDs(ctx, orderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load orders")
	}
	byID := make(map[uuid.UUID]*models.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}
	for _, id := range orderIDs {
		if _, ok := byID[id]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeStaleData, fmt.Sprintf("order %s not found", id)).
				WithDetails(map[string]any{"order_id": id.String()})
		}
	}

	snapshots, err := s.loader.Load(ctx, orderIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order sub-entities")
	}

	views := make([]OrderFinancials, 0, len(orderIDs))
	for _, id := range orderIDs {
		view, err := s.buildView(ctx, byID[id], snapshots[id])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

func (s *service) GetPaymentStatus(ctx context.Context, orderID uuid.UUID) (enums.ChargeStatus, error) {
	order, snap, err := s.loadOne(ctx, orderID)
	if err != nil {
		return "", err
	}
	order, err = s.refreshPrices(ctx, order, snap)
	if err != nil {
		return "", err
	}
	return PaymentStatus(order, snap)
}

func (s *service) GetTotalBalance(ctx context.Context, orderID uuid.UUID) (money.Money, error) {
	order, snap, err := s.loadOne(ctx, orderID)
	if err != nil {
		return money.Money{}, err
	}
	order, err = s.refreshPrices(ctx, order, snap)
	if err != nil {
		return money.Money{}, err
	}
	return TotalBalance(order, snap)
}

func (s *service) GetRemainingGrantableRefund(ctx context.Context, orderID uuid.UUID) (money.Money, error) {
	order, snap, err := s.loadOne(ctx, orderID)
	if err != nil {
		return money.Money{}, err
	}
	order, err = s.refreshPrices(ctx, order, snap)
	if err != nil {
		return money.Money{}, err
	}
	return RemainingGrantableRefund(order, snap)
}

func (s *service) loadOne(ctx context.Context, orderID uuid.UUID) (*models.Order, *Snapshot, error) {
	if orderID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.orders.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	snapshots, err := s.loader.Load(ctx, []uuid.UUID{orderID})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order sub-entities")
	}
	return order, snapshots[orderID], nil
}

// refreshPrices guarantees the monetary snapshot is fresh before any
// derived field reads it.
func (s *service) refreshPrices(ctx context.Context, order *models.Order, snap *Snapshot) (*models.Order, error) {
	refreshed, lines, err := s.pricing.EnsureFreshPrices(ctx, order, snap.Lines)
	if err != nil {
		return nil, err
	}
	snap.Lines = lines
	return refreshed, nil
}

func (s *service) buildView(ctx context.Context, order *models.Order, snap *Snapshot) (*OrderFinancials, error) {
	order, err := s.refreshPrices(ctx, order, snap)
	if err != nil {
		return nil, err
	}

	status, err := PaymentStatus(order, snap)
	if err != nil {
		return nil, err
	}
	balance, err := TotalBalance(order, snap)
	if err != nil {
		return nil, err
	}
	remaining, err := RemainingGrantableRefund(order, snap)
	if err != nil {
		return nil, err
	}
	paid, err := IsPaid(order, snap)
	if err != nil {
		return nil, err
	}

	return &OrderFinancials{
		OrderID:  order.ID,
		Number:   order.Number,
		Currency: order.Currency,
		Status:   order.Status,
		Origin:   order.Origin,

		Subtotal:          order.Subtotal().Quantize(),
		ShippingPrice:     order.ShippingPrice().Quantize(),
		ShippingTaxRate:   order.ShippingTaxRate,
		Total:             order.Total().Quantize(),
		UndiscountedTotal: order.UndiscountedTotal().Quantize(),

		PaymentStatus:            status,
		IsPaid:                   paid,
		TotalCharged:             order.TotalCharged().Quantize(),
		TotalBalance:             balance.Quantize(),
		RemainingGrantableRefund: remaining.Quantize(),
	}, nil
}
