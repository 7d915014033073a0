package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
	"github.com/avelinelabs/orderfin-backend/pkg/enums"
)

func amount(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

type stubPricingRepo struct {
	persistWon   bool
	persistCalls int
	persisted    *PricedOrder

	reloaded      *models.Order
	reloadedLines []models.OrderLine

	expired []models.Order
	lines   map[uuid.UUID][]models.OrderLine
}

func (s *stubPricingRepo) PersistSnapshot(ctx context.Context, priced *PricedOrder, now, expiresAt time.Time) (bool, error) {
	s.persistCalls++
	s.persisted = priced
	return s.persistWon, nil
}

func (s *stubPricingRepo) ReloadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, []models.OrderLine, error) {
	return s.reloaded, s.reloadedLines, nil
}

func (s *stubPricingRepo) ListPriceExpired(ctx context.Context, before time.Time, limit int) ([]models.Order, error) {
	return s.expired, nil
}

func (s *stubPricingRepo) LinesByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	return s.lines[orderID], nil
}

func testOrder(expiration time.Time) *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		Currency:        enums.CurrencyUSD,
		PriceExpiration: expiration,
	}
}

func TestEnsureFreshPricesInsideWindowIsIdempotent(t *testing.T) {
	repo := &stubPricingRepo{}
	svc, err := NewService(ServiceParams{Repo: repo, Calculator: NewLineSumCalculator(), TTL: time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := testOrder(time.Now().Add(30 * time.Minute))
	order.TotalGrossAmount = amount("55")

	got, _, err := svc.EnsureFreshPrices(context.Background(), order, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.persistCalls != 0 {
		t.Fatal("fresh snapshot must not trigger a recompute")
	}
	if !got.TotalGrossAmount.Equal(amount("55")) {
		t.Fatalf("expected cached snapshot untouched, got %s", got.TotalGrossAmount)
	}
}

func TestEnsureFreshPricesRecomputesExpiredSnapshot(t *testing.T) {
	repo := &stubPricingRepo{persistWon: true}
	svc, err := NewService(ServiceParams{Repo: repo, Calculator: NewLineSumCalculator(), TTL: time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := testOrder(time.Now().Add(-time.Minute))
	order.ShippingPriceNetAmount = amount("5")
	order.ShippingPriceGrossAmount = amount("6")
	lines := []models.OrderLine{
		{
			ID:                   uuid.New(),
			OrderID:              order.ID,
			Quantity:             3,
			Currency:             enums.CurrencyUSD,
			UnitPriceNetAmount:   amount("10"),
			UnitPriceGrossAmount: amount("12.10"),
		},
	}

	refreshed, refreshedLines, err := svc.EnsureFreshPrices(context.Background(), order, lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.persistCalls != 1 {
		t.Fatalf("expected one persist, got %d", repo.persistCalls)
	}
	if !refreshed.SubtotalNetAmount.Equal(amount("30")) {
		t.Fatalf("expected subtotal net 30, got %s", refreshed.SubtotalNetAmount)
	}
	if !refreshed.TotalGrossAmount.Equal(amount("42.30")) {
		t.Fatalf("expected total gross 42.30, got %s", refreshed.TotalGrossAmount)
	}
	if !refreshed.PriceExpiration.After(time.Now()) {
		t.Fatal("expected expiration extended into the future")
	}
	if len(refreshedLines) != 1 || !refreshedLines[0].TaxRate.Equal(amount("0.21")) {
		t.Fatalf("expected line tax rate 0.21, got %+v", refreshedLines)
	}
}

func TestEnsureFreshPricesQuantizesAmounts(t *testing.T) {
	repo := &stubPricingRepo{persistWon: true}
	svc, err := NewService(ServiceParams{Repo: repo, Calculator: NewLineSumCalculator(), TTL: time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := testOrder(time.Now().Add(-time.Minute))
	lines := []models.OrderLine{
		{
			ID:                   uuid.New(),
			OrderID:              order.ID,
			Quantity:             1,
			Currency:             enums.CurrencyUSD,
			UnitPriceNetAmount:   amount("10.005"),
			UnitPriceGrossAmount: amount("10.005"),
		},
	}

	refreshed, _, err := svc.EnsureFreshPrices(context.Background(), order, lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !refreshed.SubtotalNetAmount.Equal(amount("10.01")) {
		t.Fatalf("expected half-up rounding to 10.01, got %s", refreshed.SubtotalNetAmount)
	}
}

func TestEnsureFreshPricesLosingWriterReloads(t *testing.T) {
	winner := testOrder(time.Now().Add(time.Hour))
	winner.TotalGrossAmount = amount("99")
	repo := &stubPricingRepo{persistWon: false, reloaded: winner}
	svc, err := NewService(ServiceParams{Repo: repo, Calculator: NewLineSumCalculator(), TTL: time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	order := testOrder(time.Now().Add(-time.Minute))
	got, _, err := svc.EnsureFreshPrices(context.Background(), order, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.TotalGrossAmount.Equal(amount("99")) {
		t.Fatalf("expected the winner's snapshot, got %s", got.TotalGrossAmount)
	}
}

func TestRefreshExpiredCountsSuccesses(t *testing.T) {
	first := testOrder(time.Now().Add(-time.Hour))
	second := testOrder(time.Now().Add(-time.Minute))
	repo := &stubPricingRepo{
		persistWon: true,
		expired:    []models.Order{*first, *second},
		lines:      map[uuid.UUID][]models.OrderLine{},
	}
	svc, err := NewService(ServiceParams{Repo: repo, Calculator: NewLineSumCalculator(), TTL: time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	refreshed, err := svc.RefreshExpired(context.Background(), time.Now(), 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refreshed != 2 {
		t.Fatalf("expected 2 refreshed orders, got %d", refreshed)
	}
	if repo.persistCalls != 2 {
		t.Fatalf("expected 2 persists, got %d", repo.persistCalls)
	}
}
