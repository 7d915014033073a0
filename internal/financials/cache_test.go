package financials

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	"github.com/avelinelabs/orderfin-backend/pkg/money"
	"github.com/avelinelabs/orderfin-backend/pkg/redis"
)

type stubViewStore struct {
	values map[string]string
	sets   int
}

func (s *stubViewStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *stubViewStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.values == nil {
		s.values = map[string]string{}
	}
	switch v := value.(type) {
	case []byte:
		s.values[key] = string(v)
	case string:
		s.values[key] = v
	}
	s.sets++
	return nil
}

func (s *stubViewStore) FinancialsKey(orderID string) string {
	return "test:financials:" + orderID
}

type countingService struct {
	Service
	calls int
	view  *OrderFinancials
}

func (c *countingService) GetFinancials(ctx context.Context, orderID uuid.UUID) (*OrderFinancials, error) {
	c.calls++
	return c.view, nil
}

func TestCachedServiceMissThenHit(t *testing.T) {
	orderID := uuid.New()
	view := &OrderFinancials{
		OrderID:       orderID,
		Number:        7,
		Currency:      enums.CurrencyUSD,
		PaymentStatus: enums.ChargeStatusFullyCharged,
		TotalBalance:  money.FromFloat(0, enums.CurrencyUSD),
	}
	inner := &countingService{view: view}
	store := &stubViewStore{}

	cached, err := NewCachedService(inner, store, time.Minute, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := cached.GetFinancials(context.Background(), orderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OrderID != orderID {
		t.Fatalf("unexpected view: %+v", got)
	}
	if inner.calls != 1 || store.sets != 1 {
		t.Fatalf("expected one derivation and one cache write, got %d/%d", inner.calls, store.sets)
	}

	got, err = cached.GetFinancials(context.Background(), orderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected cache hit to skip derivation, got %d calls", inner.calls)
	}
	if got.PaymentStatus != enums.ChargeStatusFullyCharged || got.Number != 7 {
		t.Fatalf("cached view lost fields: %+v", got)
	}
}

func TestCachedServiceRecomputesCorruptEntry(t *testing.T) {
	orderID := uuid.New()
	inner := &countingService{view: &OrderFinancials{OrderID: orderID}}
	store := &stubViewStore{values: map[string]string{
		"test:financials:" + orderID.String(): "{not json",
	}}

	cached, err := NewCachedService(inner, store, time.Minute, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := cached.GetFinancials(context.Background(), orderID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OrderID != orderID || inner.calls != 1 {
		t.Fatalf("expected recomputed view, got %+v after %d calls", got, inner.calls)
	}
}

func TestCachedServiceStoresCanonicalJSON(t *testing.T) {
	orderID := uuid.New()
	inner := &countingService{view: &OrderFinancials{
		OrderID:      orderID,
		Currency:     enums.CurrencyUSD,
		TotalCharged: money.FromFloat(12.34, enums.CurrencyUSD),
	}}
	store := &stubViewStore{}

	cached, err := NewCachedService(inner, store, time.Minute, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cached.GetFinancials(context.Background(), orderID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw := store.values[store.FinancialsKey(orderID.String())]
	var decoded OrderFinancials
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("stored payload is not valid JSON: %v", err)
	}
	if !decoded.TotalCharged.Equal(money.FromFloat(12.34, enums.CurrencyUSD)) {
		t.Fatalf("round trip lost money value: %s", decoded.TotalCharged)
	}
}
