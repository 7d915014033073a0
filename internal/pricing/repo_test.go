package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
	"github.com/avelinelabs/orderfin-backend/pkg/enums"
)

func setupPricingTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  number INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'unfulfilled',
  origin TEXT NOT NULL DEFAULT 'checkout',
  subtotal_net_amount TEXT NOT NULL DEFAULT '0',
  subtotal_gross_amount TEXT NOT NULL DEFAULT '0',
  shipping_price_net_amount TEXT NOT NULL DEFAULT '0',
  shipping_price_gross_amount TEXT NOT NULL DEFAULT '0',
  shipping_tax_rate TEXT NOT NULL DEFAULT '0',
  total_net_amount TEXT NOT NULL DEFAULT '0',
  total_gross_amount TEXT NOT NULL DEFAULT '0',
  undiscounted_total_net_amount TEXT NOT NULL DEFAULT '0',
  undiscounted_total_gross_amount TEXT NOT NULL DEFAULT '0',
  total_charged_amount TEXT NOT NULL DEFAULT '0',
  total_balance_amount TEXT NOT NULL DEFAULT '0',
  price_expiration DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLines := `
CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  quantity_fulfilled INTEGER NOT NULL DEFAULT 0,
  currency TEXT NOT NULL,
  unit_price_net_amount TEXT NOT NULL DEFAULT '0',
  unit_price_gross_amount TEXT NOT NULL DEFAULT '0',
  undiscounted_unit_price_net_amount TEXT NOT NULL DEFAULT '0',
  undiscounted_unit_price_gross_amount TEXT NOT NULL DEFAULT '0',
  total_price_net_amount TEXT NOT NULL DEFAULT '0',
  total_price_gross_amount TEXT NOT NULL DEFAULT '0',
  tax_rate TEXT NOT NULL DEFAULT '0',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLines).Error)
	return db
}

func insertPricedOrder(t *testing.T, db *gorm.DB, expiration time.Time) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:              uuid.New(),
		Number:          1,
		Currency:        enums.CurrencyUSD,
		Status:          enums.OrderStatusUnfulfilled,
		Origin:          enums.OrderOriginCheckout,
		PriceExpiration: expiration,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestPersistSnapshotWinsOnExpiredRow(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	now := time.Now()
	order := insertPricedOrder(t, db, now.Add(-time.Minute))

	line := models.OrderLine{
		ID:          uuid.New(),
		OrderID:     order.ID,
		ProductName: "widget",
		Quantity:    2,
		Currency:    enums.CurrencyUSD,
	}
	require.NoError(t, db.Create(&line).Error)

	updated := *order
	updated.TotalGrossAmount = amount("42.30")
	updatedLine := line
	updatedLine.TotalPriceNetAmount = amount("20")
	updatedLine.TotalPriceGrossAmount = amount("24.20")
	updatedLine.TaxRate = amount("0.21")

	won, err := repo.PersistSnapshot(context.Background(), &PricedOrder{
		Order: &updated,
		Lines: []models.OrderLine{updatedLine},
	}, now, now.Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, won)

	reloaded, lines, err := repo.ReloadOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalGrossAmount.Equal(amount("42.30")))
	assert.True(t, reloaded.PriceExpiration.After(now))
	require.Len(t, lines, 1)
	assert.True(t, lines[0].TaxRate.Equal(amount("0.21")))
}

func TestPersistSnapshotLosesOnFreshRow(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	now := time.Now()
	order := insertPricedOrder(t, db, now.Add(time.Hour))

	updated := *order
	updated.TotalGrossAmount = amount("999")

	won, err := repo.PersistSnapshot(context.Background(), &PricedOrder{Order: &updated}, now, now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.False(t, won)

	reloaded, _, err := repo.ReloadOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalGrossAmount.IsZero(), "losing write must not change the row")
}

func TestListPriceExpired(t *testing.T) {
	db := setupPricingTestDB(t)
	repo := NewRepository(db)
	now := time.Now()

	stale := insertPricedOrder(t, db, now.Add(-2*time.Hour))
	staler := insertPricedOrder(t, db, now.Add(-4*time.Hour))
	insertPricedOrder(t, db, now.Add(time.Hour))

	expired, err := repo.ListPriceExpired(context.Background(), now, 10)
	require.NoError(t, err)
	require.Len(t, expired, 2)
	assert.Equal(t, staler.ID, expired[0].ID)
	assert.Equal(t, stale.ID, expired[1].ID)

	limited, err := repo.ListPriceExpired(context.Background(), now, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
