package financials

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

func setupFinancialsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
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
);`,
		`CREATE TABLE IF NOT EXISTS order_lines (
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
);`,
		`CREATE TABLE IF NOT EXISTS transaction_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  psp_reference TEXT NOT NULL DEFAULT '',
  currency TEXT NOT NULL,
  authorized_amount TEXT NOT NULL DEFAULT '0',
  charged_amount TEXT NOT NULL DEFAULT '0',
  refunded_amount TEXT NOT NULL DEFAULT '0',
  canceled_amount TEXT NOT NULL DEFAULT '0',
  authorize_pending_amount TEXT NOT NULL DEFAULT '0',
  charge_pending_amount TEXT NOT NULL DEFAULT '0',
  refund_pending_amount TEXT NOT NULL DEFAULT '0',
  cancel_pending_amount TEXT NOT NULL DEFAULT '0',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  gateway TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  charge_status TEXT NOT NULL DEFAULT 'not_charged',
  currency TEXT NOT NULL,
  total_amount TEXT NOT NULL DEFAULT '0',
  captured_amount TEXT NOT NULL DEFAULT '0',
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS payment_transactions (
  id TEXT PRIMARY KEY,
  payment_id TEXT NOT NULL,
  kind TEXT NOT NULL,
  is_success INTEGER NOT NULL DEFAULT 0,
  currency TEXT NOT NULL,
  amount TEXT NOT NULL DEFAULT '0',
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS fulfillments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  fulfillment_order INTEGER NOT NULL DEFAULT 1,
  status TEXT NOT NULL DEFAULT 'fulfilled',
  tracking_number TEXT NOT NULL DEFAULT '',
  shipping_refund_amount TEXT,
  total_refund_amount TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS order_granted_refunds (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  amount TEXT NOT NULL DEFAULT '0',
  currency TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  transaction_item_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func insertTestOrder(t *testing.T, db *gorm.DB, number int64) *models.Order {
	t.Helper()
	order := &models.Order{
		ID:              uuid.New(),
		Number:          number,
		Currency:        enums.CurrencyUSD,
		Status:          enums.OrderStatusUnfulfilled,
		Origin:          enums.OrderOriginCheckout,
		PriceExpiration: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestOrderReaderFindOrder(t *testing.T) {
	db := setupFinancialsTestDB(t)
	reader := NewOrderReader(db)
	order := insertTestOrder(t, db, 1001)

	found, err := reader.FindOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Equal(t, int64(1001), found.Number)

	_, err = reader.FindOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderReaderFindOrdersByIDs(t *testing.T) {
	db := setupFinancialsTestDB(t)
	reader := NewOrderReader(db)
	first := insertTestOrder(t, db, 2001)
	second := insertTestOrder(t, db, 2002)

	found, err := reader.FindOrdersByIDs(context.Background(), []uuid.UUID{first.ID, second.ID, uuid.New()})
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestRepositoryGroupsSeedAllKeys(t *testing.T) {
	db := setupFinancialsTestDB(t)
	repo := NewRepository(db)
	order := insertTestOrder(t, db, 3001)
	emptyOrder := insertTestOrder(t, db, 3002)

	line := models.OrderLine{
		ID:          uuid.New(),
		OrderID:     order.ID,
		ProductName: "sample",
		Quantity:    3,
		Currency:    enums.CurrencyUSD,
	}
	require.NoError(t, db.Create(&line).Error)

	grouped, err := repo.LinesByOrderIDs(context.Background(), []uuid.UUID{order.ID, emptyOrder.ID})
	require.NoError(t, err)
	require.Len(t, grouped, 2)
	assert.Len(t, grouped[order.ID], 1)
	require.NotNil(t, grouped[emptyOrder.ID])
	assert.Empty(t, grouped[emptyOrder.ID])
}

func TestRepositoryPaymentsPreloadTransactions(t *testing.T) {
	db := setupFinancialsTestDB(t)
	repo := NewRepository(db)
	order := insertTestOrder(t, db, 4001)

	payment := models.Payment{
		ID:           uuid.New(),
		OrderID:      order.ID,
		IsActive:     true,
		ChargeStatus: enums.ChargeStatusFullyCharged,
		Currency:     enums.CurrencyUSD,
	}
	require.NoError(t, db.Create(&payment).Error)
	tx := models.PaymentTransaction{
		ID:        uuid.New(),
		PaymentID: payment.ID,
		Kind:      enums.TransactionKindRefund,
		IsSuccess: true,
		Currency:  enums.CurrencyUSD,
		Amount:    amount("12.50"),
	}
	require.NoError(t, db.Create(&tx).Error)

	grouped, err := repo.PaymentsByOrderIDs(context.Background(), []uuid.UUID{order.ID})
	require.NoError(t, err)
	require.Len(t, grouped[order.ID], 1)
	require.Len(t, grouped[order.ID][0].Transactions, 1)
	assert.Equal(t, enums.TransactionKindRefund, grouped[order.ID][0].Transactions[0].Kind)
}

func TestRepositoryFulfillmentsOrdering(t *testing.T) {
	db := setupFinancialsTestDB(t)
	repo := NewRepository(db)
	order := insertTestOrder(t, db, 5001)

	second := models.Fulfillment{
		ID:               uuid.New(),
		OrderID:          order.ID,
		FulfillmentOrder: 2,
		Status:           enums.FulfillmentStatusFulfilled,
	}
	first := models.Fulfillment{
		ID:                uuid.New(),
		OrderID:           order.ID,
		FulfillmentOrder:  1,
		Status:            enums.FulfillmentStatusRefunded,
		TotalRefundAmount: refundAmount("5"),
	}
	require.NoError(t, db.Create(&second).Error)
	require.NoError(t, db.Create(&first).Error)

	grouped, err := repo.FulfillmentsByOrderIDs(context.Background(), []uuid.UUID{order.ID})
	require.NoError(t, err)
	require.Len(t, grouped[order.ID], 2)
	assert.Equal(t, 1, grouped[order.ID][0].FulfillmentOrder)
	assert.Equal(t, 2, grouped[order.ID][1].FulfillmentOrder)
}

func TestRepositoryEmptyInput(t *testing.T) {
	db := setupFinancialsTestDB(t)
	repo := NewRepository(db)

	grouped, err := repo.GrantedRefundsByOrderIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, grouped)
}
