package financials

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a financials repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// orderRepository also satisfies OrderReader over the same connection.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderReader builds an order reader bound to the provided DB.
func NewOrderReader(db *gorm.DB) OrderReader {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindOrdersByIDs(ctx context.Context, orderIDs []uuid.UUID) ([]models.Order, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("id IN ?", orderIDs).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) LinesByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderLine, error) {
	grouped := emptyGroups[models.OrderLine](orderIDs)
	if len(orderIDs) == 0 {
		return grouped, nil
	}
	var lines []models.OrderLine
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	for i := range lines {
		grouped[lines[i].OrderID] = append(grouped[lines[i].OrderID], lines[i])
	}
	return grouped, nil
}

func (r *repository) TransactionsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.TransactionItem, error) {
	grouped := emptyGroups[models.TransactionItem](orderIDs)
	if len(orderIDs) == 0 {
		return grouped, nil
	}
	var transactions []models.TransactionItem
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("created_at ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}
	for i := range transactions {
		grouped[transactions[i].OrderID] = append(grouped[transactions[i].OrderID], transactions[i])
	}
	return grouped, nil
}

func (r *repository) PaymentsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.Payment, error) {
	grouped := emptyGroups[models.Payment](orderIDs)
	if len(orderIDs) == 0 {
		return grouped, nil
	}
	var payments []models.Payment
	err := r.db.WithContext(ctx).
		Preload("Transactions").
		Where("order_id IN ?", orderIDs).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	for i := range payments {
		grouped[payments[i].OrderID] = append(grouped[payments[i].OrderID], payments[i])
	}
	return grouped, nil
}

func (r *repository) FulfillmentsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.Fulfillment, error) {
	grouped := emptyGroups[models.Fulfillment](orderIDs)
	if len(orderIDs) == 0 {
		return grouped, nil
	}
	var fulfillments []models.Fulfillment
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("fulfillment_order ASC, created_at ASC").
		Find(&fulfillments).Error
	if err != nil {
		return nil, err
	}
	for i := range fulfillments {
		grouped[fulfillments[i].OrderID] = append(grouped[fulfillments[i].OrderID], fulfillments[i])
	}
	return grouped, nil
}

func (r *repository) GrantedRefundsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderGrantedRefund, error) {
	grouped := emptyGroups[models.OrderGrantedRefund](orderIDs)
	if len(orderIDs) == 0 {
		return grouped, nil
	}
	var grants []models.OrderGrantedRefund
	err := r.db.WithContext(ctx).
		Where("order_id IN ?", orderIDs).
		Order("created_at ASC").
		Find(&grants).Error
	if err != nil {
		return nil, err
	}
	for i := range grants {
		grouped[grants[i].OrderID] = append(grouped[grants[i].OrderID], grants[i])
	}
	return grouped, nil
}

// emptyGroups seeds the result map so every requested key is present even
// when the order has no matching records.
func emptyGroups[T any](orderIDs []uuid.UUID) map[uuid.UUID][]T {
	grouped := make(map[uuid.UUID][]T, len(orderIDs))
	for _, id := range orderIDs {
		grouped[id] = []T{}
	}
	return grouped
}
