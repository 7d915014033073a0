package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
)

// Repository persists price snapshots and answers expiration queries.
type Repository interface {
	// PersistSnapshot writes the recomputed snapshot with a compare-and-set
	// on price_expiration. It returns false when another writer refreshed
	// the order first; in that case nothing was written.
	PersistSnapshot(ctx context.Context, priced *PricedOrder, now, expiresAt time.Time) (bool, error)
	// ReloadOrder fetches the current snapshot and lines of an order.
	ReloadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, []models.OrderLine, error)
	// ListPriceExpired returns orders whose snapshot expired before the
	// given instant, oldest expiration first.
	ListPriceExpired(ctx context.Context, before time.Time, limit int) ([]models.Order, error)
	// LinesByOrderID fetches the lines of a single order.
	LinesByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a pricing repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) PersistSnapshot(ctx context.Context, priced *PricedOrder, now, expiresAt time.Time) (bool, error) {
	won := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order := priced.Order
		result := tx.Model(&models.Order{}).
			Where("id = ? AND price_expiration <= ?", order.ID, now).
			Updates(map[string]any{
				"subtotal_net_amount":             order.SubtotalNetAmount,
				"subtotal_gross_amount":           order.SubtotalGrossAmount,
				"shipping_price_net_amount":       order.ShippingPriceNetAmount,
				"shipping_price_gross_amount":     order.ShippingPriceGrossAmount,
				"shipping_tax_rate":               order.ShippingTaxRate,
				"total_net_amount":                order.TotalNetAmount,
				"total_gross_amount":              order.TotalGrossAmount,
				"undiscounted_total_net_amount":   order.UndiscountedTotalNet,
				"undiscounted_total_gross_amount": order.UndiscountedTotalGross,
				"price_expiration":                expiresAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		won = true

		for i := range priced.Lines {
			line := &priced.Lines[i]
			err := tx.Model(&models.OrderLine{}).
				Where("id = ?", line.ID).
				Updates(map[string]any{
					"total_price_net_amount":   line.TotalPriceNetAmount,
					"total_price_gross_amount": line.TotalPriceGrossAmount,
					"tax_rate":                 line.TaxRate,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

func (r *repository) ReloadOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, []models.OrderLine, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, nil, err
	}
	lines, err := r.LinesByOrderID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return &order, lines, nil
}

func (r *repository) ListPriceExpired(ctx context.Context, before time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.WithContext(ctx).
		Where("price_expiration <= ?", before).
		Order("price_expiration ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) LinesByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error) {
	var lines []models.OrderLine
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}
