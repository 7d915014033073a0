package financials

import (
	"context"

	"github.com/google/uuid"

	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
)

// OrderReader loads order rows for the aggregation engine.
type OrderReader interface {
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindOrdersByIDs(ctx context.Context, orderIDs []uuid.UUID) ([]models.Order, error)
}

// Repository exposes the batched sub-entity fetches the derivations need.
// Every method returns a map containing an entry for each requested order
// id, with an empty slice when the order has no such records. Results
// within a key preserve creation order.
type Repository interface {
	LinesByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderLine, error)
	TransactionsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.TransactionItem, error)
	PaymentsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.Payment, error)
	FulfillmentsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.Fulfillment, error)
	GrantedRefundsByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderGrantedRefund, error)
}
