package financials

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
)

// Snapshot is the request-scoped bundle of everything a derivation needs
// for one order. Each sub-entity list is fetched at most once and the
// collections are treated as immutable for the duration of the request.
type Snapshot struct {
	Lines          []models.OrderLine
	Transactions   []models.TransactionItem
	Payments       []models.Payment
	Fulfillments   []models.Fulfillment
	GrantedRefunds []models.OrderGrantedRefund
}

// paymentSource identifies which payment model backs an order. The branch
// between legacy payments and modern transactions is resolved here once,
// not re-checked inside every derivation.
type paymentSource int

const (
	sourceNone paymentSource = iota
	sourceLegacyPayment
	sourceTransactions
)

// source prefers transactions over legacy payments: an order migrating
// between models can hold both, and transaction data wins once present.
func (s *Snapshot) source() paymentSource {
	if len(s.Transactions) > 0 {
		return sourceTransactions
	}
	if len(s.Payments) > 0 {
		return sourceLegacyPayment
	}
	return sourceNone
}

// lastPayment returns the most recently created payment, or nil.
func (s *Snapshot) lastPayment() *models.Payment {
	var last *models.Payment
	for i := range s.Payments {
		candidate := &s.Payments[i]
		if last == nil || candidate.CreatedAt.After(last.CreatedAt) {
			last = candidate
		}
	}
	return last
}

// hasActivePayment reports whether any legacy payment is still active.
func (s *Snapshot) hasActivePayment() bool {
	for i := range s.Payments {
		if s.Payments[i].IsActive {
			return true
		}
	}
	return false
}

// Loader fans out the five sub-entity fetches for a set of orders and
// combines them once all complete. The fetches have no ordering dependency
// between each other; only the combine step waits for all of them.
type Loader struct {
	repo Repository
}

// NewLoader builds a snapshot loader over the given repository.
func NewLoader(repo Repository) (*Loader, error) {
	if repo == nil {
		return nil, fmt.Errorf("financials repository required")
	}
	return &Loader{repo: repo}, nil
}

// Load fetches snapshots for the given orders. The result contains an
// entry for every requested id, including orders with no sub-records.
func (l *Loader) Load(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]*Snapshot, error) {
	snapshots := make(map[uuid.UUID]*Snapshot, len(orderIDs))
	for _, id := range orderIDs {
		snapshots[id] = &Snapshot{}
	}
	if len(orderIDs) == 0 {
		return snapshots, nil
	}

	var (
		lines          map[uuid.UUID][]models.OrderLine
		transactions   map[uuid.UUID][]models.TransactionItem
		payments       map[uuid.UUID][]models.Payment
		fulfillments   map[uuid.UUID][]models.Fulfillment
		grantedRefunds map[uuid.UUID][]models.OrderGrantedRefund
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lines, err = l.repo.LinesByOrderIDs(gctx, orderIDs)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = l.repo.TransactionsByOrderIDs(gctx, orderIDs)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = l.repo.PaymentsByOrderIDs(gctx, orderIDs)
		return err
	})
	g.Go(func() error {
		var err error
		fulfillments, err = l.repo.FulfillmentsByOrderIDs(gctx, orderIDs)
		return err
	})
	g.Go(func() error {
		var err error
		grantedRefunds, err = l.repo.GrantedRefundsByOrderIDs(gctx, orderIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, id := range orderIDs {
		snap := snapshots[id]
		snap.Lines = lines[id]
		snap.Transactions = transactions[id]
		snap.Payments = payments[id]
		snap.Fulfillments = fulfillments[id]
		snap.GrantedRefunds = grantedRefunds[id]
	}
	return snapshots, nil
}
