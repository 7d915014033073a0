package financials

import (
	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	"github.com/avelinelabs/orderfin-backend/pkg/money"
)

// RemainingGrantableRefund computes how much refund can still be granted
// against an order. The granted total is capped at the order's gross total,
// and the result never goes below the currency zero: negative intermediate
// balances are corrected by clamping, not surfaced as errors.
func RemainingGrantableRefund(order *models.Order, snap *Snapshot) (money.Money, error) {
	totalGranted, err := sumGrantedRefunds(order.Currency, snap.GrantedRefunds)
	if err != nil {
		return money.Money{}, err
	}
	if totalGranted, err = money.Min(totalGranted, order.TotalGross()); err != nil {
		return money.Money{}, err
	}

	if last := snap.lastPayment(); last != nil && last.IsActive {
		return legacyRemainingGrant(order.Currency, totalGranted, last)
	}
	return transactionRemainingGrant(order, totalGranted, snap.Transactions)
}

// legacyRemainingGrant subtracts the payment's processed refund
// transactions from the granted total.
func legacyRemainingGrant(currency enums.Currency, totalGranted money.Money, payment *models.Payment) (money.Money, error) {
	refunded := money.Zero(currency)
	var err error
	for i := range payment.Transactions {
		tx := &payment.Transactions[i]
		if tx.Kind != enums.TransactionKindRefund {
			continue
		}
		if refunded, err = refunded.Add(tx.AmountMoney()); err != nil {
			return money.Money{}, err
		}
	}
	remaining, err := totalGranted.Sub(refunded)
	if err != nil {
		return money.Money{}, err
	}
	return money.Max(remaining, money.Zero(currency))
}

// transactionRemainingGrant estimates how much of the refunded money was
// already attributable to a prior grant, as opposed to an overpayment
// correction, and subtracts that from the granted total. The processed
// amount excludes cancel buckets since canceled money was never charged.
func transactionRemainingGrant(order *models.Order, totalGranted money.Money, transactions []models.TransactionItem) (money.Money, error) {
	zero := money.Zero(order.Currency)

	processed := zero
	refunded := zero
	var err error
	for i := range transactions {
		tx := &transactions[i]
		for _, bucket := range []money.Money{
			tx.AmountCharged(),
			tx.AmountAuthorized(),
			tx.AmountRefunded(),
			tx.AmountChargePending(),
			tx.AmountAuthorizePending(),
			tx.AmountRefundPending(),
		} {
			if processed, err = processed.Add(bucket); err != nil {
				return money.Money{}, err
			}
		}
		if refunded, err = refunded.Add(tx.AmountRefunded()); err != nil {
			return money.Money{}, err
		}
		if refunded, err = refunded.Add(tx.AmountRefundPending()); err != nil {
			return money.Money{}, err
		}
	}

	overpayment, err := processed.Sub(order.TotalGross())
	if err != nil {
		return money.Money{}, err
	}
	alreadyGranted, err := refunded.Sub(overpayment)
	if err != nil {
		return money.Money{}, err
	}
	if alreadyGranted, err = money.Max(alreadyGranted, zero); err != nil {
		return money.Money{}, err
	}

	remaining, err := totalGranted.Sub(alreadyGranted)
	if err != nil {
		return money.Money{}, err
	}
	return money.Max(remaining, zero)
}
