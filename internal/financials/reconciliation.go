package financials

import (
	"github.com/shopspring/decimal"

	"github.com/avelinelabs/orderfin-backend/pkg/db/models"
	"github.com/avelinelabs/orderfin-backend/pkg/enums"
	"github.com/avelinelabs/orderfin-backend/pkg/money"
)

// PaymentStatus derives the charge status of an order from its refund,
// transaction and payment history. Rules are evaluated in priority order:
//
//  1. Fulfillment refunds that sum exactly to the gross total mark the
//     order fully refunded, regardless of transaction state.
//  2. Orders with modern transactions derive the status from the charged
//     aggregate against the total reduced by granted refunds.
//  3. Legacy orders pass through the last payment's own status; with no
//     payment at all, a zero-total order counts as fully charged.
func PaymentStatus(order *models.Order, snap *Snapshot) (enums.ChargeStatus, error) {
	totalFulfillmentRefund := decimal.Zero
	for i := range snap.Fulfillments {
		if amount := snap.Fulfillments[i].TotalRefundAmount; amount != nil {
			totalFulfillmentRefund = totalFulfillmentRefund.Add(*amount)
		}
	}
	if !totalFulfillmentRefund.IsZero() && totalFulfillmentRefund.Equal(order.TotalGrossAmount) {
		return enums.ChargeStatusFullyRefunded, nil
	}

	switch snap.source() {
	case sourceTransactions:
		return transactionPaymentStatus(order, snap.GrantedRefunds)
	case sourceLegacyPayment:
		last := snap.lastPayment()
		return last.ChargeStatus, nil
	default:
		if order.TotalGrossAmount.IsZero() {
			return enums.ChargeStatusFullyCharged, nil
		}
		return enums.ChargeStatusNotCharged, nil
	}
}

// transactionPaymentStatus compares the charged aggregate against the
// order total reduced by all granted refunds.
func transactionPaymentStatus(order *models.Order, grants []models.OrderGrantedRefund) (enums.ChargeStatus, error) {
	zero := money.Zero(order.Currency)

	totalGranted, err := sumGrantedRefunds(order.Currency, grants)
	if err != nil {
		return "", err
	}

	currentTotal, err := order.TotalGross().Sub(totalGranted)
	if err != nil {
		return "", err
	}
	currentTotal = currentTotal.Quantize()

	charged := order.TotalCharged()
	chargedVsZero, err := charged.Cmp(zero)
	if err != nil {
		return "", err
	}
	chargedVsTotal, err := charged.Cmp(currentTotal)
	if err != nil {
		return "", err
	}
	totalVsZero, err := currentTotal.Cmp(zero)
	if err != nil {
		return "", err
	}

	switch {
	case chargedVsZero == 0 && totalVsZero <= 0:
		return enums.ChargeStatusFullyCharged, nil
	case chargedVsTotal >= 0:
		return enums.ChargeStatusFullyCharged, nil
	case chargedVsZero > 0:
		return enums.ChargeStatusPartiallyCharged, nil
	default:
		return enums.ChargeStatusNotCharged, nil
	}
}

// TotalBalance measures money owed or overpaid after accounting for
// promised refunds. Orders with an active legacy payment keep their stored
// balance; transaction orders derive it from charged plus pending-charge
// amounts minus the grant-reduced total.
func TotalBalance(order *models.Order, snap *Snapshot) (money.Money, error) {
	if snap.hasActivePayment() {
		return order.StoredBalance(), nil
	}

	totalGranted, err := sumGrantedRefunds(order.Currency, snap.GrantedRefunds)
	if err != nil {
		return money.Money{}, err
	}

	totalCharged := money.Zero(order.Currency)
	for i := range snap.Transactions {
		tx := &snap.Transactions[i]
		if totalCharged, err = totalCharged.Add(tx.AmountCharged()); err != nil {
			return money.Money{}, err
		}
		if totalCharged, err = totalCharged.Add(tx.AmountChargePending()); err != nil {
			return money.Money{}, err
		}
	}

	grantsDifference, err := order.TotalGross().Sub(totalGranted)
	if err != nil {
		return money.Money{}, err
	}
	return totalCharged.Sub(grantsDifference)
}

// IsPaid reports whether the settled charges cover the gross total. Legacy
// orders fall back to the captured amounts of their active payments.
func IsPaid(order *models.Order, snap *Snapshot) (bool, error) {
	if len(snap.Transactions) > 0 {
		charged := money.Zero(order.Currency)
		var err error
		for i := range snap.Transactions {
			if charged, err = charged.Add(snap.Transactions[i].AmountCharged()); err != nil {
				return false, err
			}
		}
		cmp, err := charged.Cmp(order.TotalGross())
		if err != nil {
			return false, err
		}
		return cmp >= 0, nil
	}
	return legacyFullyPaid(order, snap.Payments)
}

func legacyFullyPaid(order *models.Order, payments []models.Payment) (bool, error) {
	captured := money.Zero(order.Currency)
	var err error
	for i := range payments {
		if !payments[i].IsActive {
			continue
		}
		if captured, err = captured.Add(payments[i].Captured()); err != nil {
			return false, err
		}
	}
	cmp, err := captured.Cmp(order.TotalGross())
	if err != nil {
		return false, err
	}
	return cmp >= 0, nil
}

func sumGrantedRefunds(currency enums.Currency, grants []models.OrderGrantedRefund) (money.Money, error) {
	total := money.Zero(currency)
	var err error
	for i := range grants {
		if total, err = total.Add(grants[i].AmountMoney()); err != nil {
			return money.Money{}, err
		}
	}
	return total, nil
}
