package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/avelinelabs/orderfin-backend/api/responses"
	"github.com/avelinelabs/orderfin-backend/api/validators"
	"github.com/avelinelabs/orderfin-backend/internal/financials"
	pkgerrors "github.com/avelinelabs/orderfin-backend/pkg/errors"
	"github.com/avelinelabs/orderfin-backend/pkg/logger"
)

// BatchFinancialsRequest is the body of the batch view endpoint.
type BatchFinancialsRequest struct {
	OrderIDs []string `json:"order_ids" validate:"required,min=1,dive,uuid"`
}

// OrderFinancials returns the combined monetary view of a single order.
func OrderFinancials(svc financials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "financials service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithOrderID(ctx, orderID.String())
		}

		view, err := svc.GetFinancials(ctx, orderID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// BatchOrderFinancials returns the monetary views of several orders at once.
func BatchOrderFinancials(svc financials.Service, logg *logger.Logger, maxBatchSize int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "financials service unavailable"))
			return
		}

		var body BatchFinancialsRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if maxBatchSize > 0 && len(body.OrderIDs) > maxBatchSize {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(
				pkgerrors.CodeValidation,
				fmt.Sprintf("at most %d orders per request", maxBatchSize),
			))
			return
		}

		orderIDs := make([]uuid.UUID, 0, len(body.OrderIDs))
		for _, raw := range body.OrderIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order id %q", raw)))
				return
			}
			orderIDs = append(orderIDs, id)
		}

		views, err := svc.GetFinancialsBatch(r.Context(), orderIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// OrderPaymentStatus returns only the derived payment status.
func OrderPaymentStatus(svc financials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "financials service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := svc.GetPaymentStatus(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"payment_status": status})
	}
}

// OrderTotalBalance returns only the derived balance.
func OrderTotalBalance(svc financials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "financials service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		balance, err := svc.GetTotalBalance(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"total_balance": balance})
	}
}

// OrderRemainingGrant returns how much refund can still be granted.
func OrderRemainingGrant(svc financials.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "financials service unavailable"))
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		remaining, err := svc.GetRemainingGrantableRefund(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"remaining_grantable_refund": remaining})
	}
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "orderId")
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order id %q", raw))
	}
	return id, nil
}
