package controllers

import (
	"net/http"

	"github.com/basho-studio/storefront/api/middleware"
	"github.com/basho-studio/storefront/api/responses"
	"github.com/basho-studio/storefront/api/validators"
	"github.com/basho-studio/storefront/internal/checkout"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/logger"
)

// Field-level checks live in checkout.Service so the same rules apply to
// every caller; the body is only decoded here.
type checkoutRequest struct {
	Customer checkout.Customer `json:"customer" validate:"-"`
}

// Checkout opens a payment order for the session's cart.
func Checkout(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Start(r.Context(), middleware.CartSessionFromContext(r.Context()), payload.Customer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// CheckoutConfirm verifies the payment widget's result and empties the cart.
func CheckoutConfirm(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkout.PaymentConfirmation
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Confirm(r.Context(), middleware.CartSessionFromContext(r.Context()), payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "paid"})
	}
}
