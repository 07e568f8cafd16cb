// Package checkout turns a cart session into a backend product order and
// settles it once the payment widget reports back.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/basho-studio/storefront/internal/cart"
	"github.com/basho-studio/storefront/internal/inflight"
	"github.com/basho-studio/storefront/internal/pricing"
	"github.com/basho-studio/storefront/pkg/bashoapi"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/logger"
	"github.com/basho-studio/storefront/pkg/metrics"
	"github.com/basho-studio/storefront/pkg/validation"
)

var validate = validation.New()

type orderBackend interface {
	CreateProductOrder(ctx context.Context, sessionID string, req bashoapi.ProductOrderRequest) (*bashoapi.ProductOrder, error)
	VerifyPayment(ctx context.Context, req bashoapi.PaymentVerification) error
	ClearCart(ctx context.Context, sessionID string) error
}

type cartAccess interface {
	WithStore(ctx context.Context, sessionID string, fn func(*cart.Store) error) error
}

// Customer is the shipping contact collected on the checkout form.
type Customer struct {
	FullName string `json:"fullName" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,basho_email"`
	Phone    string `json:"phone" validate:"required,in_mobile"`
	Address  string `json:"address" validate:"required,max=300"`
	City     string `json:"city" validate:"required,max=80"`
	Pincode  string `json:"pincode" validate:"required,pincode"`
}

// PaymentConfirmation is what the payment widget hands back on success.
type PaymentConfirmation struct {
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature" validate:"required"`
}

// Order is returned to the client to open the payment widget. Amount is in
// paise as issued by the backend; Totals are the storefront's own figures in
// rupees.
type Order struct {
	OrderID         string              `json:"orderId"`
	Key             string              `json:"key"`
	Amount          int64               `json:"amount"`
	Currency        string              `json:"currency"`
	RazorpayOrderID string              `json:"razorpay_order_id"`
	Items           []cart.CheckoutItem `json:"items"`
	Totals          pricing.Totals      `json:"totals"`
}

type Service interface {
	Start(ctx context.Context, sessionID string, customer Customer) (*Order, error)
	Confirm(ctx context.Context, sessionID string, payment PaymentConfirmation) error
}

type service struct {
	backend orderBackend
	carts   cartAccess
	guard   inflight.Guard
	rules   pricing.Rules
	logg    *logger.Logger
	metrics *metrics.Storefront
}

// NewService wires checkout over the backend client, the cart service and a
// per-session in-flight guard.
func NewService(backend orderBackend, carts cartAccess, guard inflight.Guard, rules pricing.Rules, logg *logger.Logger, m *metrics.Storefront) (Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("order backend required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if guard == nil {
		return nil, fmt.Errorf("inflight guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{backend: backend, carts: carts, guard: guard, rules: rules, logg: logg, metrics: m}, nil
}

// Start opens a backend order for the session's cart. The cart is left as is
// whatever the outcome; it is only cleared by Confirm.
func (s *service) Start(ctx context.Context, sessionID string, customer Customer) (*Order, error) {
	if err := cart.ValidateSession(sessionID); err != nil {
		return nil, err
	}
	customer = normalizeCustomer(customer)
	if err := validateStruct(customer, "customer details are missing or invalid"); err != nil {
		s.metrics.CheckoutOrder("create", "invalid")
		return nil, err
	}

	release, err := s.guard.Acquire(ctx, "checkout:"+strings.TrimSpace(sessionID))
	if err != nil {
		s.metrics.CheckoutOrder("create", guardOutcome(err))
		return nil, err
	}
	defer release()

	ctx = s.logg.WithCartSession(ctx, sessionID)

	var order *Order
	err = s.carts.WithStore(ctx, sessionID, func(store *cart.Store) error {
		if store.IsEmpty() {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		items := store.CheckoutItems()
		totals := s.rules.CartTotals(store.Total())

		req := bashoapi.ProductOrderRequest{
			Customer: bashoapi.Customer{
				FullName: customer.FullName,
				Email:    customer.Email,
				Phone:    customer.Phone,
				Address:  customer.Address,
				City:     customer.City,
				Pincode:  customer.Pincode,
			},
			Items: make([]bashoapi.OrderItem, 0, len(items)),
		}
		for _, item := range items {
			req.Items = append(req.Items, bashoapi.OrderItem{ID: item.ID, Quantity: item.Qty})
		}

		created, err := s.backend.CreateProductOrder(ctx, sessionID, req)
		if err != nil {
			return err
		}
		if created.Amount != totals.Total*100 {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"backend_amount_paise": created.Amount,
				"storefront_total":     totals.Total,
			}), "checkout.amount_mismatch")
		}

		currency := created.Currency
		if currency == "" {
			currency = s.rules.Currency.String()
		}
		order = &Order{
			OrderID:         created.OrderID.String(),
			Key:             created.Key,
			Amount:          created.Amount,
			Currency:        currency,
			RazorpayOrderID: created.RazorpayOrderID,
			Items:           items,
			Totals:          totals,
		}
		return nil
	})
	if err != nil {
		s.metrics.CheckoutOrder("create", errorOutcome(err))
		if pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
			s.logg.Error(ctx, "checkout.create.failed", err)
		}
		return nil, err
	}

	s.metrics.CheckoutOrder("create", "success")
	s.logg.Info(s.logg.WithField(ctx, "razorpay_order_id", order.RazorpayOrderID), "checkout.order.created")
	return order, nil
}

// Confirm verifies the payment, then empties the backend and local carts.
func (s *service) Confirm(ctx context.Context, sessionID string, payment PaymentConfirmation) error {
	if err := cart.ValidateSession(sessionID); err != nil {
		return err
	}
	payment = PaymentConfirmation{
		RazorpayPaymentID: strings.TrimSpace(payment.RazorpayPaymentID),
		RazorpayOrderID:   strings.TrimSpace(payment.RazorpayOrderID),
		RazorpaySignature: strings.TrimSpace(payment.RazorpaySignature),
	}
	if err := validateStruct(payment, "payment confirmation is incomplete"); err != nil {
		s.metrics.CheckoutOrder("confirm", "invalid")
		return err
	}
	ctx = s.logg.WithFields(s.logg.WithCartSession(ctx, sessionID), map[string]any{"razorpay_order_id": payment.RazorpayOrderID})

	if err := s.backend.VerifyPayment(ctx, bashoapi.PaymentVerification{
		RazorpayPaymentID: payment.RazorpayPaymentID,
		RazorpayOrderID:   payment.RazorpayOrderID,
		RazorpaySignature: payment.RazorpaySignature,
	}); err != nil {
		s.metrics.CheckoutOrder("confirm", errorOutcome(err))
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.payment.verify_failed")
		return err
	}

	if err := s.backend.ClearCart(ctx, sessionID); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.backend_cart_clear_failed")
	}

	err := s.carts.WithStore(ctx, sessionID, func(store *cart.Store) error {
		return store.Clear(ctx)
	})
	if err != nil {
		s.metrics.CheckoutOrder("confirm", "error")
		s.logg.Error(ctx, "checkout.cart_clear_failed", err)
		return err
	}

	s.metrics.CheckoutOrder("confirm", "success")
	s.logg.Info(ctx, "checkout.payment.confirmed")
	return nil
}

func normalizeCustomer(c Customer) Customer {
	return Customer{
		FullName: strings.TrimSpace(c.FullName),
		Email:    strings.TrimSpace(c.Email),
		Phone:    strings.ReplaceAll(strings.TrimSpace(c.Phone), " ", ""),
		Address:  strings.TrimSpace(c.Address),
		City:     strings.TrimSpace(c.City),
		Pincode:  strings.TrimSpace(c.Pincode),
	}
}

func validateStruct(v any, message string) error {
	if err := validate.Struct(v); err != nil {
		details, ok := validation.FieldErrors(err)
		if !ok {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate request")
		}
		return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
	}
	return nil
}

func guardOutcome(err error) string {
	if errors.Is(err, inflight.ErrInFlight) {
		return "in_flight"
	}
	return errorOutcome(err)
}

func errorOutcome(err error) string {
	switch {
	case pkgerrors.HasCode(err, pkgerrors.CodeValidation):
		return "invalid"
	case pkgerrors.HasCode(err, pkgerrors.CodeConflict):
		return "rejected"
	default:
		return "error"
	}
}
