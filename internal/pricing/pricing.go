// Package pricing holds the shipping, GST and total rules shared by the cart
// and the workshop booking flow. Amounts are whole currency units.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/basho-studio/storefront/pkg/config"
	"github.com/basho-studio/storefront/pkg/enums"
)

const (
	DefaultFreeShippingThreshold int64 = 3000
	DefaultFlatShippingFee       int64 = 100
)

// DefaultTaxRate is the GST rate applied to orders and bookings.
var DefaultTaxRate = decimal.RequireFromString("0.18")

// ComputeShipping returns 0 once subtotal reaches freeThreshold (inclusive),
// otherwise flatFee. An empty cart still pays the flat fee.
func ComputeShipping(subtotal, freeThreshold, flatFee int64) int64 {
	if subtotal >= freeThreshold {
		return 0
	}
	return flatFee
}

// ComputeTax returns round((subtotal + shipping) * rate) rounded half-up to a
// whole unit. Tax is charged on shipping too.
func ComputeTax(subtotal, shipping int64, rate decimal.Decimal) int64 {
	base := decimal.NewFromInt(subtotal + shipping)
	return base.Mul(rate).Round(0).IntPart()
}

func ComputeTotal(subtotal, shipping, tax int64) int64 {
	return subtotal + shipping + tax
}

// Totals is a derived price breakdown. It is never stored.
type Totals struct {
	Subtotal int64 `json:"subtotal"`
	Shipping int64 `json:"shipping"`
	Tax      int64 `json:"tax"`
	Total    int64 `json:"total"`
}

// Rules bundles the configurable pricing parameters.
type Rules struct {
	FreeShippingThreshold int64
	FlatShippingFee       int64
	TaxRate               decimal.Decimal
	Currency              enums.Currency
}

func DefaultRules() Rules {
	return Rules{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		FlatShippingFee:       DefaultFlatShippingFee,
		TaxRate:               DefaultTaxRate,
		Currency:              enums.CurrencyINR,
	}
}

// RulesFromConfig builds Rules from the environment-backed pricing config.
func RulesFromConfig(cfg config.PricingConfig) (Rules, error) {
	rate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return Rules{}, fmt.Errorf("parsing tax rate %q: %w", cfg.TaxRate, err)
	}
	if rate.IsNegative() {
		return Rules{}, fmt.Errorf("tax rate must be non-negative")
	}
	currency := enums.CurrencyINR
	if cfg.Currency != "" {
		if currency, err = enums.ParseCurrency(cfg.Currency); err != nil {
			return Rules{}, err
		}
	}
	return Rules{
		FreeShippingThreshold: cfg.FreeShippingThreshold,
		FlatShippingFee:       cfg.FlatShippingFee,
		TaxRate:               rate,
		Currency:              currency,
	}, nil
}

// CartTotals prices a product order: shipping tier, then GST on subtotal+shipping.
func (r Rules) CartTotals(subtotal int64) Totals {
	shipping := ComputeShipping(subtotal, r.FreeShippingThreshold, r.FlatShippingFee)
	tax := ComputeTax(subtotal, shipping, r.TaxRate)
	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    ComputeTotal(subtotal, shipping, tax),
	}
}

// BookingTotals prices a workshop reservation. Workshops ship nothing, so the
// total is subtotal + tax only.
func (r Rules) BookingTotals(subtotal int64) Totals {
	tax := ComputeTax(subtotal, 0, r.TaxRate)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal + tax,
	}
}
