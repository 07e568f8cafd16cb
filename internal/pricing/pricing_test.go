package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basho-studio/storefront/pkg/config"
	"github.com/basho-studio/storefront/pkg/enums"
)

func TestComputeShippingBoundaries(t *testing.T) {
	assert.Equal(t, int64(0), ComputeShipping(3000, 3000, 100))
	assert.Equal(t, int64(100), ComputeShipping(2999, 3000, 100))
	assert.Equal(t, int64(100), ComputeShipping(0, 3000, 100))
	assert.Equal(t, int64(0), ComputeShipping(10000, 3000, 100))
}

func TestComputeTaxIncludesShipping(t *testing.T) {
	assert.Equal(t, int64(198), ComputeTax(1000, 100, DefaultTaxRate))
	assert.Equal(t, int64(180), ComputeTax(1000, 0, DefaultTaxRate))
}

func TestComputeTaxRoundsHalfUp(t *testing.T) {
	// 25 * 0.18 = 4.5
	assert.Equal(t, int64(5), ComputeTax(25, 0, DefaultTaxRate))
	// 24 * 0.18 = 4.32
	assert.Equal(t, int64(4), ComputeTax(24, 0, DefaultTaxRate))
	// 1100 * 0.18 = 198.0 exactly, no float drift
	assert.Equal(t, int64(198), ComputeTax(1100, 0, decimal.RequireFromString("0.18")))
}

func TestCartTotalsScenarios(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name     string
		subtotal int64
		want     Totals
	}{
		{"free shipping", 4000, Totals{Subtotal: 4000, Shipping: 0, Tax: 720, Total: 4720}},
		{"flat fee", 500, Totals{Subtotal: 500, Shipping: 100, Tax: 108, Total: 708}},
		{"threshold inclusive", 3000, Totals{Subtotal: 3000, Shipping: 0, Tax: 540, Total: 3540}},
		{"empty cart", 0, Totals{Subtotal: 0, Shipping: 100, Tax: 18, Total: 118}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.CartTotals(tt.subtotal))
		})
	}
}

func TestBookingTotalsOmitShipping(t *testing.T) {
	got := DefaultRules().BookingTotals(7500)
	assert.Equal(t, Totals{Subtotal: 7500, Shipping: 0, Tax: 1350, Total: 8850}, got)
}

func TestRulesFromConfig(t *testing.T) {
	rules, err := RulesFromConfig(config.PricingConfig{
		FreeShippingThreshold: 5000,
		FlatShippingFee:       150,
		TaxRate:               "0.12",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.CurrencyINR, rules.Currency)
	assert.Equal(t, Totals{Subtotal: 1000, Shipping: 150, Tax: 138, Total: 1288}, rules.CartTotals(1000))

	_, err = RulesFromConfig(config.PricingConfig{TaxRate: "eighteen"})
	require.Error(t, err)
	_, err = RulesFromConfig(config.PricingConfig{TaxRate: "-0.1"})
	require.Error(t, err)
	_, err = RulesFromConfig(config.PricingConfig{TaxRate: "0.18", Currency: "USD"})
	require.Error(t, err)

	rules, err = RulesFromConfig(config.PricingConfig{TaxRate: "0.18", Currency: "inr"})
	require.NoError(t, err)
	assert.Equal(t, enums.CurrencyINR, rules.Currency)
}
