package cart

import (
	"github.com/basho-studio/storefront/internal/catalog"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
)

var (
	// ErrOutOfStock is returned when adding a product whose stock is zero.
	ErrOutOfStock = pkgerrors.New(pkgerrors.CodeOutOfStock, "product is out of stock")
	// ErrInvalidQuantity is returned when adding a non-positive quantity.
	ErrInvalidQuantity = pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
)

// LineItem is one (product, glaze) entry in the cart. Product is the snapshot
// taken when the line was added.
type LineItem struct {
	Product       catalog.Product    `json:"product"`
	Quantity      int                `json:"quantity" validate:"gte=1"`
	SelectedColor catalog.GlazeColor `json:"selectedColor"`
}

// LineKey identifies a line: the same product in two glazes is two lines.
type LineKey struct {
	ProductID   catalog.ID
	VariantCode string
}

func (l LineItem) Key() LineKey {
	return LineKey{ProductID: l.Product.ID, VariantCode: l.SelectedColor.Code}
}

// LineTotal is price times quantity.
func (l LineItem) LineTotal() int64 {
	return l.Product.Price * int64(l.Quantity)
}

// Result reports what a mutation did. Quantity is the resulting quantity of
// the line (0 when removed); Clamped is set when it differs from what was
// asked for.
type Result struct {
	Requested int  `json:"requested"`
	Quantity  int  `json:"quantity"`
	Clamped   bool `json:"clamped"`
	Removed   bool `json:"removed"`
}

// CheckoutItem is the order payload entry for one cart line.
type CheckoutItem struct {
	ID  catalog.ID `json:"id"`
	Qty int        `json:"qty"`
}

// clampQuantity forces n into [1, stock].
func clampQuantity(n, stock int) int {
	if n > stock {
		n = stock
	}
	if n < 1 {
		n = 1
	}
	return n
}
