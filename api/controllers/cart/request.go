package cart

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/basho-studio/storefront/internal/cart"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
)

type addItemRequest struct {
	ProductID   string `json:"productId" validate:"required,max=191"`
	VariantCode string `json:"variantCode" validate:"required,max=64"`
	Quantity    int    `json:"quantity" validate:"gte=1,lte=999"`
}

// Quantity zero or below removes the line, so no lower bound here.
type updateItemRequest struct {
	Quantity int `json:"quantity" validate:"lte=999"`
}

func (p addItemRequest) toInput() cart.AddInput {
	return cart.AddInput{
		ProductID:   p.ProductID,
		VariantCode: p.VariantCode,
		Quantity:    p.Quantity,
	}
}

// lineParams reads the product id and glaze code from the path. Glaze codes
// are hex colours, so clients send "#" percent-encoded.
func lineParams(r *http.Request) (string, string, error) {
	productID, err := url.PathUnescape(chi.URLParam(r, "productId"))
	if err != nil || productID == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	variantCode, err := url.PathUnescape(chi.URLParam(r, "variantCode"))
	if err != nil || variantCode == "" {
		return "", "", pkgerrors.New(pkgerrors.CodeValidation, "invalid variant code")
	}
	return productID, variantCode, nil
}
