package cart

import (
	"github.com/basho-studio/storefront/internal/cart"
	"github.com/basho-studio/storefront/internal/pricing"
)

type cartLine struct {
	ProductID     string `json:"productId"`
	Name          string `json:"name"`
	Image         string `json:"image,omitempty"`
	UnitPrice     int64  `json:"unitPrice"`
	Quantity      int    `json:"quantity"`
	Stock         int    `json:"stock"`
	VariantCode   string `json:"variantCode"`
	VariantName   string `json:"variantName"`
	LineTotal     int64  `json:"lineTotal"`
	CanIncrement  bool   `json:"canIncrement"`
	CheckoutReady bool   `json:"checkoutReady"`
}

type cartView struct {
	Items  []cartLine     `json:"items"`
	Count  int            `json:"count"`
	Empty  bool           `json:"empty"`
	Totals pricing.Totals `json:"totals"`
	Result *cart.Result   `json:"result,omitempty"`
}

func newCartView(snap cart.Snapshot, res *cart.Result) cartView {
	items := make([]cartLine, 0, len(snap.Items))
	for _, line := range snap.Items {
		var image string
		if len(line.Product.Images) > 0 {
			image = line.Product.Images[0]
		}
		items = append(items, cartLine{
			ProductID:     line.Product.ID.String(),
			Name:          line.Product.Name,
			Image:         image,
			UnitPrice:     line.Product.Price,
			Quantity:      line.Quantity,
			Stock:         line.Product.Stock,
			VariantCode:   line.SelectedColor.Code,
			VariantName:   line.SelectedColor.Name,
			LineTotal:     line.LineTotal(),
			CanIncrement:  line.Quantity < line.Product.Stock,
			CheckoutReady: line.Quantity <= line.Product.Stock,
		})
	}
	return cartView{
		Items:  items,
		Count:  snap.Count,
		Empty:  len(items) == 0,
		Totals: snap.Totals,
		Result: res,
	}
}
