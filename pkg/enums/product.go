package enums

import (
	"fmt"
	"strings"
)

// ProductCategory is the shop section a piece is listed under.
type ProductCategory string

const (
	ProductCategoryTableware ProductCategory = "tableware"
	ProductCategoryDecor     ProductCategory = "decor"
	ProductCategoryCustom    ProductCategory = "custom"
)

var productCategoryLabels = map[ProductCategory]string{
	ProductCategoryTableware: "Tableware",
	ProductCategoryDecor:     "Home Decor",
	ProductCategoryCustom:    "Custom Commissions",
}

func (c ProductCategory) String() string {
	return string(c)
}

func (c ProductCategory) IsValid() bool {
	_, ok := productCategoryLabels[c]
	return ok
}

// Label is the storefront heading for the category; unknown values echo back.
func (c ProductCategory) Label() string {
	if label, ok := productCategoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// ParseProductCategory accepts any casing and surrounding whitespace.
func ParseProductCategory(value string) (ProductCategory, error) {
	c := ProductCategory(strings.ToLower(strings.TrimSpace(value)))
	if !c.IsValid() {
		return "", fmt.Errorf("invalid product category %q", value)
	}
	return c, nil
}
