package catalog

import "errors"

// ProductType mirrors the catalog classification. Only stockable products
// participate in forecasting.
type ProductType string

const (
	// ProductStockable is a physical product held in stock.
	ProductStockable ProductType = "STOCKABLE"
	// ProductConsumable is expensed on receipt and never forecast.
	ProductConsumable ProductType = "CONSUMABLE"
	// ProductService has no stock dimension.
	ProductService ProductType = "SERVICE"
)

// Product is a sellable/purchasable catalog variant. Variants of one
// template share a TemplateID.
type Product struct {
	ID          int64
	TemplateID  int64
	Name        string
	Code        string
	Type        ProductType
	UoM         string
	PurchaseUoM string
}

// OrderUoM returns the unit of measure used on purchase documents, falling
// back to the base unit when no purchase unit is registered.
func (p Product) OrderUoM() string {
	if p.PurchaseUoM != "" {
		return p.PurchaseUoM
	}
	return p.UoM
}

// SupplierInfo is one entry of a product's supplier price list, ordered by
// Position (the first entry is the default supplier).
type SupplierInfo struct {
	SupplierID   int64
	SupplierName string
	Price        float64
	Position     int
}

// ErrNotFound indicates a missing product.
var ErrNotFound = errors.New("catalog: product not found")
