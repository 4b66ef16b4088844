package reorder

import (
	"time"

	"github.com/vantage-erp/vantage-erp/internal/catalog"
)

// WizardLine is one forecast line prepared for ordering. SupplierID holds
// the defaulted choice (the product's first registered supplier) and may be
// zero when the product has no suppliers; the operator must then pick one
// from Candidates before generation.
type WizardLine struct {
	ForecastLineID  int64                  `json:"forecast_line_id"`
	ProductID       int64                  `json:"product_id"`
	ProductName     string                 `json:"product_name"`
	QuantityToOrder float64                `json:"quantity_to_order"`
	SupplierID      int64                  `json:"supplier_id,omitempty"`
	Candidates      []catalog.SupplierInfo `json:"candidates"`
}

// Wizard is the ephemeral reorder document. It lives in memory only and is
// discarded once purchase orders have been generated from it.
type Wizard struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	Lines     []WizardLine `json:"lines"`
}

// QuantityToOrder computes the order proposal for one forecast line:
// enough to reach the target stock over the forecast horizon, never
// negative.
func QuantityToOrder(monthlyAverage float64, forecastMonths int, totalAvailable float64) float64 {
	target := monthlyAverage * float64(forecastMonths)
	qty := target - totalAvailable
	if qty < 0 {
		return 0
	}
	return qty
}
