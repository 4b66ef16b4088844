package forecast

import (
	"errors"
	"time"
)

// monthDays is the average Gregorian month length used for every
// month-based window in this package.
const monthDays = 30.44

// UnboundedCoverage is the sentinel stored when stock exists but there is
// no demand to consume it. Threshold comparisons still behave correctly
// because the sentinel exceeds any practical forecast horizon.
const UnboundedCoverage = 999.0

// Defaults applied when a line is created without explicit windows.
const (
	DefaultMonthsHistory  = 3
	DefaultForecastMonths = 3
)

// MoveState enumerates stock move states that count as incoming.
type MoveState string

const (
	MoveAssigned           MoveState = "ASSIGNED"
	MoveConfirmed          MoveState = "CONFIRMED"
	MoveWaiting            MoveState = "WAITING"
	MovePartiallyAvailable MoveState = "PARTIALLY_AVAILABLE"
)

// Line is one forecast registry row. At most one line exists per product;
// the unique constraint on product_id is the sole concurrency guard.
type Line struct {
	ID             int64  `json:"id"`
	ProductID      int64  `json:"product_id"`
	ProductName    string `json:"product_name"`
	ProductCode    string `json:"product_code"`
	MonthsHistory  int    `json:"months_history"`
	ForecastMonths int    `json:"forecast_months"`
	Derived
	RefreshedAt time.Time `json:"refreshed_at"`
}

// Derived holds the cached computed outputs of a line. The whole block is
// overwritten by every refresh and is never an input.
type Derived struct {
	TotalSold           float64 `json:"total_sold"`
	MonthlyAverage      float64 `json:"monthly_average"`
	CurrentStock        float64 `json:"current_stock"`
	IncomingStock       float64 `json:"incoming_stock"`
	TotalAvailableStock float64 `json:"total_available_stock"`
	CoverageMonths      float64 `json:"coverage_months"`
	NeedReorder         bool    `json:"need_reorder"`
	ReorderWarning      bool    `json:"reorder_warning"`
}

// RecomputeInput feeds the coverage calculator.
type RecomputeInput struct {
	TotalSold      float64
	CurrentStock   float64
	IncomingStock  float64
	MonthsHistory  int
	ForecastMonths int
}

// Recompute derives all cached outputs from the stored inputs and the two
// live aggregates. Pure function; see the package tests for the threshold
// semantics.
func Recompute(in RecomputeInput) Derived {
	d := Derived{
		TotalSold:     in.TotalSold,
		CurrentStock:  in.CurrentStock,
		IncomingStock: in.IncomingStock,
	}
	if in.MonthsHistory > 0 {
		d.MonthlyAverage = in.TotalSold / float64(in.MonthsHistory)
	}
	d.TotalAvailableStock = in.CurrentStock + in.IncomingStock
	switch {
	case d.MonthlyAverage > 0:
		d.CoverageMonths = d.TotalAvailableStock / d.MonthlyAverage
	case d.TotalAvailableStock > 0:
		d.CoverageMonths = UnboundedCoverage
	default:
		d.CoverageMonths = 0
	}
	target := float64(in.ForecastMonths)
	// Strict less-than: equality at the horizon is not a trigger.
	d.NeedReorder = d.CoverageMonths < target
	if d.MonthlyAverage == 0 && d.TotalAvailableStock == 0 {
		// No stock and no demand: coverage is undefined, not short.
		d.NeedReorder = false
	}
	// Warning band is open at the horizon and closed at 1.5x.
	d.ReorderWarning = d.CoverageMonths > target && d.CoverageMonths <= target*1.5
	return d
}

// SalesWindow returns the trailing sales window ending at now.
func SalesWindow(now time.Time, monthsHistory int) (time.Time, time.Time) {
	from := now.Add(-time.Duration(float64(monthsHistory) * monthDays * 24 * float64(time.Hour)))
	return from, now
}

// MovementFilter selects the incoming stock moves counted by the stock
// aggregator. The inspection action reuses the same filter so displayed
// movements always match the summed total.
type MovementFilter struct {
	ProductID int64
	States    []MoveState
	From      time.Time
	To        time.Time
}

// IncomingMovementsFilter builds the shared incoming-movement filter.
// Returns false when there is nothing to query (no product or a
// non-positive horizon).
func IncomingMovementsFilter(productID int64, forecastMonths int, now time.Time) (MovementFilter, bool) {
	if productID == 0 || forecastMonths <= 0 {
		return MovementFilter{}, false
	}
	year, month, day := now.Date()
	from := time.Date(year, month, day, 0, 0, 0, 0, now.Location())
	horizon := from.Add(time.Duration(float64(forecastMonths) * monthDays * 24 * float64(time.Hour)))
	to := time.Date(horizon.Year(), horizon.Month(), horizon.Day(), 23, 59, 59, 0, now.Location())
	return MovementFilter{
		ProductID: productID,
		States:    []MoveState{MoveAssigned, MoveConfirmed, MoveWaiting, MovePartiallyAvailable},
		From:      from,
		To:        to,
	}, true
}

// IncomingMove is one stock move matched by the shared filter.
type IncomingMove struct {
	MoveID      int64     `json:"move_id"`
	ReceiptID   int64     `json:"receipt_id"`
	ReceiptName string    `json:"receipt_name"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	ExpectedQty float64   `json:"expected_qty"`
	State       MoveState `json:"state"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// ReceiptGroup bundles the matched moves of one receipt for display.
type ReceiptGroup struct {
	ReceiptID   int64          `json:"receipt_id"`
	ReceiptName string         `json:"receipt_name"`
	ScheduledAt time.Time      `json:"scheduled_at"`
	Moves       []IncomingMove `json:"moves"`
}

var (
	// ErrDuplicateLine is raised by the storage layer when a second line
	// for the same product is inserted.
	ErrDuplicateLine = errors.New("forecast: line already exists for product")
	// ErrLineNotFound indicates a missing registry row.
	ErrLineNotFound = errors.New("forecast: line not found")
)
