package purchasing

import (
	"errors"
	"time"
)

// Status enumerates purchase order lifecycle states.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
)

// Order is a persisted purchase order header.
type Order struct {
	ID         int64     `json:"id"`
	Number     string    `json:"number"`
	SupplierID int64     `json:"supplier_id"`
	Status     Status    `json:"status"`
	OrderedAt  time.Time `json:"ordered_at"`
}

// OrderLine is one product position on an order.
type OrderLine struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	ProductID   int64     `json:"product_id"`
	Description string    `json:"description"`
	Qty         float64   `json:"qty"`
	UnitPrice   float64   `json:"unit_price"`
	PlannedAt   time.Time `json:"planned_at"`
	UoM         string    `json:"uom"`
}

// DraftOrder is the creation payload produced by the reorder wizard: one
// draft order per supplier with its grouped lines.
type DraftOrder struct {
	SupplierID int64
	OrderedAt  time.Time
	Lines      []DraftLine
}

// DraftLine is one line of a DraftOrder.
type DraftLine struct {
	ProductID   int64
	Description string
	Qty         float64
	UnitPrice   float64
	PlannedAt   time.Time
	UoM         string
}

var (
	// ErrNotFound indicates a missing order.
	ErrNotFound = errors.New("purchasing: order not found")
	// ErrInvalidState occurs when an action violates the status workflow.
	ErrInvalidState = errors.New("purchasing: invalid state transition")
)
