package sales

import (
	"errors"
	"time"
)

// Status enumerates sales order lifecycle states. Only CONFIRMED and DONE
// orders count toward the forecast sales aggregates.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusConfirmed Status = "CONFIRMED"
	StatusDone      Status = "DONE"
	StatusCancelled Status = "CANCELLED"
)

// Order is a sales order header.
type Order struct {
	ID         int64     `json:"id"`
	Number     string    `json:"number"`
	CustomerID int64     `json:"customer_id"`
	Status     Status    `json:"status"`
	OrderedAt  time.Time `json:"ordered_at"`
}

// OrderLine is one product position on an order.
type OrderLine struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	ProductID int64   `json:"product_id"`
	Qty       float64 `json:"qty"`
}

var (
	// ErrNotFound indicates a missing order.
	ErrNotFound = errors.New("sales: order not found")
	// ErrInvalidState occurs when an action violates the status workflow.
	ErrInvalidState = errors.New("sales: invalid state transition")
)
