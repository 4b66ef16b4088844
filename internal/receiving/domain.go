package receiving

import (
	"errors"
	"time"
)

// Direction tells whether a receipt brings stock in or ships it out.
type Direction string

const (
	DirectionIncoming Direction = "INCOMING"
	DirectionOutgoing Direction = "OUTGOING"
)

// State enumerates receipt and move lifecycle states. The forecast incoming
// aggregate only counts moves in the pre-completion states.
type State string

const (
	StateDraft              State = "DRAFT"
	StateWaiting            State = "WAITING"
	StateConfirmed          State = "CONFIRMED"
	StatePartiallyAvailable State = "PARTIALLY_AVAILABLE"
	StateAssigned           State = "ASSIGNED"
	StateDone               State = "DONE"
	StateCancelled          State = "CANCELLED"
)

// Receipt is a planned stock transfer. ScheduledAt is nil until planning
// assigns a date; unscheduled receipts never count toward incoming stock.
type Receipt struct {
	ID          int64      `json:"id"`
	Number      string     `json:"number"`
	Direction   Direction  `json:"direction"`
	State       State      `json:"state"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
}

// Move is one product line of a receipt.
type Move struct {
	ID          int64   `json:"id"`
	ReceiptID   int64   `json:"receipt_id"`
	ProductID   int64   `json:"product_id"`
	ExpectedQty float64 `json:"expected_qty"`
	State       State   `json:"state"`
}

var (
	// ErrNotFound indicates a missing receipt.
	ErrNotFound = errors.New("receiving: receipt not found")
	// ErrInvalidState occurs when an action violates the state workflow.
	ErrInvalidState = errors.New("receiving: invalid state transition")
)
