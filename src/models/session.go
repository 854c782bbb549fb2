package models

import "time"

// PaymentStatus represents whether a session's charge has been confirmed.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

// PrintStatus represents the print lifecycle of a session.
// Transitions are monotonic: WAITING -> PRINTING -> DONE.
type PrintStatus string

const (
	PrintWaiting  PrintStatus = "WAITING"
	PrintPrinting PrintStatus = "PRINTING"
	PrintDone     PrintStatus = "DONE"
)

// PrintMode selects single- or double-sided output.
type PrintMode string

const (
	ModeSimplex PrintMode = "SIMPLEX"
	ModeDuplex  PrintMode = "DUPLEX"
)

// Session represents one upload-to-print lifecycle instance. The session
// exclusively owns its temporary file until the store releases it.
type Session struct {
	SessionID     string        `json:"session_id"`
	FileRef       string        `json:"-"`
	PageCount     int           `json:"page_count"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PrintStatus   PrintStatus   `json:"print_status"`
	AmountCharged float64       `json:"amount_charged"`
	Copies        int           `json:"copies"`
	PrintMode     PrintMode     `json:"print_mode"`
	ColorMode     InkType       `json:"color_mode"`
	CreatedAt     time.Time     `json:"created_at"`
}
