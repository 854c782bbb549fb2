package models

import "time"

// PrintJobRecord is one append-only ledger audit entry. Records are immutable
// once written; the sequence number is assigned by the store.
type PrintJobRecord struct {
	Sequence      int64     `json:"sequence"`
	SessionToken  string    `json:"session_token"`
	PrinterID     string    `json:"printer_id"`
	PagesPrinted  int       `json:"pages_printed"`
	InkType       InkType   `json:"ink_type"`
	AmountCharged float64   `json:"amount_charged"`
	CreatedAt     time.Time `json:"created_at"`
}
