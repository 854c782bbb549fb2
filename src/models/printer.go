package models

// InkType identifies which consumable set a job draws from.
type InkType string

const (
	InkMonochrome InkType = "MONOCHROME"
	InkColor      InkType = "COLOR"
)

// Printer represents the consumable inventory of one physical printer.
// Levels never go below zero; deductions clamp instead of failing so a
// depleted cartridge degrades output rather than blocking the kiosk.
type Printer struct {
	PrinterID     string  `json:"printer_id"`
	PaperCount    int     `json:"paper_count"`
	BlackInkLevel float64 `json:"black_ink_level"`
	ColorInkLevel float64 `json:"color_ink_level"`
}

// Feasibility is the result of a paper-stock check before a job is admitted.
// Shortfall > 0 means the caller should confirm (or force) a truncated job.
type Feasibility struct {
	PagesAllowed int `json:"pages_allowed"`
	Shortfall    int `json:"shortfall"`
}
