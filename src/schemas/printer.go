package schemas

// ResetPrinterRequest represents the request body for refilling consumables.
// Omitted fields keep their current level.
type ResetPrinterRequest struct {
	PaperCount    *int     `json:"paper_count"`
	BlackInkLevel *float64 `json:"black_ink_level"`
	ColorInkLevel *float64 `json:"color_ink_level"`
}

// MachineToggleRequest represents the request body for enabling or disabling
// the kiosk.
type MachineToggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// MachineStatusResponse reports the kiosk admission state.
type MachineStatusResponse struct {
	Enabled bool `json:"enabled"`
}
