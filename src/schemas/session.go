package schemas

// UploadResponse is returned after a successful upload and page count.
type UploadResponse struct {
	SessionID   string  `json:"session_id"`
	PageCount   int     `json:"page_count"`
	Amount      float64 `json:"amount"`
	ColorAmount float64 `json:"color_amount"`
}

// ConfirmPaymentRequest represents the request body for confirming payment
type ConfirmPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// StartPrintRequest represents the request body for starting a print job
type StartPrintRequest struct {
	Copies    int    `json:"copies"`
	ColorMode string `json:"color_mode"`
	PrintMode string `json:"print_mode"`
	Force     bool   `json:"force"`
}

// StartPrintResponse is returned when a job was admitted to the printer.
type StartPrintResponse struct {
	Message      string `json:"message"`
	SessionID    string `json:"session_id"`
	PrinterID    string `json:"printer_id"`
	PagesAllowed int    `json:"pages_allowed"`
	Shortfall    int    `json:"shortfall"`
}

// ShortfallResponse is returned when paper stock cannot cover the request
// and the caller did not force the job.
type ShortfallResponse struct {
	Warning      string `json:"warning"`
	PagesAllowed int    `json:"pages_allowed"`
	Shortfall    int    `json:"shortfall"`
}

// MessageResponse is a generic success envelope.
type MessageResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}
