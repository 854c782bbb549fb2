package models

import "errors"

// Domain-level sentinel errors for business logic
// These errors should not contain HTTP-specific information

var (
	// ErrSessionNotFound indicates that a session with the given ID does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrPrinterNotFound indicates that a printer with the given ID does not exist
	ErrPrinterNotFound = errors.New("printer not found")

	// ErrPaymentRequired indicates that printing was requested before payment was confirmed
	ErrPaymentRequired = errors.New("payment not confirmed")

	// ErrAlreadyPrinting indicates that the session has already started or finished printing
	ErrAlreadyPrinting = errors.New("session is not waiting")

	// ErrPrinterBusy indicates that the printer is processing another job
	ErrPrinterBusy = errors.New("printer busy")

	// ErrMachineDisabled indicates that the kiosk was disabled by an administrator
	ErrMachineDisabled = errors.New("machine disabled")

	// ErrSessionPrinting indicates an operation that is not allowed mid-job,
	// such as cancelling a session whose file is being printed
	ErrSessionPrinting = errors.New("session is printing")

	// ErrNotPrintable indicates finish was called on a session that never started
	ErrNotPrintable = errors.New("session has no active or finished job")

	// ErrAmountMismatch indicates the confirmed amount does not match the quote
	ErrAmountMismatch = errors.New("amount mismatch")

	// ErrUnsupportedFile indicates the uploaded file type cannot be page-counted
	ErrUnsupportedFile = errors.New("unsupported file type")

	// ErrEmptyFile indicates a zero-byte upload
	ErrEmptyFile = errors.New("empty file")

	// ErrTooManyPages indicates the document exceeds the configured page limit
	ErrTooManyPages = errors.New("page count exceeds maximum")
)
