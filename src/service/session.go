package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/printer"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/session"
)

// amountTolerance absorbs float rounding when a client echoes the quote back.
const amountTolerance = 0.005

// CreateSession stores the upload, counts its pages and opens a session.
// Any failure after the file landed on disk deletes it again; no orphaned
// temp files for rejected uploads.
func (s *KioskService) CreateSession(r io.Reader, declaredName string) (models.Session, error) {
	if !s.enabled.Load() {
		return models.Session{}, models.ErrMachineDisabled
	}

	fileRef, err := s.files.Store(r, declaredName)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to store upload: %w", err)
	}

	pages, err := s.counter.Count(fileRef, declaredName)
	if err != nil {
		s.files.Delete(fileRef)
		return models.Session{}, err
	}
	if pages > s.cfg.MaxPages {
		s.files.Delete(fileRef)
		return models.Session{}, fmt.Errorf("%w: %d > %d", models.ErrTooManyPages, pages, s.cfg.MaxPages)
	}

	sess, err := s.sessions.Create(fileRef, pages)
	if err != nil {
		s.files.Delete(fileRef)
		return models.Session{}, err
	}

	s.publishEvent("session_created", map[string]interface{}{
		"session_id": sess.SessionID,
		"pages":      pages,
	})
	return sess, nil
}

// GetSession returns a session snapshot for status polling.
func (s *KioskService) GetSession(sessionID string) (models.Session, error) {
	return s.sessions.Get(sessionID)
}

// ListSessions returns all live sessions for the admin panel.
func (s *KioskService) ListSessions() []models.Session {
	return s.sessions.List()
}

// Quote is the price for a session's page count at the kiosk's base rate.
func (s *KioskService) Quote(sess models.Session) float64 {
	return float64(sess.PageCount) * s.cfg.PricePerPage
}

// ColorQuote is the price for the same pages at the color rate. Color mode
// is only fixed at print start, so both quotes are shown up front.
func (s *KioskService) ColorQuote(sess models.Session) float64 {
	return float64(sess.PageCount) * s.cfg.ColorPricePerPage
}

// ConfirmPayment records a confirmed charge. The amount must match either
// the monochrome or the color quote; the external gateway has already moved
// the money, this only checks the client did not confirm a stale price.
func (s *KioskService) ConfirmPayment(sessionID string, amount float64) (models.Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return models.Session{}, err
	}

	if math.Abs(amount-s.Quote(sess)) > amountTolerance && math.Abs(amount-s.ColorQuote(sess)) > amountTolerance {
		return models.Session{}, fmt.Errorf("%w: got %.2f, quoted %.2f", models.ErrAmountMismatch, amount, s.Quote(sess))
	}

	sess, err = s.sessions.ConfirmPayment(sessionID, amount)
	if err != nil {
		return models.Session{}, err
	}

	s.publishEvent("payment_confirmed", map[string]interface{}{
		"session_id": sessionID,
		"amount":     amount,
	})
	return sess, nil
}

// StartResult reports the outcome of a print request. When Admitted is
// false the job was not started: the feasibility numbers carry the paper
// shortfall for the caller to confirm with the force flag.
type StartResult struct {
	Admitted    bool
	Session     models.Session
	PrinterID   string
	Feasibility models.Feasibility
}

// StartPrint admits a session to the printer. Paper shortage is advisory: a
// non-privileged, non-forced request with a shortfall gets a warning result
// instead of a truncated job. Privileged callers bypass the paper check.
func (s *KioskService) StartPrint(sessionID string, opts session.JobOptions, force, privileged bool) (StartResult, error) {
	if !s.enabled.Load() {
		return StartResult{}, models.ErrMachineDisabled
	}

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return StartResult{}, err
	}

	copies := opts.Copies
	if copies < 1 {
		copies = 1
	}
	sheets := sheetCount(sess.PageCount, copies, opts.PrintMode)

	feas, err := s.ledger.ComputeFeasiblePages(s.cfg.PrinterID, sheets, privileged)
	if err != nil {
		return StartResult{}, err
	}
	if feas.Shortfall > 0 && !force {
		slog.Info("Paper shortfall, awaiting confirmation",
			"session_id", sessionID,
			"allowed", feas.PagesAllowed,
			"shortfall", feas.Shortfall)
		return StartResult{Admitted: false, Session: sess, Feasibility: feas}, nil
	}

	started, err := s.coord.Start(sessionID, feas.PagesAllowed, opts, sess.AmountCharged)
	if err != nil {
		return StartResult{}, err
	}

	return StartResult{
		Admitted:    true,
		Session:     started,
		PrinterID:   s.cfg.PrinterID,
		Feasibility: feas,
	}, nil
}

// sheetCount converts pages and copies to physical sheets. Duplex puts two
// pages on a sheet.
func sheetCount(pages, copies int, mode models.PrintMode) int {
	perCopy := pages
	if mode == models.ModeDuplex {
		perCopy = (pages + 1) / 2
	}
	return perCopy * copies
}

// FinishPrint completes the active job early or cleans up a DONE session.
func (s *KioskService) FinishPrint(sessionID string) (models.Session, error) {
	return s.coord.Finish(sessionID)
}

// CancelSession removes a session and its file; rejected while printing.
func (s *KioskService) CancelSession(sessionID string) error {
	return s.sessions.Cancel(sessionID)
}

// Printers returns a snapshot of all printer inventories.
func (s *KioskService) Printers() []models.Printer {
	return s.ledger.List()
}

// PrinterStatus returns one printer's inventory.
func (s *KioskService) PrinterStatus(printerID string) (models.Printer, error) {
	return s.ledger.Status(printerID)
}

// ResetPrinter refills consumables from the admin panel.
func (s *KioskService) ResetPrinter(printerID string, paper *int, blackInk, colorInk *float64) (models.Printer, error) {
	return s.ledger.Reset(printerID, paper, blackInk, colorInk)
}

// PrinterState exposes the coordinator's IDLE/BUSY gate for the admin panel.
func (s *KioskService) PrinterState() printer.State {
	return s.coord.State()
}

// ResetMachine is the administrative big hammer: the pending print task is
// cancelled so it cannot fire afterwards, every session is cleared and the
// printer forced back to IDLE. Best-effort; never fails the caller.
func (s *KioskService) ResetMachine() int {
	s.coord.Reset()
	cleared := s.sessions.Clear()
	slog.Warn("Machine reset", "sessions_cleared", cleared)
	s.publishEvent("machine_reset", map[string]interface{}{"sessions_cleared": cleared})
	return cleared
}

// AuditReport queries the append-only ledger trail for reporting.
func (s *KioskService) AuditReport(ctx context.Context, printerID string, day *time.Time) ([]models.PrintJobRecord, error) {
	return s.audit.Query(ctx, printerID, day)
}
