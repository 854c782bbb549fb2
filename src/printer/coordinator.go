package printer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/session"
)

// State is the admission gate of the physical printer.
type State string

const (
	StateIdle State = "IDLE"
	StateBusy State = "BUSY"
)

// Timing bounds the simulated print duration so tests stay deterministic
// enough and a huge job cannot hold the kiosk for hours.
type Timing struct {
	Min     time.Duration
	Max     time.Duration
	PerPage time.Duration
}

func (t Timing) duration(sheets int) time.Duration {
	d := t.Min + time.Duration(sheets)*t.PerPage
	if d > t.Max {
		d = t.Max
	}
	if d < t.Min {
		d = t.Min
	}
	return d
}

// Sessions is the slice of the session store the coordinator drives.
type Sessions interface {
	Get(sessionID string) (models.Session, error)
	BeginPrint(sessionID string, opts session.JobOptions) (models.Session, error)
	CompletePrint(sessionID string) (models.Session, error)
	RevertToWaiting(sessionID string) error
	Remove(sessionID string) error
}

// Deductor is the ledger operation invoked exactly once per completed job.
type Deductor interface {
	ReserveAndDeduct(ctx context.Context, printerID string, pages int, ink models.InkType, sessionToken string, amount float64) (models.Printer, error)
}

// Coordinator serializes physical print operations for one printer. The
// IDLE/BUSY gate is checked under the same lock as the per-session
// precondition, so two sessions can never both observe IDLE and both reach
// PRINTING.
type Coordinator struct {
	mu        sync.Mutex
	printerID string
	state     State
	active    string
	timer     *time.Timer

	// active job parameters, valid while state == StateBusy
	sheets int
	ink    models.InkType
	amount float64

	sessions Sessions
	deduct   Deductor
	timing   Timing

	// OnDone, when set, fires after a job completes (deducted and DONE).
	OnDone func(sess models.Session, printer models.Printer)
}

// NewCoordinator creates an idle coordinator for one printer.
func NewCoordinator(printerID string, sessions Sessions, deduct Deductor, timing Timing) *Coordinator {
	return &Coordinator{
		printerID: printerID,
		state:     StateIdle,
		sessions:  sessions,
		deduct:    deduct,
		timing:    timing,
	}
}

// PrinterID returns the printer this coordinator drives.
func (c *Coordinator) PrinterID() string { return c.printerID }

// State returns the current admission state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start admits a session to the printer. The busy check and the session's
// paid/waiting precondition are evaluated atomically; on success the job's
// simulated completion is scheduled with a cancellable timer.
func (c *Coordinator) Start(sessionID string, sheets int, opts session.JobOptions, amount float64) (models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateBusy {
		return models.Session{}, fmt.Errorf("%w: printing session %s", models.ErrPrinterBusy, c.active)
	}

	sess, err := c.sessions.BeginPrint(sessionID, opts)
	if err != nil {
		return models.Session{}, err
	}

	c.state = StateBusy
	c.active = sessionID
	c.sheets = sheets
	c.ink = sess.ColorMode
	c.amount = amount

	d := c.timing.duration(sheets)
	c.timer = time.AfterFunc(d, func() {
		c.onTimer(sessionID)
	})

	slog.Info("Print job started",
		"session_id", sessionID,
		"printer_id", c.printerID,
		"sheets", sheets,
		"duration", d)

	return sess, nil
}

func (c *Coordinator) onTimer(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// The timer may fire after an explicit finish or an administrative
	// reset already tore the job down; only the still-active job completes.
	if c.state != StateBusy || c.active != sessionID {
		return
	}
	c.completeLocked()
}

// completeLocked finishes the active job: ledger deduction first, then the
// session's DONE transition, so a status poller never observes DONE without
// a matching audit entry. On deduction failure the session reverts to
// WAITING, the printer returns to IDLE and the error is returned.
func (c *Coordinator) completeLocked() error {
	sessionID := c.active
	c.timer = nil

	printer, err := c.deduct.ReserveAndDeduct(context.Background(), c.printerID, c.sheets, c.ink, sessionID, c.amount)
	if err != nil {
		slog.Error("Print job failed at deduction",
			"session_id", sessionID,
			"printer_id", c.printerID,
			"error", err)
		if revertErr := c.sessions.RevertToWaiting(sessionID); revertErr != nil {
			slog.Error("Failed to revert session", "session_id", sessionID, "error", revertErr)
		}
		c.idleLocked()
		return fmt.Errorf("failed to complete print job: %w", err)
	}

	sess, err := c.sessions.CompletePrint(sessionID)
	if err != nil {
		slog.Error("Failed to complete session", "session_id", sessionID, "error", err)
	}
	c.idleLocked()

	slog.Info("Print job completed",
		"session_id", sessionID,
		"printer_id", c.printerID,
		"paper_left", printer.PaperCount)

	if c.OnDone != nil && err == nil {
		c.OnDone(sess, printer)
	}
	return err
}

func (c *Coordinator) idleLocked() {
	c.state = StateIdle
	c.active = ""
	c.sheets = 0
	c.amount = 0
}

// Finish completes the active job early, or cleans up a finished session.
// Finishing a session that never started is rejected.
func (c *Coordinator) Finish(sessionID string) (models.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateBusy && c.active == sessionID {
		if c.timer != nil {
			c.timer.Stop()
		}
		if err := c.completeLocked(); err != nil {
			return models.Session{}, err
		}
		return c.sessions.Get(sessionID)
	}

	sess, err := c.sessions.Get(sessionID)
	if err != nil {
		return models.Session{}, err
	}
	if sess.PrintStatus != models.PrintDone {
		return models.Session{}, fmt.Errorf("%w: %s", models.ErrNotPrintable, sessionID)
	}
	if err := c.sessions.Remove(sessionID); err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// Reset is the administrative force-abort: the pending completion is
// cancelled so it cannot fire after session and printer state have been
// force-reset, and the printer returns to IDLE.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.active != "" {
		slog.Warn("Aborting active print job", "session_id", c.active, "printer_id", c.printerID)
	}
	c.idleLocked()
}
