package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
)

// Ink cost per printed page. Color jobs still draw some black for text.
const (
	monoBlackPerPage  = 0.3
	colorBlackPerPage = 0.2
	colorColorPerPage = 0.4

	fullInkLevel = 100.0
)

// Recorder persists one audit entry per successful deduction.
type Recorder interface {
	Append(ctx context.Context, rec *models.PrintJobRecord) error
}

// entry pairs a printer's inventory with its own lock so deductions
// serialize per printer_id without blocking unrelated printers.
type entry struct {
	mu      sync.Mutex
	printer models.Printer
}

// Ledger holds the authoritative consumable levels for every printer and is
// the only component allowed to write them. Every successful deduction
// appends an audit record; the mutation and the append happen together or
// not at all.
type Ledger struct {
	mu       sync.RWMutex
	printers map[string]*entry
	recorder Recorder
}

// New creates an empty ledger backed by the given audit recorder.
func New(recorder Recorder) *Ledger {
	return &Ledger{
		printers: make(map[string]*entry),
		recorder: recorder,
	}
}

// Register adds a printer with a full paper tray and full cartridges.
// Called once at process start; printers are never removed while running.
func (l *Ledger) Register(printerID string, paperCount int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.printers[printerID] = &entry{
		printer: models.Printer{
			PrinterID:     printerID,
			PaperCount:    paperCount,
			BlackInkLevel: fullInkLevel,
			ColorInkLevel: fullInkLevel,
		},
	}
}

func (l *Ledger) lookup(printerID string) (*entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	e, ok := l.printers[printerID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrPrinterNotFound, printerID)
	}
	return e, nil
}

// Status returns a read-only snapshot of one printer's inventory.
func (l *Ledger) Status(printerID string) (models.Printer, error) {
	e, err := l.lookup(printerID)
	if err != nil {
		return models.Printer{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.printer, nil
}

// List returns a snapshot of every registered printer.
func (l *Ledger) List() []models.Printer {
	l.mu.RLock()
	defer l.mu.RUnlock()

	printers := make([]models.Printer, 0, len(l.printers))
	for _, e := range l.printers {
		e.mu.Lock()
		printers = append(printers, e.printer)
		e.mu.Unlock()
	}
	return printers
}

// ComputeFeasiblePages reports how many of the requested pages the paper
// stock can cover, from a single consistent snapshot. A privileged caller
// bypasses the paper check entirely (administrative override).
func (l *Ledger) ComputeFeasiblePages(printerID string, requested int, privileged bool) (models.Feasibility, error) {
	e, err := l.lookup(printerID)
	if err != nil {
		return models.Feasibility{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if privileged {
		return models.Feasibility{PagesAllowed: requested}, nil
	}

	allowed := requested
	if e.printer.PaperCount < allowed {
		allowed = e.printer.PaperCount
	}
	return models.Feasibility{
		PagesAllowed: allowed,
		Shortfall:    requested - allowed,
	}, nil
}

// ReserveAndDeduct atomically re-reads the printer's levels, deducts paper
// and ink for the given pages, and appends the audit record. Depleted
// consumables clamp to zero rather than failing: the kiosk keeps printing
// with degraded output instead of stranding a paid job. The only error path
// is an unknown printer_id.
func (l *Ledger) ReserveAndDeduct(ctx context.Context, printerID string, pages int, ink models.InkType, sessionToken string, amount float64) (models.Printer, error) {
	e, err := l.lookup(printerID)
	if err != nil {
		return models.Printer{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	blackUsed := monoBlackPerPage * float64(pages)
	colorUsed := 0.0
	if ink == models.InkColor {
		blackUsed = colorBlackPerPage * float64(pages)
		colorUsed = colorColorPerPage * float64(pages)
	}

	rec := &models.PrintJobRecord{
		SessionToken:  sessionToken,
		PrinterID:     printerID,
		PagesPrinted:  pages,
		InkType:       ink,
		AmountCharged: amount,
		CreatedAt:     time.Now(),
	}
	if err := l.recorder.Append(ctx, rec); err != nil {
		// No audit entry, no deduction.
		return models.Printer{}, fmt.Errorf("failed to record deduction: %w", err)
	}

	e.printer.PaperCount = clampInt(e.printer.PaperCount - pages)
	e.printer.BlackInkLevel = clampFloat(e.printer.BlackInkLevel - blackUsed)
	e.printer.ColorInkLevel = clampFloat(e.printer.ColorInkLevel - colorUsed)

	slog.Info("Deducted consumables",
		"printer_id", printerID,
		"pages", pages,
		"ink_type", ink,
		"paper_left", e.printer.PaperCount,
		"black_ink", e.printer.BlackInkLevel,
		"color_ink", e.printer.ColorInkLevel)

	return e.printer, nil
}

// Reset refills consumables from the administrative panel. Nil fields keep
// their current level. Levels are clamped to their physical range.
func (l *Ledger) Reset(printerID string, paperCount *int, blackInk, colorInk *float64) (models.Printer, error) {
	e, err := l.lookup(printerID)
	if err != nil {
		return models.Printer{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if paperCount != nil {
		e.printer.PaperCount = clampInt(*paperCount)
	}
	if blackInk != nil {
		e.printer.BlackInkLevel = clampLevel(*blackInk)
	}
	if colorInk != nil {
		e.printer.ColorInkLevel = clampLevel(*colorInk)
	}

	slog.Info("Reset printer levels",
		"printer_id", printerID,
		"paper", e.printer.PaperCount,
		"black_ink", e.printer.BlackInkLevel,
		"color_ink", e.printer.ColorInkLevel)

	return e.printer, nil
}

func clampInt(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func clampFloat(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampLevel(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > fullInkLevel {
		return fullInkLevel
	}
	return v
}
