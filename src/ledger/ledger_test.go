package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
)

// memRecorder collects audit records in memory for tests.
type memRecorder struct {
	mu      sync.Mutex
	records []models.PrintJobRecord
	fail    error
}

func (m *memRecorder) Append(_ context.Context, rec *models.PrintJobRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	rec.Sequence = int64(len(m.records) + 1)
	m.records = append(m.records, *rec)
	return nil
}

// almostEqual absorbs float64 rounding in per-page ink arithmetic.
func almostEqual(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-9
}

func newTestLedger(rec *memRecorder, paper int) *Ledger {
	l := New(rec)
	l.Register("kiosk-printer-1", paper)
	return l
}

func TestComputeFeasiblePages(t *testing.T) {
	tests := []struct {
		name       string
		paper      int
		requested  int
		privileged bool
		allowed    int
		shortfall  int
	}{
		{"enough paper", 100, 10, false, 10, 0},
		{"shortfall", 5, 10, false, 5, 5},
		{"empty tray", 0, 10, false, 0, 10},
		{"privileged override", 5, 10, true, 10, 0},
		{"exact match", 10, 10, false, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newTestLedger(&memRecorder{}, tt.paper)
			f, err := l.ComputeFeasiblePages("kiosk-printer-1", tt.requested, tt.privileged)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.PagesAllowed != tt.allowed {
				t.Errorf("PagesAllowed: got %d, want %d", f.PagesAllowed, tt.allowed)
			}
			if f.Shortfall != tt.shortfall {
				t.Errorf("Shortfall: got %d, want %d", f.Shortfall, tt.shortfall)
			}
		})
	}
}

func TestComputeFeasiblePagesUnknownPrinter(t *testing.T) {
	l := newTestLedger(&memRecorder{}, 10)
	if _, err := l.ComputeFeasiblePages("ghost", 1, false); !errors.Is(err, models.ErrPrinterNotFound) {
		t.Fatalf("expected ErrPrinterNotFound, got %v", err)
	}
}

func TestReserveAndDeductMonochrome(t *testing.T) {
	rec := &memRecorder{}
	l := newTestLedger(rec, 100)

	p, err := l.ReserveAndDeduct(context.Background(), "kiosk-printer-1", 10, models.InkMonochrome, "SESSION1", 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PaperCount != 90 {
		t.Errorf("PaperCount: got %d, want 90", p.PaperCount)
	}
	if !almostEqual(p.BlackInkLevel, 97) {
		t.Errorf("BlackInkLevel: got %v, want 97", p.BlackInkLevel)
	}
	if !almostEqual(p.ColorInkLevel, 100) {
		t.Errorf("ColorInkLevel: got %v, want 100", p.ColorInkLevel)
	}
	if len(rec.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(rec.records))
	}
	got := rec.records[0]
	if got.PrinterID != "kiosk-printer-1" || got.PagesPrinted != 10 || got.InkType != models.InkMonochrome {
		t.Errorf("unexpected audit record: %+v", got)
	}
}

func TestReserveAndDeductColor(t *testing.T) {
	l := newTestLedger(&memRecorder{}, 100)

	p, err := l.ReserveAndDeduct(context.Background(), "kiosk-printer-1", 10, models.InkColor, "SESSION1", 2.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(p.BlackInkLevel, 98) {
		t.Errorf("BlackInkLevel: got %v, want 98", p.BlackInkLevel)
	}
	if !almostEqual(p.ColorInkLevel, 96) {
		t.Errorf("ColorInkLevel: got %v, want 96", p.ColorInkLevel)
	}
}

func TestReserveAndDeductClampsToZero(t *testing.T) {
	rec := &memRecorder{}
	l := newTestLedger(rec, 5)

	// Privileged 10-page job on a 5-sheet tray: paper clamps at zero, the
	// job still records and proceeds with degraded output.
	p, err := l.ReserveAndDeduct(context.Background(), "kiosk-printer-1", 10, models.InkMonochrome, "SESSION1", 1.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PaperCount != 0 {
		t.Errorf("PaperCount: got %d, want 0", p.PaperCount)
	}

	// Deplete ink far past empty; levels must clamp, never go negative.
	for i := 0; i < 50; i++ {
		p, err = l.ReserveAndDeduct(context.Background(), "kiosk-printer-1", 10, models.InkColor, "SESSION1", 1.0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.PaperCount < 0 || p.BlackInkLevel < 0 || p.ColorInkLevel < 0 {
			t.Fatalf("level went negative: %+v", p)
		}
	}
	if p.BlackInkLevel != 0 || p.ColorInkLevel != 0 {
		t.Errorf("expected ink depleted to zero, got %+v", p)
	}
}

func TestReserveAndDeductUnknownPrinter(t *testing.T) {
	rec := &memRecorder{}
	l := newTestLedger(rec, 10)

	_, err := l.ReserveAndDeduct(context.Background(), "ghost", 1, models.InkMonochrome, "SESSION1", 0.1)
	if !errors.Is(err, models.ErrPrinterNotFound) {
		t.Fatalf("expected ErrPrinterNotFound, got %v", err)
	}
	if len(rec.records) != 0 {
		t.Errorf("no audit record expected for unknown printer, got %d", len(rec.records))
	}
}

func TestReserveAndDeductRecorderFailureLeavesStateUntouched(t *testing.T) {
	rec := &memRecorder{fail: errors.New("disk full")}
	l := newTestLedger(rec, 100)

	if _, err := l.ReserveAndDeduct(context.Background(), "kiosk-printer-1", 10, models.InkMonochrome, "SESSION1", 1.0); err == nil {
		t.Fatal("expected error when audit append fails")
	}

	p, err := l.Status("kiosk-printer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PaperCount != 100 || p.BlackInkLevel != 100 {
		t.Errorf("deduction applied despite audit failure: %+v", p)
	}
}

func TestConcurrentDeductionsSerialize(t *testing.T) {
	rec := &memRecorder{}
	l := newTestLedger(rec, 1000)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.ReserveAndDeduct(context.Background(), "kiosk-printer-1", 1, models.InkMonochrome, "SESSION1", 0.1); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	p, err := l.Status("kiosk-printer-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two overlapping deductions reading the same snapshot would lose sheets.
	if p.PaperCount != 900 {
		t.Errorf("PaperCount: got %d, want 900", p.PaperCount)
	}
	if len(rec.records) != 100 {
		t.Errorf("expected 100 audit records, got %d", len(rec.records))
	}
}

func TestResetClampsLevels(t *testing.T) {
	l := newTestLedger(&memRecorder{}, 10)

	paper := 500
	black := 150.0
	color := -5.0
	p, err := l.Reset("kiosk-printer-1", &paper, &black, &color)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PaperCount != 500 {
		t.Errorf("PaperCount: got %d, want 500", p.PaperCount)
	}
	if p.BlackInkLevel != 100 {
		t.Errorf("BlackInkLevel: got %v, want 100", p.BlackInkLevel)
	}
	if p.ColorInkLevel != 0 {
		t.Errorf("ColorInkLevel: got %v, want 0", p.ColorInkLevel)
	}
}

func TestResetPartialFieldsKeepOthers(t *testing.T) {
	l := newTestLedger(&memRecorder{}, 10)

	paper := 250
	p, err := l.Reset("kiosk-printer-1", &paper, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PaperCount != 250 || p.BlackInkLevel != 100 || p.ColorInkLevel != 100 {
		t.Errorf("unexpected printer state: %+v", p)
	}
}
