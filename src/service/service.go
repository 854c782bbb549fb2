package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/config"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/ledger"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/pagecount"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/printer"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/rabbitmq"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/session"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/storage"
)

// Consumable thresholds below which a warning event is published.
const (
	lowPaperThreshold = 50
	lowInkThreshold   = 10.0
)

// AuditLog is the persistence surface for the ledger's append-only trail.
type AuditLog interface {
	Append(ctx context.Context, rec *models.PrintJobRecord) error
	Query(ctx context.Context, printerID string, day *time.Time) ([]models.PrintJobRecord, error)
}

// KioskService wires the session store, resource ledger and print coordinator
// together and enforces the kiosk-level admission switch.
type KioskService struct {
	cfg      config.GlobalConfig
	files    storage.Storage
	counter  pagecount.Counter
	sessions *session.Store
	ledger   *ledger.Ledger
	coord    *printer.Coordinator
	audit    AuditLog
	events   rabbitmq.Publisher

	enabled atomic.Bool
}

// NewKioskService assembles the kiosk core. The single printer is registered
// with a full tray; events may be nil when RabbitMQ is not configured.
func NewKioskService(cfg config.GlobalConfig, files storage.Storage, counter pagecount.Counter, audit AuditLog, events rabbitmq.Publisher) *KioskService {
	led := ledger.New(audit)
	led.Register(cfg.PrinterID, cfg.PaperCapacity)

	sessions := session.NewStore(files)
	coord := printer.NewCoordinator(cfg.PrinterID, sessions, led, printer.Timing{
		Min:     cfg.PrintMinDuration,
		Max:     cfg.PrintMaxDuration,
		PerPage: cfg.PrintPerPageDuration,
	})

	s := &KioskService{
		cfg:      cfg,
		files:    files,
		counter:  counter,
		sessions: sessions,
		ledger:   led,
		coord:    coord,
		audit:    audit,
		events:   events,
	}
	s.enabled.Store(true)
	coord.OnDone = s.onJobDone
	return s
}

// Enabled reports whether the kiosk accepts uploads and print jobs.
func (s *KioskService) Enabled() bool {
	return s.enabled.Load()
}

// SetEnabled toggles kiosk admission from the administrative panel.
func (s *KioskService) SetEnabled(enabled bool) {
	s.enabled.Store(enabled)
	slog.Info("Machine toggled", "enabled", enabled)
	s.publishEvent("machine_toggled", map[string]bool{"enabled": enabled})
}

// Sweep reclaims expired sessions; called periodically by the server.
func (s *KioskService) Sweep(now time.Time) int {
	return s.sessions.SweepExpired(now, s.cfg.SessionTTL)
}

// onJobDone publishes lifecycle events after a completed job and raises a
// consumable warning when the printer runs low.
func (s *KioskService) onJobDone(sess models.Session, p models.Printer) {
	s.publishEvent("print_completed", map[string]interface{}{
		"session_id": sess.SessionID,
		"printer_id": p.PrinterID,
		"pages":      sess.PageCount,
		"copies":     sess.Copies,
	})

	if p.PaperCount < lowPaperThreshold || p.BlackInkLevel < lowInkThreshold || p.ColorInkLevel < lowInkThreshold {
		s.publishEvent("consumable_low", map[string]interface{}{
			"printer_id": p.PrinterID,
			"paper":      p.PaperCount,
			"black_ink":  p.BlackInkLevel,
			"color_ink":  p.ColorInkLevel,
		})
	}
}

// publishEvent sends a JSON event to the fleet exchange. Failures are logged
// and never fail the request path.
func (s *KioskService) publishEvent(eventType string, payload interface{}) {
	if s.events == nil {
		return
	}
	body, err := json.Marshal(map[string]interface{}{
		"event":   eventType,
		"payload": payload,
		"time":    time.Now().UTC(),
	})
	if err != nil {
		slog.Error("Failed to marshal event", "event", eventType, "error", err)
		return
	}
	if err := s.events.Publish(rabbitmq.EventsExchange, body); err != nil {
		slog.Warn("Failed to publish event", "event", eventType, "error", err)
	}
}
