package session

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/storage"
)

// record wraps a session with its file-ownership flag. The flag guarantees
// the owned file is deleted at most once across finish, cancel, sweep and
// administrative reset.
type record struct {
	session  models.Session
	released bool
}

// Store tracks in-flight and recently-completed upload sessions. It is the
// single owner of session state: created at process start, all access through
// its operations, no teardown while the process runs.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*record
	files    storage.Storage

	// orphans are file refs whose first release failed; the expiry sweep
	// retries them until deletion succeeds.
	orphans []string
}

// NewStore creates an empty session store backed by the given file storage.
func NewStore(files storage.Storage) *Store {
	return &Store{
		sessions: make(map[string]*record),
		files:    files,
	}
}

// Create registers a new session for a counted upload. The generated ID is
// guaranteed unique among live sessions; on the (negligible) chance of a
// collision a fresh token is drawn rather than overwriting.
func (s *Store) Create(fileRef string, pageCount int) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var id string
	for {
		token, err := newToken()
		if err != nil {
			return models.Session{}, err
		}
		if _, exists := s.sessions[token]; !exists {
			id = token
			break
		}
	}

	sess := models.Session{
		SessionID:     id,
		FileRef:       fileRef,
		PageCount:     pageCount,
		PaymentStatus: models.PaymentPending,
		PrintStatus:   models.PrintWaiting,
		Copies:        1,
		PrintMode:     models.ModeSimplex,
		ColorMode:     models.InkMonochrome,
		CreatedAt:     time.Now(),
	}
	s.sessions[id] = &record{session: sess}

	slog.Info("Created session", "session_id", id, "pages", pageCount)
	return sess, nil
}

// Get returns a snapshot of one session.
func (s *Store) Get(sessionID string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return models.Session{}, fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
	}
	return rec.session, nil
}

// List returns a snapshot of every live session, for the admin panel.
func (s *Store) List() []models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]models.Session, 0, len(s.sessions))
	for _, rec := range s.sessions {
		sessions = append(sessions, rec.session)
	}
	return sessions
}

// ConfirmPayment marks the session PAID and records the charged amount.
// Amount validation against the quote is the caller's responsibility; the
// store trusts it.
func (s *Store) ConfirmPayment(sessionID string, amount float64) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return models.Session{}, fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
	}

	rec.session.PaymentStatus = models.PaymentPaid
	rec.session.AmountCharged = amount

	slog.Info("Payment confirmed", "session_id", sessionID, "amount", amount)
	return rec.session, nil
}

// JobOptions are fixed at print start, not at session creation.
type JobOptions struct {
	Copies    int
	PrintMode models.PrintMode
	ColorMode models.InkType
}

// BeginPrint transitions WAITING -> PRINTING. Fails unless payment is
// confirmed and the session has not started before (idempotency guard).
// The caller must hold the printer admission gate across this call.
func (s *Store) BeginPrint(sessionID string, opts JobOptions) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return models.Session{}, fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
	}
	if rec.session.PaymentStatus != models.PaymentPaid {
		return models.Session{}, fmt.Errorf("%w: session %s", models.ErrPaymentRequired, sessionID)
	}
	if rec.session.PrintStatus != models.PrintWaiting {
		return models.Session{}, fmt.Errorf("%w: session %s is %s", models.ErrAlreadyPrinting, sessionID, rec.session.PrintStatus)
	}

	if opts.Copies >= 1 {
		rec.session.Copies = opts.Copies
	}
	if opts.PrintMode != "" {
		rec.session.PrintMode = opts.PrintMode
	}
	if opts.ColorMode != "" {
		rec.session.ColorMode = opts.ColorMode
	}
	rec.session.PrintStatus = models.PrintPrinting

	slog.Info("Session printing", "session_id", sessionID, "copies", rec.session.Copies)
	return rec.session, nil
}

// CompletePrint transitions PRINTING -> DONE and releases the owned file.
// The release is unconditional and happens exactly once; the session record
// stays around for status polling until finished, cancelled or swept.
func (s *Store) CompletePrint(sessionID string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return models.Session{}, fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
	}

	rec.session.PrintStatus = models.PrintDone
	s.releaseLocked(rec)

	slog.Info("Session done", "session_id", sessionID)
	return rec.session, nil
}

// RevertToWaiting rolls a failed job back so the caller can retry or cancel.
// The file is kept; the session never reaches DONE without an audit entry.
func (s *Store) RevertToWaiting(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
	}
	if rec.session.PrintStatus == models.PrintPrinting {
		rec.session.PrintStatus = models.PrintWaiting
	}
	return nil
}

// Cancel releases the file and removes the session. Cancelling mid-job is
// rejected; the file is in use by the printer.
func (s *Store) Cancel(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
	}
	if rec.session.PrintStatus == models.PrintPrinting {
		return fmt.Errorf("%w: %s", models.ErrSessionPrinting, sessionID)
	}

	s.releaseLocked(rec)
	delete(s.sessions, sessionID)

	slog.Info("Session cancelled", "session_id", sessionID)
	return nil
}

// Remove drops the session record after releasing its file, regardless of
// status. Used by finish cleanup and the administrative reset, which has
// already forced the printer idle.
func (s *Store) Remove(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
	}

	s.releaseLocked(rec)
	delete(s.sessions, sessionID)
	return nil
}

// Clear removes every session. Best-effort: file release failures are logged
// and skipped, never surfaced.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.sessions)
	for id, rec := range s.sessions {
		s.releaseLocked(rec)
		delete(s.sessions, id)
	}
	return n
}

// SweepExpired reclaims sessions older than ttl. Sessions actively printing
// are never reaped, to avoid deleting a file mid-job.
func (s *Store) SweepExpired(now time.Time, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.retryOrphansLocked()

	swept := 0
	for id, rec := range s.sessions {
		if rec.session.PrintStatus == models.PrintPrinting {
			continue
		}
		if now.Sub(rec.session.CreatedAt) <= ttl {
			continue
		}
		s.releaseLocked(rec)
		delete(s.sessions, id)
		swept++
		slog.Info("Swept expired session", "session_id", id, "age", now.Sub(rec.session.CreatedAt))
	}
	return swept
}

// releaseLocked deletes the owned file at most once. Deletion failures are
// logged and swallowed; the leftover file is recorded as an orphan and the
// expiry sweep retries it.
func (s *Store) releaseLocked(rec *record) {
	if rec.released {
		return
	}
	rec.released = true
	if err := s.files.Delete(rec.session.FileRef); err != nil {
		slog.Warn("Best-effort file release failed",
			"session_id", rec.session.SessionID,
			"file", rec.session.FileRef,
			"error", err)
		s.orphans = append(s.orphans, rec.session.FileRef)
	}
}

// retryOrphansLocked retries deletion of files whose first release failed.
// Refs stay on the list until a delete succeeds.
func (s *Store) retryOrphansLocked() {
	kept := s.orphans[:0]
	for _, ref := range s.orphans {
		if err := s.files.Delete(ref); err != nil {
			kept = append(kept, ref)
			continue
		}
		slog.Info("Reclaimed orphaned upload", "file", ref)
	}
	s.orphans = kept
}
