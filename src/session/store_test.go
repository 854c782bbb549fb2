package session

import (
	"errors"
	"io"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
)

// fakeStorage records delete calls so tests can assert at-most-once release.
type fakeStorage struct {
	mu      sync.Mutex
	deletes map[string]int
	fail    error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{deletes: make(map[string]int)}
}

func (f *fakeStorage) Store(io.Reader, string) (string, error) { return "", nil }

func (f *fakeStorage) Delete(fileRef string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes[fileRef]++
	return f.fail
}

func (f *fakeStorage) Exists(fileRef string) bool { return false }

func (f *fakeStorage) setFail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

func (f *fakeStorage) deleteCount(fileRef string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deletes[fileRef]
}

func TestCreateGeneratesUppercaseAlphanumericToken(t *testing.T) {
	store := NewStore(newFakeStorage())
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sess, err := store.Create("/tmp/doc.pdf", 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !pattern.MatchString(sess.SessionID) {
			t.Fatalf("token %q does not match expected format", sess.SessionID)
		}
		if seen[sess.SessionID] {
			t.Fatalf("duplicate token %q", sess.SessionID)
		}
		seen[sess.SessionID] = true
	}
}

func TestCreateInitialState(t *testing.T) {
	store := NewStore(newFakeStorage())

	sess, err := store.Create("/tmp/doc.pdf", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.PaymentStatus != models.PaymentPending {
		t.Errorf("PaymentStatus: got %s, want PENDING", sess.PaymentStatus)
	}
	if sess.PrintStatus != models.PrintWaiting {
		t.Errorf("PrintStatus: got %s, want WAITING", sess.PrintStatus)
	}
	if sess.PageCount != 7 {
		t.Errorf("PageCount: got %d, want 7", sess.PageCount)
	}
}

func TestGetUnknownSession(t *testing.T) {
	store := NewStore(newFakeStorage())
	if _, err := store.Get("NOPE1234"); !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestConfirmPaymentUnknownSession(t *testing.T) {
	store := NewStore(newFakeStorage())
	if _, err := store.ConfirmPayment("NOPE1234", 1.0); !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestBeginPrintRequiresPayment(t *testing.T) {
	store := NewStore(newFakeStorage())
	sess, _ := store.Create("/tmp/doc.pdf", 3)

	if _, err := store.BeginPrint(sess.SessionID, JobOptions{}); !errors.Is(err, models.ErrPaymentRequired) {
		t.Fatalf("expected ErrPaymentRequired, got %v", err)
	}
}

func TestBeginPrintIsNotRepeatable(t *testing.T) {
	store := NewStore(newFakeStorage())
	sess, _ := store.Create("/tmp/doc.pdf", 3)
	store.ConfirmPayment(sess.SessionID, 0.3)

	got, err := store.BeginPrint(sess.SessionID, JobOptions{Copies: 2, ColorMode: models.InkColor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PrintStatus != models.PrintPrinting {
		t.Errorf("PrintStatus: got %s, want PRINTING", got.PrintStatus)
	}
	if got.Copies != 2 || got.ColorMode != models.InkColor {
		t.Errorf("job options not applied: %+v", got)
	}

	if _, err := store.BeginPrint(sess.SessionID, JobOptions{}); !errors.Is(err, models.ErrAlreadyPrinting) {
		t.Fatalf("expected ErrAlreadyPrinting on second begin, got %v", err)
	}
}

func TestCompletePrintReleasesFileOnce(t *testing.T) {
	files := newFakeStorage()
	store := NewStore(files)
	sess, _ := store.Create("/tmp/doc.pdf", 3)
	store.ConfirmPayment(sess.SessionID, 0.3)
	store.BeginPrint(sess.SessionID, JobOptions{})

	got, err := store.CompletePrint(sess.SessionID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.PrintStatus != models.PrintDone {
		t.Errorf("PrintStatus: got %s, want DONE", got.PrintStatus)
	}
	if files.deleteCount("/tmp/doc.pdf") != 1 {
		t.Errorf("expected one delete, got %d", files.deleteCount("/tmp/doc.pdf"))
	}

	// Completing again keeps DONE and must not delete the file twice.
	if _, err := store.CompletePrint(sess.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if files.deleteCount("/tmp/doc.pdf") != 1 {
		t.Errorf("file deleted twice")
	}

	// Removal after completion: second removal reports NotFound.
	if err := store.Remove(sess.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Remove(sess.SessionID); !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if files.deleteCount("/tmp/doc.pdf") != 1 {
		t.Errorf("file deleted again on removal")
	}
}

func TestRevertToWaiting(t *testing.T) {
	store := NewStore(newFakeStorage())
	sess, _ := store.Create("/tmp/doc.pdf", 3)
	store.ConfirmPayment(sess.SessionID, 0.3)
	store.BeginPrint(sess.SessionID, JobOptions{})

	if err := store.RevertToWaiting(sess.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := store.Get(sess.SessionID)
	if got.PrintStatus != models.PrintWaiting {
		t.Errorf("PrintStatus: got %s, want WAITING", got.PrintStatus)
	}

	// The session can be started again after the revert.
	if _, err := store.BeginPrint(sess.SessionID, JobOptions{}); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestCancelRejectedWhilePrinting(t *testing.T) {
	files := newFakeStorage()
	store := NewStore(files)
	sess, _ := store.Create("/tmp/doc.pdf", 3)
	store.ConfirmPayment(sess.SessionID, 0.3)
	store.BeginPrint(sess.SessionID, JobOptions{})

	if err := store.Cancel(sess.SessionID); !errors.Is(err, models.ErrSessionPrinting) {
		t.Fatalf("expected ErrSessionPrinting, got %v", err)
	}
	if files.deleteCount("/tmp/doc.pdf") != 0 {
		t.Errorf("file deleted for a printing session")
	}
}

func TestCancelReleasesAndRemoves(t *testing.T) {
	files := newFakeStorage()
	store := NewStore(files)
	sess, _ := store.Create("/tmp/doc.pdf", 3)

	if err := store.Cancel(sess.SessionID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if files.deleteCount("/tmp/doc.pdf") != 1 {
		t.Errorf("expected one delete, got %d", files.deleteCount("/tmp/doc.pdf"))
	}
	if _, err := store.Get(sess.SessionID); !errors.Is(err, models.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSweepExpired(t *testing.T) {
	files := newFakeStorage()
	store := NewStore(files)

	waiting, _ := store.Create("/tmp/old-waiting.pdf", 3)
	printing, _ := store.Create("/tmp/old-printing.pdf", 3)
	store.ConfirmPayment(printing.SessionID, 0.3)
	store.BeginPrint(printing.SessionID, JobOptions{})
	fresh, _ := store.Create("/tmp/fresh.pdf", 3)

	now := time.Now().Add(6 * time.Minute)
	// Backdate only the first two; the fresh one was "created" now.
	store.mu.Lock()
	store.sessions[fresh.SessionID].session.CreatedAt = now
	store.mu.Unlock()

	swept := store.SweepExpired(now, 5*time.Minute)
	if swept != 1 {
		t.Fatalf("swept: got %d, want 1", swept)
	}
	if _, err := store.Get(waiting.SessionID); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("expired waiting session should be removed")
	}
	if files.deleteCount("/tmp/old-waiting.pdf") != 1 {
		t.Errorf("expired session file not deleted")
	}
	if _, err := store.Get(printing.SessionID); err != nil {
		t.Errorf("printing session must never be reaped: %v", err)
	}
	if files.deleteCount("/tmp/old-printing.pdf") != 0 {
		t.Errorf("printing session file must not be deleted")
	}
	if _, err := store.Get(fresh.SessionID); err != nil {
		t.Errorf("fresh session should survive the sweep: %v", err)
	}
}

func TestSweepRetriesFailedDeletes(t *testing.T) {
	files := newFakeStorage()
	files.setFail(errors.New("device busy"))
	store := NewStore(files)

	sess, _ := store.Create("/tmp/doc.pdf", 3)
	swept := store.SweepExpired(time.Now().Add(time.Hour), time.Minute)
	if swept != 1 {
		t.Fatalf("swept: got %d, want 1", swept)
	}
	if _, err := store.Get(sess.SessionID); !errors.Is(err, models.ErrSessionNotFound) {
		t.Errorf("session should be removed even when deletion fails")
	}
	if files.deleteCount("/tmp/doc.pdf") != 1 {
		t.Fatalf("delete attempts: got %d, want 1", files.deleteCount("/tmp/doc.pdf"))
	}

	// The orphaned file is retried on the next sweep once the device recovers.
	files.setFail(nil)
	store.SweepExpired(time.Now().Add(2*time.Hour), time.Minute)
	if files.deleteCount("/tmp/doc.pdf") != 2 {
		t.Fatalf("orphan not retried: got %d delete attempts, want 2", files.deleteCount("/tmp/doc.pdf"))
	}

	// Once reclaimed, later sweeps leave it alone.
	store.SweepExpired(time.Now().Add(3*time.Hour), time.Minute)
	if files.deleteCount("/tmp/doc.pdf") != 2 {
		t.Errorf("reclaimed orphan deleted again: %d attempts", files.deleteCount("/tmp/doc.pdf"))
	}
}

func TestSweepKeepsOrphanWhileDeleteKeepsFailing(t *testing.T) {
	files := newFakeStorage()
	files.setFail(errors.New("device busy"))
	store := NewStore(files)

	store.Create("/tmp/doc.pdf", 3)
	store.SweepExpired(time.Now().Add(time.Hour), time.Minute)
	store.SweepExpired(time.Now().Add(2*time.Hour), time.Minute)

	// First release plus one retry, both failing; the ref must stay queued.
	if files.deleteCount("/tmp/doc.pdf") != 2 {
		t.Fatalf("delete attempts: got %d, want 2", files.deleteCount("/tmp/doc.pdf"))
	}

	files.setFail(nil)
	store.SweepExpired(time.Now().Add(3*time.Hour), time.Minute)
	if files.deleteCount("/tmp/doc.pdf") != 3 {
		t.Errorf("orphan dropped from retry queue: %d attempts", files.deleteCount("/tmp/doc.pdf"))
	}
}

func TestClearRemovesEverything(t *testing.T) {
	files := newFakeStorage()
	store := NewStore(files)
	store.Create("/tmp/a.pdf", 1)
	store.Create("/tmp/b.pdf", 2)

	if n := store.Clear(); n != 2 {
		t.Fatalf("cleared: got %d, want 2", n)
	}
	if len(store.List()) != 0 {
		t.Errorf("sessions remain after clear")
	}
}
