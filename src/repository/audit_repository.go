package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/db"
	"github.com/MasterSinister2006/securepaytoprint-backend/src/models"
)

// AuditRepository handles all database operations for the print-job audit log.
// Records are append-only; there is no update or delete path.
type AuditRepository struct {
	db *db.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(database *db.DB) *AuditRepository {
	return &AuditRepository{
		db: database,
	}
}

// Append writes one audit record and fills in its assigned sequence number.
func (r *AuditRepository) Append(ctx context.Context, rec *models.PrintJobRecord) error {
	query := `
		INSERT INTO print_job_records
		(session_token, printer_id, pages_printed, ink_type, amount_charged, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq
	`

	err := r.db.GetConnection().QueryRowContext(
		ctx,
		query,
		rec.SessionToken,
		rec.PrinterID,
		rec.PagesPrinted,
		string(rec.InkType),
		rec.AmountCharged,
		rec.CreatedAt,
	).Scan(&rec.Sequence)

	if err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}

	slog.Info("Appended audit record",
		"seq", rec.Sequence,
		"printer_id", rec.PrinterID,
		"pages", rec.PagesPrinted)

	return nil
}

// Query returns audit records, newest first, optionally filtered by printer
// and by calendar day.
func (r *AuditRepository) Query(ctx context.Context, printerID string, day *time.Time) ([]models.PrintJobRecord, error) {
	query := `
		SELECT seq, session_token, printer_id, pages_printed, ink_type, amount_charged, created_at
		FROM print_job_records
	`

	var conds []string
	var args []interface{}
	if printerID != "" {
		args = append(args, printerID)
		conds = append(conds, fmt.Sprintf("printer_id = $%d", len(args)))
	}
	if day != nil {
		start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
		args = append(args, start)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
		args = append(args, start.Add(24*time.Hour))
		conds = append(conds, fmt.Sprintf("created_at < $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY seq DESC LIMIT 500"

	rows, err := r.db.GetConnection().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	defer rows.Close()

	var records []models.PrintJobRecord
	for rows.Next() {
		var rec models.PrintJobRecord
		var ink string
		if err := rows.Scan(
			&rec.Sequence,
			&rec.SessionToken,
			&rec.PrinterID,
			&rec.PagesPrinted,
			&ink,
			&rec.AmountCharged,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit record: %w", err)
		}
		rec.InkType = models.InkType(ink)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit records: %w", err)
	}

	return records, nil
}
