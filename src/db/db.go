package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/MasterSinister2006/securepaytoprint-backend/src/config"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// DB represents the database connection and operations
type DB struct {
	conn *sql.DB
}

// NewDB opens the audit-ledger database. A standalone kiosk runs on sqlite;
// a fleet installation can point DB_DRIVER/DB_DSN at a shared postgres.
func NewDB(cfg *config.GlobalConfig) (*DB, error) {
	driver, err := sqlDriver(cfg.DBDriver)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// Set connection pool settings
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("Connected to audit database",
		"driver", cfg.DBDriver,
		"dsn", cfg.DBDSN)

	if err := createSchema(conn, cfg.DBDriver); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// GetConnection returns the underlying sql.DB connection
func (db *DB) GetConnection() *sql.DB {
	return db.conn
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func sqlDriver(name string) (string, error) {
	switch name {
	case "sqlite":
		return "sqlite", nil
	case "postgres":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or postgres)", name)
	}
}

// createSchema bootstraps the append-only audit table on connect.
func createSchema(conn *sql.DB, driver string) error {
	seqColumn := "seq INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == "postgres" {
		seqColumn = "seq BIGSERIAL PRIMARY KEY"
	}

	ddl := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS print_job_records (
				%s,
				session_token  TEXT             NOT NULL,
				printer_id     TEXT             NOT NULL,
				pages_printed  INTEGER          NOT NULL,
				ink_type       TEXT             NOT NULL,
				amount_charged DOUBLE PRECISION NOT NULL,
				created_at     TIMESTAMP        NOT NULL
			)`, seqColumn),
		`CREATE INDEX IF NOT EXISTS idx_print_job_records_printer ON print_job_records (printer_id)`,
		`CREATE INDEX IF NOT EXISTS idx_print_job_records_created ON print_job_records (created_at)`,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, stmt := range ddl {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	slog.Info("Audit schema created/verified")
	return nil
}
