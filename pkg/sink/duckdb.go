package sink

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/logforge/logforge/internal/model"
	"github.com/logforge/logforge/pkg/errors"
)

// DuckDBWriter writes the dataset into a DuckDB database file holding a
// single events table, ready for SQL analysis without an import step.
type DuckDBWriter struct {
	cfg Config
}

// Format implements the Writer interface.
func (*DuckDBWriter) Format() Format { return FormatDuckDB }

const createEventsTable = `
	CREATE TABLE events (
		case_id VARCHAR NOT NULL,
		activity VARCHAR NOT NULL,
		timestamp TIMESTAMP NOT NULL,
		complete_timestamp TIMESTAMP NOT NULL,
		customer_id VARCHAR NOT NULL,
		priority VARCHAR NOT NULL,
		channel VARCHAR NOT NULL,
		department VARCHAR NOT NULL,
		product_category VARCHAR NOT NULL,
		value DOUBLE NOT NULL,
		resource VARCHAR NOT NULL,
		duration_minutes INTEGER NOT NULL,
		cost DOUBLE NOT NULL,
		status VARCHAR NOT NULL,
		system VARCHAR NOT NULL,
		automated BOOLEAN NOT NULL
	)
`

const insertEvent = `
	INSERT INTO events (
		case_id, activity, timestamp, complete_timestamp,
		customer_id, priority, channel, department, product_category,
		value, resource, duration_minutes, cost,
		status, system, automated
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// Write implements the Writer interface.
func (w *DuckDBWriter) Write(ctx context.Context, ds *model.Dataset, path string) error {
	// Recreate the database so reruns replace rather than append.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to replace database file").
			WithContext("path", path)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return errors.Wrap(err, errors.CodeSinkInit, "failed to open duckdb").
			WithContext("path", path)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, createEventsTable); err != nil {
		return errors.Wrap(err, errors.CodeSinkInit, "failed to create events table")
	}

	stmt, err := db.PrepareContext(ctx, insertEvent)
	if err != nil {
		return errors.Wrap(err, errors.CodeSinkInit, "failed to prepare insert")
	}
	defer stmt.Close()

	rows := ds.Rows()
	for start := 0; start < len(rows); start += w.cfg.BatchSize {
		end := start + w.cfg.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := insertBatch(ctx, db, stmt, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

// insertBatch inserts one slice of rows inside a single transaction.
func insertBatch(ctx context.Context, db *sql.DB, stmt *sql.Stmt, rows []model.Row) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to begin transaction")
	}

	txStmt := tx.Stmt(stmt)
	for _, r := range rows {
		_, err := txStmt.ExecContext(ctx,
			r.CaseID,
			r.Activity,
			r.Timestamp,
			r.CompleteTimestamp,
			r.CustomerID,
			r.Priority,
			r.Channel,
			r.Department,
			r.ProductCategory,
			r.Value,
			r.Resource,
			r.DurationMinutes,
			r.Cost,
			r.Status,
			r.System,
			r.Automated,
		)
		if err != nil {
			tx.Rollback()
			return errors.Wrap(err, errors.CodeWriteFailed, "failed to insert event").
				WithContext("case", r.CaseID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to commit batch")
	}
	return nil
}
