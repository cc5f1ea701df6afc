// Package sqlitedriver is the one concrete pdtypes.SQLDriver adapter this
// module ships, built on database/sql and modernc.org/sqlite.
package sqlitedriver

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// Driver implements pdtypes.SQLDriver over a single *sql.DB. SQLite
// reports FlagOnConflictDo (not FlagOnDuplicateKey) for its UPSERT
// dialect, and FlagPrepStatements since database/sql prepares statements
// transparently.
type Driver struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database file at path and applies
// the PRAGMAs a single-process embedded-database deployment wants: WAL
// journaling and foreign keys on.
func Open(path string) (*Driver, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// A single physical connection avoids modernc.org/sqlite's
	// known multi-connection-on-one-file locking surprises; the
	// transaction batcher is already single-goroutine per handle.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	return &Driver{db: db}, nil
}

// OpenDB wraps an already-open *sql.DB, used by tests that want an
// in-memory database (":memory:" or "file::memory:?cache=shared").
func OpenDB(db *sql.DB) *Driver {
	return &Driver{db: db}
}

// Flags reports SQLite's dialect capabilities.
func (d *Driver) Flags() pdtypes.DriverFlags {
	return pdtypes.FlagPrepStatements | pdtypes.FlagOnConflictDo
}

// Query runs a SELECT and wraps the resulting *sql.Rows as a RowIterator.
func (d *Driver) Query(ctx context.Context, query string, args []any) (pdtypes.RowIterator, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &rowIterator{rows: rows}, nil
}

// Exec runs an INSERT/UPDATE/DELETE and returns rows affected.
func (d *Driver) Exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Begin starts a driver transaction.
func (d *Driver) Begin(ctx context.Context) (pdtypes.SQLTx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

// Close releases the underlying *sql.DB.
func (d *Driver) Close() error {
	return d.db.Close()
}

// DB exposes the underlying *sql.DB for schema setup at Attach time.
func (d *Driver) DB() *sql.DB {
	return d.db
}

type rowIterator struct {
	rows *sql.Rows
	err  error
}

func (r *rowIterator) Next() bool {
	return r.rows.Next()
}

func (r *rowIterator) Scan(dest []any) error {
	if err := r.rows.Scan(dest...); err != nil {
		r.err = err
		return err
	}
	return nil
}

func (r *rowIterator) Err() error {
	if r.err != nil {
		return r.err
	}
	return r.rows.Err()
}

func (r *rowIterator) Close() error {
	return r.rows.Close()
}

type sqlTx struct {
	tx *sql.Tx
}

func (t *sqlTx) Exec(ctx context.Context, query string, args []any) (int64, error) {
	res, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (t *sqlTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqlTx) Rollback() error {
	err := t.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}

var _ pdtypes.SQLDriver = (*Driver)(nil)
