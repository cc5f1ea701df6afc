package pdtypes

import "context"

// DriverFlags is a bitmask of SQL dialect capabilities a SQLDriver reports,
// read each time a Set batch is flushed to pick an UPSERT dialect.
type DriverFlags int

const (
	// FlagPrepStatements means the driver supports prepared statements
	// with positional parameter binding.
	FlagPrepStatements DriverFlags = 1 << iota
	// FlagOnDuplicateKey means the driver supports
	// "INSERT ... ON DUPLICATE KEY UPDATE" (MySQL dialect).
	FlagOnDuplicateKey
	// FlagOnConflictDo means the driver supports
	// "INSERT ... ON CONFLICT (...) DO UPDATE SET" (SQLite/Postgres dialect).
	FlagOnConflictDo
)

// Has reports whether flag is set in f.
func (f DriverFlags) Has(flag DriverFlags) bool {
	return f&flag != 0
}

// Row is a single decoded result row: column values in projection order,
// alongside the expire-column value (ExpireSet is false, and ExpireAt is
// meaningless, when the map has none).
type Row struct {
	Values    []string
	ExpireSet bool
	ExpireAt  int64
}

// RowIterator is a driver-level forward cursor over query results,
// consumed by the lookup and iteration engines.
type RowIterator interface {
	// Next advances to the next row. It returns false at end of results
	// or on error; callers must check Err after Next returns false.
	Next() bool
	// Scan decodes the current row into dest, one entry per projected
	// column, in the order the query builder projected them.
	Scan(dest []any) error
	// Err returns the first error encountered by Next or Scan.
	Err() error
	// Close releases the underlying driver resources. Idempotent.
	Close() error
}

// SQLDriver is the consumed SQL driver contract: connection lifecycle,
// capability discovery, statement execution, and transaction control.
// internal/sqlengine/sqlitedriver is the one concrete adapter this module
// ships, built on database/sql and modernc.org/sqlite.
type SQLDriver interface {
	// Flags reports the dialect capabilities used by the query builder.
	Flags() DriverFlags

	// Query runs a SELECT and returns a forward cursor.
	Query(ctx context.Context, query string, args []any) (RowIterator, error)

	// Exec runs an INSERT/UPDATE/DELETE and returns the number of rows
	// affected.
	Exec(ctx context.Context, query string, args []any) (int64, error)

	// Begin starts a driver transaction.
	Begin(ctx context.Context) (SQLTx, error)

	// Close releases the driver's connection pool.
	Close() error
}

// SQLTx is a single driver transaction, consumed by the transaction
// batcher.
type SQLTx interface {
	// Exec runs a statement within the transaction.
	Exec(ctx context.Context, query string, args []any) (int64, error)
	// Commit commits the transaction.
	Commit() error
	// Rollback aborts the transaction. Safe to call after Commit; the
	// second call is a no-op.
	Rollback() error
}
