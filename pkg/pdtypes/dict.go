package pdtypes

import "context"

// Dict is the public surface of a hierarchical key-value dictionary layered
// over a relational database. Implementations are not safe for concurrent
// use by multiple goroutines beyond what database/sql itself guarantees for
// the underlying connection pool.
type Dict interface {
	// Lookup performs a synchronous point read. It returns LookupNotFound
	// (not an error) when no row matches or every matching row is expired,
	// and LookupError when no map matches key.
	Lookup(ctx context.Context, op OpSettings, key string) LookupResult

	// LookupAsync performs the same lookup on a spawned goroutine and
	// invokes cb exactly once with the result. cb must not block.
	LookupAsync(ctx context.Context, op OpSettings, key string, cb func(LookupResult))

	// IterateInit begins a streaming iteration over path, honoring flags.
	IterateInit(ctx context.Context, op OpSettings, path string, flags IterateFlags) (Iterator, error)

	// NewTransaction opens a transaction context for Set/Unset/AtomicInc.
	NewTransaction(ctx context.Context, op OpSettings) (Transaction, error)

	// ExpireScan deletes all rows past their expire column across every
	// map that declares one. It reports whether any map had an expire
	// column.
	ExpireScan(ctx context.Context) (bool, error)

	// Wait blocks until any in-flight async operations issued by this
	// handle have completed.
	Wait()

	// Close releases the dict's resources. Idempotent.
	Close() error
}

// Transaction batches Set/Unset/AtomicInc operations, merging adjacent
// same-kind operations that share table, scope, and bound pattern values
// into a single statement at flush time. Not safe for concurrent use.
type Transaction interface {
	// Set schedules an upsert of key to value. It fails synchronously for
	// an invalid key, or when flushing a previously pending batch fails;
	// value is encoded only when its own batch flushes. Every such error
	// becomes the transaction's sticky error.
	Set(key, value string) error

	// Unset schedules a delete of key. Per the original semantics, this
	// flushes both pending queues before building the delete statement.
	Unset(key string) error

	// AtomicInc schedules col_i = col_i + delta on key's primary value
	// column.
	AtomicInc(key string, delta int64) error

	// Commit flushes all pending queues and commits the underlying SQL
	// transaction.
	Commit(ctx context.Context) (CommitResult, error)

	// CommitAsync performs the same work as Commit on a spawned goroutine,
	// invoking cb exactly once with the result.
	CommitAsync(ctx context.Context, cb func(CommitResult, error))

	// Rollback aborts the transaction, discarding unflushed queues.
	Rollback() error
}

// Iterator streams (key, values) pairs produced by Dict.IterateInit.
type Iterator interface {
	// Next advances to the next result. It returns false at end of stream
	// or on error; callers must check Err after Next returns false.
	Next(ctx context.Context) bool

	// Key returns the reconstructed full path for the current row.
	Key() string

	// Values returns the decoded value columns for the current row, or
	// nil if IterFlagNoValue was set.
	Values() []string

	// Err returns the first error encountered during iteration.
	Err() error

	// Close releases the iterator's resources. Idempotent.
	Close() error
}
