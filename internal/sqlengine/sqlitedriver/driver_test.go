package sqlitedriver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

func newTestDriver(t *testing.T) *Driver {
	t.Helper()
	d, err := Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestDriver_FlagsReportsOnConflictDo(t *testing.T) {
	d := newTestDriver(t)
	require.True(t, d.Flags().Has(pdtypes.FlagOnConflictDo))
	require.True(t, d.Flags().Has(pdtypes.FlagPrepStatements))
	require.False(t, d.Flags().Has(pdtypes.FlagOnDuplicateKey))
}

func TestDriver_ExecAndQueryRoundTrip(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	m := pdtypes.Map{
		Table:         "quota",
		PatternFields: []pdtypes.PatternField{{Column: "u", Kind: pdtypes.KindString}},
		ValueColumns:  []string{"v"},
		ValueKinds:    []pdtypes.ValueKind{pdtypes.KindInt64},
	}
	require.NoError(t, EnsureTable(d, m))

	affected, err := d.Exec(ctx, "INSERT INTO quota (u, v) VALUES (?, ?)", []any{"alice", int64(5)})
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	rows, err := d.Query(ctx, "SELECT v FROM quota WHERE u = ?", []any{"alice"})
	require.NoError(t, err)
	defer rows.Close()

	require.True(t, rows.Next())
	var v int64
	require.NoError(t, rows.Scan([]any{&v}))
	require.Equal(t, int64(5), v)
	require.False(t, rows.Next())
	require.NoError(t, rows.Err())
}

func TestDriver_TransactionCommitAndRollback(t *testing.T) {
	d := newTestDriver(t)
	ctx := context.Background()

	m := pdtypes.Map{
		Table:         "tx_quota",
		PatternFields: []pdtypes.PatternField{{Column: "u", Kind: pdtypes.KindString}},
		ValueColumns:  []string{"v"},
		ValueKinds:    []pdtypes.ValueKind{pdtypes.KindInt64},
	}
	require.NoError(t, EnsureTable(d, m))

	tx, err := d.Begin(ctx)
	require.NoError(t, err)
	_, err = tx.Exec(ctx, "INSERT INTO tx_quota (u, v) VALUES (?, ?)", []any{"bob", int64(1)})
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	rows, err := d.Query(ctx, "SELECT v FROM tx_quota WHERE u = ?", []any{"bob"})
	require.NoError(t, err)
	require.False(t, rows.Next())
	rows.Close()

	tx2, err := d.Begin(ctx)
	require.NoError(t, err)
	_, err = tx2.Exec(ctx, "INSERT INTO tx_quota (u, v) VALUES (?, ?)", []any{"carol", int64(2)})
	require.NoError(t, err)
	require.NoError(t, tx2.Commit())
	require.NoError(t, tx2.Rollback()) // Rollback after Commit is a no-op

	rows2, err := d.Query(ctx, "SELECT v FROM tx_quota WHERE u = ?", []any{"carol"})
	require.NoError(t, err)
	defer rows2.Close()
	require.True(t, rows2.Next())
}
