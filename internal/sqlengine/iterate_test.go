package sqlengine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

type fakeRow struct {
	vals []any
}

type fakeRows struct {
	rows []fakeRow
	idx  int
	err  error
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}

func (r *fakeRows) Scan(dest []any) error {
	row := r.rows[r.idx-1]
	for i, v := range row.vals {
		*(dest[i].(*any)) = v
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

type fakeIterDriver struct {
	flags pdtypes.DriverFlags
	rows  map[string]*fakeRows
}

func (d *fakeIterDriver) Flags() pdtypes.DriverFlags { return d.flags }

func (d *fakeIterDriver) Query(ctx context.Context, query string, args []any) (pdtypes.RowIterator, error) {
	r, ok := d.rows[query]
	if !ok {
		return &fakeRows{}, nil
	}
	return r, nil
}

func (d *fakeIterDriver) Exec(ctx context.Context, query string, args []any) (int64, error) {
	return 0, nil
}

func (d *fakeIterDriver) Begin(ctx context.Context) (pdtypes.SQLTx, error) {
	return nil, nil
}

func (d *fakeIterDriver) Close() error { return nil }

func ttlMap() pdtypes.Map {
	return pdtypes.Map{
		Pattern:       "shared/q/$",
		Table:         "Q",
		PatternFields: []pdtypes.PatternField{{Column: "u", Kind: pdtypes.KindString}},
		ValueColumns:  []string{"v"},
		ValueKinds:    []pdtypes.ValueKind{pdtypes.KindInt64},
		ExpireField:   "exp",
	}
}

// Invariant: iteration with recursion off never returns a key whose
// remainder below the matched prefix contains a further '/' — it is
// confined to exactly one child segment per row.
func TestIterate_OneLevelNeverReturnsGrandchildren(t *testing.T) {
	m := quotaMap()
	m.Pattern = "shared/q/$"
	q, err := BuildIterateQuery(IterCandidate{Map: &m, Values: nil, PatLen: len("shared/q/")}, pdtypes.OpSettings{}, pdtypes.RecurseOne, 0, 0)
	require.NoError(t, err)

	driver := &fakeIterDriver{rows: map[string]*fakeRows{
		q.SQL: {rows: []fakeRow{
			{vals: []any{int64(5), "alice"}},
		}},
	}}
	b := NewBackend(driver, []pdtypes.Map{m})

	it, err := b.IterateInit(context.Background(), pdtypes.OpSettings{}, "shared/q", 0)
	require.NoError(t, err)
	defer it.Close()

	require.True(t, it.Next(context.Background()))
	assert.Equal(t, "shared/q/alice", it.Key())
	assert.False(t, it.Next(context.Background()), "a one-level iteration must not chain past its single bound child")
}

// Invariant: a row whose expire column has already passed is skipped
// during scanning and never surfaced to the caller.
func TestIterate_SkipsExpiredRows(t *testing.T) {
	m := ttlMap()
	SetNowFunc(func() int64 { return 1000 })
	defer SetNowFunc(func() int64 { return time.Now().Unix() })

	q, err := BuildIterateQuery(IterCandidate{Map: &m, Values: nil, PatLen: len("shared/q/")}, pdtypes.OpSettings{}, pdtypes.RecurseOne, 0, 0)
	require.NoError(t, err)

	driver := &fakeIterDriver{rows: map[string]*fakeRows{
		q.SQL: {rows: []fakeRow{
			{vals: []any{int64(500), int64(5), "alice"}},  // expired
			{vals: []any{int64(2000), int64(9), "bob"}},   // live
		}},
	}}
	b := NewBackend(driver, []pdtypes.Map{m})

	it, err := b.IterateInit(context.Background(), pdtypes.OpSettings{}, "shared/q", 0)
	require.NoError(t, err)
	defer it.Close()

	require.True(t, it.Next(context.Background()))
	assert.Equal(t, "shared/q/bob", it.Key())
	assert.Equal(t, []string{"9"}, it.Values())

	assert.False(t, it.Next(context.Background()))
	assert.NoError(t, it.Err())
}
