package sqlengine

import (
	"context"
	"fmt"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// pendingSetBatch accumulates the value columns of a run of Set calls that
// all resolved to the same table, scope, and bound pattern values. firstKey
// is kept, not the pattern values themselves, because mergeability is
// re-checked by re-running FindMap against firstKey at merge time, matching
// sql_dict_maps_are_mergeable's use of the first queued key rather than a
// cached value array.
type pendingSetBatch struct {
	firstKey string
	m        *pdtypes.Map
	values   []string
	columns  []SetColumn
}

type pendingIncBatch struct {
	firstKey string
	m        *pdtypes.Map
	values   []string
	columns  []IncColumn
}

type txState int

const (
	txOpen txState = iota
	txCommitted
	txRolledBack
)

// transaction implements pdtypes.Transaction. Set and AtomicInc calls fold
// into whichever batch is pending as long as the new key's map is
// mergeable with it; a non-mergeable call, or a call of the other kind,
// flushes the pending batch into a single statement first. The two kinds
// of pending batch are mutually exclusive: Set always flushes a pending
// inc batch before opening or extending its own, and AtomicInc does the
// reverse, so at most one of pendingSet/pendingInc is non-nil at a time.
type transaction struct {
	b   *Backend
	op  pdtypes.OpSettings
	ctx context.Context
	tx  pdtypes.SQLTx

	pendingSet *pendingSetBatch
	pendingInc *pendingIncBatch

	// incMissed is set once a flushed increment batch affects zero rows.
	incMissed bool

	sticky error
	state  txState
}

// NewTransaction opens a driver transaction and returns a batcher bound to
// it. op.Timestamp, if set, fixes the commit time used to compute expire
// columns for every Set queued on this transaction.
func (b *Backend) NewTransaction(ctx context.Context, op pdtypes.OpSettings) (pdtypes.Transaction, error) {
	if err := b.checkAttached(); err != nil {
		return nil, err
	}
	tx, err := b.driver.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &transaction{b: b, op: op, ctx: ctx, tx: tx}, nil
}

func (t *transaction) fail(err error) error {
	if t.sticky == nil {
		t.sticky = err
	}
	return err
}

// Set schedules an upsert of key to value.
func (t *transaction) Set(key, value string) error {
	if t.sticky != nil {
		return t.sticky
	}
	if t.state != txOpen {
		return t.fail(pdtypes.ErrTransactionClosed)
	}
	if t.pendingInc != nil {
		if err := t.flushInc(); err != nil {
			return err
		}
	}

	matched, err := FindMap(t.b.maps, key)
	if err != nil {
		return t.fail(fmt.Errorf("sql dict set: invalid/unmapped key %s: %w", key, err))
	}

	if t.pendingSet != nil {
		mergeable, err := t.mergeable(t.pendingSet.firstKey, t.pendingSet.m, key, matched.Map, matched.Values)
		if err != nil {
			return t.fail(err)
		}
		if !mergeable {
			if err := t.flushSet(); err != nil {
				return err
			}
		}
	}

	col := SetColumn{
		Column: matched.Map.PrimaryValueColumn(),
		Kind:   matched.Map.PrimaryValueKind(),
		Value:  value,
	}

	if t.pendingSet == nil {
		t.pendingSet = &pendingSetBatch{
			firstKey: key,
			m:        matched.Map,
			values:   matched.Values,
			columns:  []SetColumn{col},
		}
		return nil
	}
	t.pendingSet.columns = mergeSetColumn(t.pendingSet.columns, col)
	return nil
}

// Unset schedules a delete of key. Both pending queues flush unconditionally
// first: a previously queued Set or AtomicInc on the same row must land
// before the delete, and there is no statement shape that merges a delete
// with either kind of pending batch.
func (t *transaction) Unset(key string) error {
	if t.sticky != nil {
		return t.sticky
	}
	if t.state != txOpen {
		return t.fail(pdtypes.ErrTransactionClosed)
	}
	if t.pendingInc != nil {
		if err := t.flushInc(); err != nil {
			return err
		}
	}
	if t.pendingSet != nil {
		if err := t.flushSet(); err != nil {
			return err
		}
	}

	matched, err := FindMap(t.b.maps, key)
	if err != nil {
		return t.fail(fmt.Errorf("dict-sql: invalid/unmapped key %s: %w", key, err))
	}

	d := UnsetStatement{
		Table:        matched.Map.Table,
		PatternKinds: patternKinds(matched.Map),
		PatternCols:  patternCols(matched.Map),
		PatternVals:  matched.Values,
	}
	if IsPrivatePath(key) && matched.Map.UsernameField != "" {
		d.HasUsername = true
		d.UsernameCol = matched.Map.UsernameField
		d.Username = t.op.Username
	}

	query, args, err := BuildDelete(d)
	if err != nil {
		return t.fail(fmt.Errorf("dict-sql: failed to delete %s: %w", key, err))
	}
	if _, err := t.tx.Exec(t.ctx, query, args); err != nil {
		return t.fail(fmt.Errorf("dict-sql: failed to delete %s: %w", key, err))
	}
	return nil
}

// AtomicInc schedules col = col + delta on key's primary value column.
func (t *transaction) AtomicInc(key string, delta int64) error {
	if t.sticky != nil {
		return t.sticky
	}
	if t.state != txOpen {
		return t.fail(pdtypes.ErrTransactionClosed)
	}
	if t.pendingSet != nil {
		if err := t.flushSet(); err != nil {
			return err
		}
	}

	matched, err := FindMap(t.b.maps, key)
	if err != nil {
		return t.fail(fmt.Errorf("sql dict atomic inc: invalid/unmapped key %s: %w", key, err))
	}

	if t.pendingInc != nil {
		mergeable, err := t.mergeable(t.pendingInc.firstKey, t.pendingInc.m, key, matched.Map, matched.Values)
		if err != nil {
			return t.fail(err)
		}
		if !mergeable {
			if err := t.flushInc(); err != nil {
				return err
			}
		}
	}

	col := IncColumn{Column: matched.Map.PrimaryValueColumn(), Delta: delta}

	if t.pendingInc == nil {
		t.pendingInc = &pendingIncBatch{
			firstKey: key,
			m:        matched.Map,
			values:   matched.Values,
			columns:  []IncColumn{col},
		}
		return nil
	}
	t.pendingInc.columns = mergeIncColumn(t.pendingInc.columns, col)
	return nil
}

// mergeable re-derives the first queued entry's bound pattern values by
// re-running FindMap against firstKey, rather than trusting a value array
// captured when it was enqueued, matching sql_dict_maps_are_mergeable's
// re-lookup of prev1->key.
func (t *transaction) mergeable(firstKey string, firstMap *pdtypes.Map, candKey string, candMap *pdtypes.Map, candValues []string) (bool, error) {
	if firstMap.Table != candMap.Table {
		return false, nil
	}
	if IsPrivatePath(firstKey) != IsPrivatePath(candKey) {
		return false, nil
	}
	if IsPrivatePath(firstKey) && firstMap.UsernameField != candMap.UsernameField {
		return false, nil
	}

	firstMatched, err := FindMap(t.b.maps, firstKey)
	if err != nil {
		return false, err
	}
	if len(firstMatched.Values) != len(candValues) {
		return false, nil
	}
	for i := range firstMatched.Values {
		if firstMatched.Values[i] != candValues[i] {
			return false, nil
		}
	}
	return true, nil
}

func (t *transaction) flushSet() error {
	p := t.pendingSet
	t.pendingSet = nil
	if p == nil {
		return nil
	}

	batch := SetBatch{
		Table:        p.m.Table,
		Columns:      p.columns,
		PatternCols:  patternCols(p.m),
		PatternKinds: patternKinds(p.m),
		PatternVals:  p.values,
	}
	if IsPrivatePath(p.firstKey) && p.m.UsernameField != "" {
		batch.HasUsername = true
		batch.UsernameCol = p.m.UsernameField
		batch.Username = t.op.Username
	}
	if p.m.HasExpire() && t.op.ExpireSecs > 0 {
		batch.HasExpire = true
		batch.ExpireCol = p.m.ExpireField
		batch.ExpireAt = t.op.EffectiveTimestamp().Unix() + t.op.ExpireSecs
	}

	query, args, err := BuildUpsert(batch, t.b.driver.Flags())
	if err != nil {
		return t.fail(fmt.Errorf("dict-sql: failed to set %d fields (first %s): %w", len(p.columns), p.firstKey, err))
	}
	if _, err := t.tx.Exec(t.ctx, query, args); err != nil {
		return t.fail(fmt.Errorf("dict-sql: failed to set %d fields (first %s): %w", len(p.columns), p.firstKey, err))
	}
	return nil
}

func (t *transaction) flushInc() error {
	p := t.pendingInc
	t.pendingInc = nil
	if p == nil {
		return nil
	}

	batch := IncBatch{
		Table:        p.m.Table,
		Columns:      p.columns,
		PatternCols:  patternCols(p.m),
		PatternKinds: patternKinds(p.m),
		PatternVals:  p.values,
	}
	if IsPrivatePath(p.firstKey) && p.m.UsernameField != "" {
		batch.HasUsername = true
		batch.UsernameCol = p.m.UsernameField
		batch.Username = t.op.Username
	}

	query, args, err := BuildIncUpdate(batch)
	if err != nil {
		return t.fail(fmt.Errorf("dict-sql: failed to increase %d fields (first %s): %w", len(p.columns), p.firstKey, err))
	}
	affected, err := t.tx.Exec(t.ctx, query, args)
	if err != nil {
		return t.fail(fmt.Errorf("dict-sql: failed to increase %d fields (first %s): %w", len(p.columns), p.firstKey, err))
	}
	if affected == 0 {
		t.incMissed = true
	}
	return nil
}

// Commit flushes any pending batch and commits the underlying driver
// transaction. An increment batch that affected zero rows downgrades an
// otherwise successful commit to CommitNotFound, matching the row count
// sql_update_stmt_get_rows reports back to dict_transaction_commit.
func (t *transaction) Commit(ctx context.Context) (pdtypes.CommitResult, error) {
	if t.state != txOpen {
		return pdtypes.CommitFailed, pdtypes.ErrTransactionClosed
	}
	if t.sticky != nil {
		t.tx.Rollback()
		t.state = txRolledBack
		return pdtypes.CommitFailed, t.sticky
	}

	if err := t.flushInc(); err != nil {
		t.tx.Rollback()
		t.state = txRolledBack
		return pdtypes.CommitFailed, err
	}
	if err := t.flushSet(); err != nil {
		t.tx.Rollback()
		t.state = txRolledBack
		return pdtypes.CommitFailed, err
	}

	if err := t.tx.Commit(); err != nil {
		t.state = txRolledBack
		return pdtypes.CommitWriteUncertain, err
	}
	t.state = txCommitted

	if t.incMissed {
		return pdtypes.CommitNotFound, nil
	}
	return pdtypes.CommitOK, nil
}

// CommitAsync runs Commit on a spawned goroutine and invokes cb exactly
// once with the result.
func (t *transaction) CommitAsync(ctx context.Context, cb func(pdtypes.CommitResult, error)) {
	t.b.runAsync(func() {
		result, err := t.Commit(ctx)
		cb(result, err)
	})
}

// Rollback aborts the transaction, discarding unflushed queues. Calling it
// a second time is a no-op; calling it after Commit returns
// ErrTransactionClosed.
func (t *transaction) Rollback() error {
	if t.state == txRolledBack {
		return nil
	}
	if t.state == txCommitted {
		return pdtypes.ErrTransactionClosed
	}
	t.pendingSet = nil
	t.pendingInc = nil
	t.state = txRolledBack
	return t.tx.Rollback()
}

var _ pdtypes.Transaction = (*transaction)(nil)

func patternCols(m *pdtypes.Map) []string {
	cols := make([]string, len(m.PatternFields))
	for i, pf := range m.PatternFields {
		cols[i] = pf.Column
	}
	return cols
}

func patternKinds(m *pdtypes.Map) []pdtypes.ValueKind {
	kinds := make([]pdtypes.ValueKind, len(m.PatternFields))
	for i, pf := range m.PatternFields {
		kinds[i] = pf.Kind
	}
	return kinds
}
