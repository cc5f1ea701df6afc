package sqlengine

import (
	"context"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// Lookup performs a synchronous point read: build a RECURSE_NONE SELECT,
// execute it, and advance through rows skipping any whose expire column
// has passed, exactly as sql_dict_result_next_row does it row by row
// rather than filtering in SQL.
func (b *Backend) Lookup(ctx context.Context, op pdtypes.OpSettings, key string) pdtypes.LookupResult {
	if err := b.checkAttached(); err != nil {
		return pdtypes.LookupResult{Outcome: pdtypes.LookupError, Err: err}
	}

	matched, err := FindMap(b.maps, key)
	if err != nil {
		return pdtypes.LookupResult{Outcome: pdtypes.LookupError, Err: err}
	}

	q, err := BuildLookupQuery(matched.Map, matched.Values, op, key)
	if err != nil {
		return pdtypes.LookupResult{Outcome: pdtypes.LookupError, Err: err}
	}

	rows, err := b.driver.Query(ctx, q.SQL, q.Args)
	if err != nil {
		return pdtypes.LookupResult{Outcome: pdtypes.LookupError, Err: err}
	}
	defer rows.Close()

	values, found, err := scanFirstNonExpired(rows, matched.Map, q)
	if err != nil {
		return pdtypes.LookupResult{Outcome: pdtypes.LookupError, Err: err}
	}
	if !found {
		return pdtypes.LookupResult{Outcome: pdtypes.LookupNotFound}
	}
	return pdtypes.LookupResult{Outcome: pdtypes.LookupFound, Values: values}
}

// LookupAsync runs Lookup on a spawned goroutine and invokes cb exactly
// once with the result. A NULL primary value, surfaced as an empty string
// by the synchronous variant, is downgraded to LookupNotFound here,
// matching the original's async/sync asymmetry.
func (b *Backend) LookupAsync(ctx context.Context, op pdtypes.OpSettings, key string, cb func(pdtypes.LookupResult)) {
	b.runAsync(func() {
		result := b.Lookup(ctx, op, key)
		if result.Outcome == pdtypes.LookupFound && len(result.Values) > 0 && result.Values[0] == "" {
			result = pdtypes.LookupResult{Outcome: pdtypes.LookupNotFound}
		}
		cb(result)
	})
}

// scanFirstNonExpired advances rows, decoding each into strings, and
// returns the first row whose expire column (if any) has not passed.
func scanFirstNonExpired(rows pdtypes.RowIterator, m *pdtypes.Map, q SelectQuery) ([]string, bool, error) {
	now := currentNow()
	for rows.Next() {
		raw, err := scanRawRow(rows, len(q.Columns))
		if err != nil {
			return nil, false, err
		}

		col := 0
		if m.HasExpire() {
			expireAt, ok := asInt64(raw[0])
			col = 1
			if ok && expireAt <= now {
				continue
			}
		}

		values := make([]string, len(m.ValueColumns))
		for i, kind := range m.ValueKinds {
			decoded, err := DecodeValue(kind, raw[col+i])
			if err != nil {
				return nil, false, err
			}
			values[i] = decoded
		}
		return values, true, nil
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}

// scanRawRow scans the current row into numCols interface{} slots and
// unwraps them into a plain []any, since RowIterator.Scan expects pointer
// destinations.
func scanRawRow(rows pdtypes.RowIterator, numCols int) ([]any, error) {
	dest := make([]any, numCols)
	for i := range dest {
		dest[i] = new(any)
	}
	if err := rows.Scan(dest); err != nil {
		return nil, err
	}
	raw := make([]any, numCols)
	for i, d := range dest {
		raw[i] = *(d.(*any))
	}
	return raw, nil
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
