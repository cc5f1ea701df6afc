package sqlengine

import (
	"context"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// iterator implements pdtypes.Iterator. It is not safe for concurrent use:
// all mutation is serialised to the single caller goroutine. It spawns no
// goroutines; IterFlagAsync is not read and iteration is always
// synchronous.
type iterator struct {
	b    *Backend
	op   pdtypes.OpSettings
	path string

	recurse  pdtypes.RecurseMode
	flags    pdtypes.IterateFlags
	exactKey bool

	nextMapIdx   int
	allowNullMap bool
	returned     int

	curRows       pdtypes.RowIterator
	curMap        *pdtypes.Map
	curCols       []string
	curBoundVals  []string
	exactKeyDone  bool

	curKey    string
	curValues []string

	err    error
	closed bool
}

// IterateInit begins a streaming iteration over path. The query for the
// first candidate map is issued lazily, on the first call to Next.
func (b *Backend) IterateInit(ctx context.Context, op pdtypes.OpSettings, path string, flags pdtypes.IterateFlags) (pdtypes.Iterator, error) {
	if err := b.checkAttached(); err != nil {
		return nil, err
	}

	recurse := pdtypes.RecurseOne
	if flags.Has(pdtypes.IterFlagRecurse) {
		recurse = pdtypes.RecurseFull
	}

	return &iterator{
		b:        b,
		op:       op,
		path:     path,
		recurse:  recurse,
		flags:    flags,
		exactKey: flags.Has(pdtypes.IterFlagExactKey),
	}, nil
}

func (it *iterator) Next(ctx context.Context) bool {
	if it.closed || it.err != nil {
		return false
	}

	if it.exactKey {
		return it.nextExactKey(ctx)
	}

	for {
		if it.curRows == nil {
			if !it.advanceMap(ctx) {
				return false
			}
			continue
		}

		got, err := it.nextRowFromCurrentMap()
		if err != nil {
			it.err = err
			return false
		}
		if got {
			return true
		}

		it.curRows.Close()
		it.curRows = nil
	}
}

// nextExactKey behaves as a single lookup that yields one row and never
// chains to the next map.
func (it *iterator) nextExactKey(ctx context.Context) bool {
	if it.exactKeyDone {
		return false
	}
	it.exactKeyDone = true

	result := it.b.Lookup(ctx, it.op, it.path)
	switch result.Outcome {
	case pdtypes.LookupFound:
		it.curKey = it.path
		it.curValues = result.Values
		return true
	case pdtypes.LookupNotFound:
		return false
	default:
		it.err = result.Err
		return false
	}
}

// advanceMap finds the next candidate map starting from nextMapIdx and
// issues its SELECT. It returns false (terminating iteration) when no
// further map matches: an error unless at least one row has already been
// produced (allowNullMap).
func (it *iterator) advanceMap(ctx context.Context) bool {
	cand, ok := FindNextIterMap(it.b.maps, it.nextMapIdx, it.path, it.recurse == pdtypes.RecurseFull)
	if !ok {
		if !it.allowNullMap {
			it.err = pdtypes.ErrNoMapMatches
		}
		return false
	}
	it.nextMapIdx = cand.Index + 1

	q, err := BuildIterateQuery(cand, it.op, it.recurse, it.flags, it.returned)
	if err != nil {
		it.err = err
		return false
	}

	rows, err := it.b.driver.Query(ctx, q.SQL, q.Args)
	if err != nil {
		it.err = err
		return false
	}

	it.curRows = rows
	it.curMap = cand.Map
	it.curCols = q.Columns
	it.curBoundVals = cand.Values
	return true
}

// nextRowFromCurrentMap scans forward through the current map's result
// set, skipping expired rows, and stops at the first live row.
func (it *iterator) nextRowFromCurrentMap() (bool, error) {
	now := currentNow()
	noValue := it.flags.Has(pdtypes.IterFlagNoValue)

	for it.curRows.Next() {
		raw, err := scanRawRow(it.curRows, len(it.curCols))
		if err != nil {
			return false, err
		}

		idx := 0
		if it.curMap.HasExpire() {
			idx = 1
			if v, ok := asInt64(raw[0]); ok && v <= now {
				continue
			}
		}

		var valueVals []string
		if !noValue {
			valueVals = make([]string, len(it.curMap.ValueColumns))
			for i, kind := range it.curMap.ValueKinds {
				d, err := DecodeValue(kind, raw[idx+i])
				if err != nil {
					return false, err
				}
				valueVals[i] = d
			}
			idx += len(it.curMap.ValueColumns)
		}

		numUnbound := len(it.curCols) - idx
		boundCount := len(it.curMap.PatternFields) - numUnbound
		fullValues := make([]string, 0, len(it.curMap.PatternFields))
		fullValues = append(fullValues, it.curBoundVals...)
		for i := 0; i < numUnbound; i++ {
			kind := it.curMap.PatternFields[boundCount+i].Kind
			d, err := DecodeValue(kind, raw[idx+i])
			if err != nil {
				return false, err
			}
			fullValues = append(fullValues, d)
		}

		it.curKey = Substitute(it.curMap.Pattern, fullValues)
		it.curValues = valueVals
		it.allowNullMap = true
		it.returned++
		return true, nil
	}
	return false, it.curRows.Err()
}

func (it *iterator) Key() string      { return it.curKey }
func (it *iterator) Values() []string { return it.curValues }
func (it *iterator) Err() error       { return it.err }

// Close releases the iterator's driver cursor. Idempotent; returns the
// final sticky error, if any, as iterate_deinit does.
func (it *iterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	if it.curRows != nil {
		it.curRows.Close()
		it.curRows = nil
	}
	return it.err
}

var _ pdtypes.Iterator = (*iterator)(nil)
