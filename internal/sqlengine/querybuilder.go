package sqlengine

import (
	"fmt"
	"strings"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// whereClause builds the WHERE predicate (without the leading "WHERE"
// keyword) for a query against map using the given bound pattern values
// under the given recursion mode. It returns ("", nil, nil) when the
// predicate is empty ("select everything").
//
// Iterating on a path that already binds every pattern field is invalid:
// there is nothing left to enumerate past the matched pattern.
func whereClause(m *pdtypes.Map, values []string, recurse pdtypes.RecurseMode, username string, addUsername bool) (string, []any, error) {
	count := len(m.PatternFields)
	count2 := len(values)

	exactCount := count2
	if count == count2 && recurse != pdtypes.RecurseNone {
		return "", nil, fmt.Errorf("%w %s", pdtypes.ErrKeyContinuesPastMap, m.Pattern)
	}

	var parts []string
	var args []any

	for i := 0; i < exactCount; i++ {
		field := m.PatternFields[i]
		v, err := EncodeValue(field.Kind, values[i], "")
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, field.Column+" = ?")
		args = append(args, v)
	}

	i := exactCount
	switch recurse {
	case pdtypes.RecurseNone:
		// No further constraint.

	case pdtypes.RecurseOne:
		field := m.PatternFields[i]
		if i < count2 {
			v1, err := EncodeValue(field.Kind, values[i], "/%")
			if err != nil {
				return "", nil, err
			}
			v2, err := EncodeValue(field.Kind, values[i], "/%/%")
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, field.Column+" LIKE ?")
			args = append(args, v1)
			parts = append(parts, field.Column+" NOT LIKE ?")
			args = append(args, v2)
		} else {
			parts = append(parts, field.Column+" LIKE '%'")
			parts = append(parts, field.Column+" NOT LIKE '%/%'")
		}

	case pdtypes.RecurseFull:
		if i < count2 {
			field := m.PatternFields[i]
			v, err := EncodeValue(field.Kind, values[i], "/%")
			if err != nil {
				return "", nil, err
			}
			parts = append(parts, field.Column+" LIKE ?")
			args = append(args, v)
		}
	}

	if addUsername {
		parts = append(parts, m.UsernameField+" = ?")
		args = append(args, username)
	}

	if len(parts) == 0 {
		return "", nil, nil
	}
	return strings.Join(parts, " AND "), args, nil
}

// SelectQuery is a built SELECT statement ready to hand to a SQLDriver.
type SelectQuery struct {
	SQL  string
	Args []any
	// Columns lists the projected columns in order: optional expire
	// column first, then value columns (unless NoValue), then unbound
	// pattern columns (iteration only).
	Columns []string
}

// BuildLookupQuery builds the exact-match SELECT used by Lookup:
// SELECT [expire,] value_cols FROM table WHERE pattern cols = ? ...
func BuildLookupQuery(m *pdtypes.Map, values []string, op pdtypes.OpSettings, path string) (SelectQuery, error) {
	var cols []string
	if m.HasExpire() {
		cols = append(cols, m.ExpireField)
	}
	cols = append(cols, m.ValueColumns...)

	where, args, err := whereClause(m, values, pdtypes.RecurseNone, op.Username, IsPrivatePath(path) && m.UsernameField != "")
	if err != nil {
		return SelectQuery{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), m.Table)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	return SelectQuery{SQL: b.String(), Args: args, Columns: cols}, nil
}

// BuildIterateQuery builds the SELECT used by the iteration engine for one
// candidate map: projected columns are the optional expire column, the
// value columns (unless NoValue is set), then every pattern column at or
// past the unbound position so the engine can reconstruct the full key.
func BuildIterateQuery(cand IterCandidate, op pdtypes.OpSettings, recurse pdtypes.RecurseMode, flags pdtypes.IterateFlags, alreadyReturned int) (SelectQuery, error) {
	m := cand.Map
	var cols []string
	if m.HasExpire() {
		cols = append(cols, m.ExpireField)
	}
	if !flags.Has(pdtypes.IterFlagNoValue) {
		cols = append(cols, m.ValueColumns...)
	}

	unboundStart := len(cand.Values)
	var unboundCols []string
	for i := unboundStart; i < len(m.PatternFields); i++ {
		unboundCols = append(unboundCols, m.PatternFields[i].Column)
	}
	cols = append(cols, unboundCols...)

	where, args, err := whereClause(m, cand.Values, recurse, op.Username, IsPrivatePath(m.Pattern) && m.UsernameField != "")
	if err != nil {
		return SelectQuery{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), m.Table)
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	switch {
	case flags.Has(pdtypes.IterFlagSortByValue):
		b.WriteString(" ORDER BY " + m.PrimaryValueColumn())
	case flags.Has(pdtypes.IterFlagSortByKey):
		var keyCols []string
		for _, f := range m.PatternFields {
			keyCols = append(keyCols, f.Column)
		}
		b.WriteString(" ORDER BY " + strings.Join(keyCols, ", "))
	}

	if op.MaxRows > 0 {
		remaining := op.MaxRows - alreadyReturned
		if remaining < 0 {
			remaining = 0
		}
		fmt.Fprintf(&b, " LIMIT %d", remaining)
	}

	return SelectQuery{SQL: b.String(), Args: args, Columns: cols}, nil
}
