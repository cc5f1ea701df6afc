package sqlengine

import (
	"fmt"
	"strings"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// SetColumn is one merged value-column binding inside a Set batch. When
// two queued Set operations in the same mergeable batch target the same
// column, the batcher keeps only the later value (last write wins within
// the batch), so Columns never repeats a column name.
type SetColumn struct {
	Column string
	Kind   pdtypes.ValueKind
	Value  string
}

// SetBatch is everything needed to build one multi-column UPSERT from a
// flushed run of mergeable Set operations: they all share table, pattern
// values, and username scope (that is what "mergeable" means).
type SetBatch struct {
	Table        string
	PatternCols  []string
	PatternVals  []string
	PatternKinds []pdtypes.ValueKind
	UsernameCol  string
	Username     string
	HasUsername  bool
	ExpireCol    string
	ExpireAt     int64
	HasExpire    bool
	Columns      []SetColumn
}

// BuildUpsert builds the INSERT statement for a Set batch, appending an
// UPSERT clause that matches the driver's reported capability flags: an
// INSERT ... ON DUPLICATE KEY UPDATE, an INSERT ... ON CONFLICT ... DO
// UPDATE SET, or a bare INSERT if the driver supports neither (in which
// case the caller's schema must forbid the duplicate key itself). Pattern
// columns are never listed in the UPDATE clause; they are the conflict
// key and are bound once, for the INSERT values. For UPSERT dialects the
// value columns (and the expire column, when set) are bound a second time
// for the UPDATE clause.
func BuildUpsert(b SetBatch, flags pdtypes.DriverFlags) (string, []any, error) {
	var insertCols []string
	var insertArgs []any

	for _, c := range b.Columns {
		v, err := EncodeValue(c.Kind, c.Value, "")
		if err != nil {
			return "", nil, err
		}
		insertCols = append(insertCols, c.Column)
		insertArgs = append(insertArgs, v)
	}
	if b.HasUsername {
		insertCols = append(insertCols, b.UsernameCol)
		insertArgs = append(insertArgs, b.Username)
	}
	if b.HasExpire {
		insertCols = append(insertCols, b.ExpireCol)
		insertArgs = append(insertArgs, b.ExpireAt)
	}
	for i, col := range b.PatternCols {
		v, err := EncodeValue(b.PatternKinds[i], b.PatternVals[i], "")
		if err != nil {
			return "", nil, err
		}
		insertCols = append(insertCols, col)
		insertArgs = append(insertArgs, v)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(insertArgs)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", b.Table, strings.Join(insertCols, ", "), placeholders)

	switch {
	case flags.Has(pdtypes.FlagOnDuplicateKey):
		setSQL, setArgs, err := buildUpdateSet(b)
		if err != nil {
			return "", nil, err
		}
		query += " ON DUPLICATE KEY UPDATE " + setSQL
		return query, append(insertArgs, setArgs...), nil

	case flags.Has(pdtypes.FlagOnConflictDo):
		conflictCols := append([]string{}, b.PatternCols...)
		if b.HasUsername {
			conflictCols = append(conflictCols, b.UsernameCol)
		}
		setSQL, setArgs, err := buildUpdateSet(b)
		if err != nil {
			return "", nil, err
		}
		query += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(conflictCols, ", "), setSQL)
		return query, append(insertArgs, setArgs...), nil

	default:
		return query, insertArgs, nil
	}
}

// mergeSetColumn folds next into columns: if a column of the same name is
// already queued, its value is replaced (last write wins within a batch);
// otherwise next is appended, preserving first-occurrence order.
func mergeSetColumn(columns []SetColumn, next SetColumn) []SetColumn {
	for i := range columns {
		if columns[i].Column == next.Column {
			columns[i].Value = next.Value
			columns[i].Kind = next.Kind
			return columns
		}
	}
	return append(columns, next)
}

// mergeIncColumn folds next into columns: if a column of the same name is
// already queued, the deltas are summed; otherwise next is appended.
func mergeIncColumn(columns []IncColumn, next IncColumn) []IncColumn {
	for i := range columns {
		if columns[i].Column == next.Column {
			columns[i].Delta += next.Delta
			return columns
		}
	}
	return append(columns, next)
}

// buildUpdateSet builds the UPDATE SET clause shared by both UPSERT
// dialects: every value column, plus the expire column if the map has one.
// Pattern columns and the username column are never reassigned, matching
// sql_dict_set_query's "pattern_values don't need to be updated here,
// because they are expected to be part of the row's primary key".
func buildUpdateSet(b SetBatch) (string, []any, error) {
	var parts []string
	var args []any
	for _, c := range b.Columns {
		v, err := EncodeValue(c.Kind, c.Value, "")
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, c.Column+" = ?")
		args = append(args, v)
	}
	if b.HasExpire {
		parts = append(parts, b.ExpireCol+" = ?")
		args = append(args, b.ExpireAt)
	}
	return strings.Join(parts, ", "), args, nil
}

// IncColumn is one merged delta inside an AtomicInc batch. Two queued
// increments on the same column within a mergeable batch are summed,
// since addition is commutative and this avoids discarding either delta.
type IncColumn struct {
	Column string
	Delta  int64
}

// IncBatch is everything needed to build the single UPDATE statement for a
// flushed run of mergeable AtomicInc operations.
type IncBatch struct {
	Table        string
	PatternCols  []string
	PatternVals  []string
	PatternKinds []pdtypes.ValueKind
	UsernameCol  string
	Username     string
	HasUsername  bool
	Columns      []IncColumn
}

// BuildIncUpdate builds "UPDATE T SET col = col + ?, ... WHERE ...".
func BuildIncUpdate(b IncBatch) (string, []any, error) {
	var setParts []string
	var args []any
	for _, c := range b.Columns {
		setParts = append(setParts, fmt.Sprintf("%s = %s + ?", c.Column, c.Column))
		args = append(args, c.Delta)
	}

	whereSQL, whereArgs, err := equalityWhere(b.PatternCols, b.PatternVals, b.PatternKinds, b.UsernameCol, b.Username, b.HasUsername)
	if err != nil {
		return "", nil, err
	}
	args = append(args, whereArgs...)

	query := fmt.Sprintf("UPDATE %s SET %s", b.Table, strings.Join(setParts, ", "))
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}
	return query, args, nil
}

// UnsetStatement is everything needed to build the DELETE for Unset.
type UnsetStatement struct {
	Table        string
	PatternCols  []string
	PatternVals  []string
	PatternKinds []pdtypes.ValueKind
	UsernameCol  string
	Username     string
	HasUsername  bool
}

// BuildDelete builds "DELETE FROM T WHERE ...".
func BuildDelete(d UnsetStatement) (string, []any, error) {
	whereSQL, args, err := equalityWhere(d.PatternCols, d.PatternVals, d.PatternKinds, d.UsernameCol, d.Username, d.HasUsername)
	if err != nil {
		return "", nil, err
	}
	query := fmt.Sprintf("DELETE FROM %s", d.Table)
	if whereSQL != "" {
		query += " WHERE " + whereSQL
	}
	return query, args, nil
}

// BuildExpireDelete builds "DELETE FROM T WHERE expireCol <= ?".
func BuildExpireDelete(table, expireCol string, now int64) (string, []any) {
	return fmt.Sprintf("DELETE FROM %s WHERE %s <= ?", table, expireCol), []any{now}
}

func equalityWhere(cols, vals []string, kinds []pdtypes.ValueKind, usernameCol, username string, hasUsername bool) (string, []any, error) {
	var parts []string
	var args []any
	for i, col := range cols {
		v, err := EncodeValue(kinds[i], vals[i], "")
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, col+" = ?")
		args = append(args, v)
	}
	if hasUsername {
		parts = append(parts, usernameCol+" = ?")
		args = append(args, username)
	}
	return strings.Join(parts, " AND "), args, nil
}
