package pdtypes

import "strings"

// ValueKind is one of the six SQL value kinds a pattern field or value
// column may hold.
type ValueKind int

const (
	// KindString stores text verbatim.
	KindString ValueKind = iota
	// KindInt64 stores a signed 64-bit integer.
	KindInt64
	// KindUint64 stores an unsigned 64-bit integer; rejects a leading '-'.
	KindUint64
	// KindDouble stores an IEEE-754 double.
	KindDouble
	// KindUUID stores a canonical 8-4-4-4-12 UUID.
	KindUUID
	// KindHexBlob stores raw bytes as even-length lowercase hex.
	KindHexBlob
)

// String returns the human-readable name of the value kind, used in error
// messages and config files.
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindDouble:
		return "double"
	case KindUUID:
		return "uuid"
	case KindHexBlob:
		return "hexblob"
	default:
		return "unknown"
	}
}

// ParseValueKind maps a config-file string to a ValueKind.
func ParseValueKind(s string) (ValueKind, error) {
	switch strings.ToLower(s) {
	case "string":
		return KindString, nil
	case "int64":
		return KindInt64, nil
	case "uint64":
		return KindUint64, nil
	case "double":
		return KindDouble, nil
	case "uuid":
		return KindUUID, nil
	case "hexblob":
		return KindHexBlob, nil
	default:
		return 0, ErrUnsupportedValueKind
	}
}

// PatternField is a single wildcard position in a Map's pattern: the SQL
// column it binds to and the value kind the column holds.
type PatternField struct {
	Column string
	Kind   ValueKind
}

// Map binds a path pattern to a SQL table, its pattern columns, one or more
// value columns, and optional username/expire columns.
type Map struct {
	// Pattern is the declarative path pattern, e.g. "shared/quota/$/$/limit".
	Pattern string

	// Table is the SQL table name the pattern maps to.
	Table string

	// PatternFields is the ordered list of (column, kind) bound by each '$'
	// in Pattern, in left-to-right order.
	PatternFields []PatternField

	// ValueColumns is the ordered list of result columns; index 0 is the
	// primary value used by Set/AtomicInc.
	ValueColumns []string

	// ValueKinds holds one kind per entry in ValueColumns.
	ValueKinds []ValueKind

	// UsernameField, if non-empty, is the column holding the per-operation
	// username for priv/ paths.
	UsernameField string

	// ExpireField, if non-empty, is an integer-seconds epoch column; a row
	// is invisible once ExpireField <= now.
	ExpireField string
}

// Validate checks that a Map is internally consistent: it has a table, a
// primary value column, and one value kind per value column.
func (m *Map) Validate() error {
	if m.Table == "" {
		return ErrMapMissingTable
	}
	if len(m.ValueColumns) == 0 {
		return ErrMapMissingValueField
	}
	if len(m.ValueColumns) != len(m.ValueKinds) {
		return ErrMapFieldCountMismatch
	}
	return nil
}

// HasExpire reports whether the map declares a TTL column.
func (m *Map) HasExpire() bool {
	return m.ExpireField != ""
}

// PrimaryValueColumn returns the value column used by Set and AtomicInc.
func (m *Map) PrimaryValueColumn() string {
	return m.ValueColumns[0]
}

// PrimaryValueKind returns the kind of the primary value column.
func (m *Map) PrimaryValueKind() ValueKind {
	return m.ValueKinds[0]
}
