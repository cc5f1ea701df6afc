package sqlitedriver

import (
	"fmt"
	"strings"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// sqlColumnType returns the SQLite column type affinity for a ValueKind.
// HEXBLOB stores as BLOB; everything else as its natural SQLite affinity
// (SQLite is dynamically typed but affinities still drive comparisons).
func sqlColumnType(k pdtypes.ValueKind) string {
	switch k {
	case pdtypes.KindInt64, pdtypes.KindUint64:
		return "INTEGER"
	case pdtypes.KindDouble:
		return "REAL"
	case pdtypes.KindHexBlob:
		return "BLOB"
	default:
		return "TEXT"
	}
}

// EnsureTable emits and executes a CREATE TABLE IF NOT EXISTS for m,
// declaring a column per pattern field, value field, and the optional
// username/expire columns, with a UNIQUE constraint over the pattern
// columns (plus username, when present) so the UPSERT's ON CONFLICT
// target in statements.go resolves to a real index. This is CLI/test
// convenience scaffolding, not schema management — the core engine never
// infers or migrates schema at query time; this just stands up a
// throwaway database for the CLI and its tests.
func EnsureTable(d *Driver, m pdtypes.Map) error {
	var cols []string
	var uniqueCols []string

	for _, pf := range m.PatternFields {
		cols = append(cols, fmt.Sprintf("%s %s", pf.Column, sqlColumnType(pf.Kind)))
		uniqueCols = append(uniqueCols, pf.Column)
	}
	for i, vc := range m.ValueColumns {
		cols = append(cols, fmt.Sprintf("%s %s", vc, sqlColumnType(m.ValueKinds[i])))
	}
	if m.UsernameField != "" {
		cols = append(cols, fmt.Sprintf("%s TEXT", m.UsernameField))
		uniqueCols = append(uniqueCols, m.UsernameField)
	}
	if m.ExpireField != "" {
		cols = append(cols, fmt.Sprintf("%s INTEGER", m.ExpireField))
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s", m.Table, strings.Join(cols, ", "))
	if len(uniqueCols) > 0 {
		ddl += fmt.Sprintf(", UNIQUE(%s)", strings.Join(uniqueCols, ", "))
	}
	ddl += ")"

	if _, err := d.DB().Exec(ddl); err != nil {
		return fmt.Errorf("create table %s: %w", m.Table, err)
	}
	return nil
}

// EnsureTables runs EnsureTable for every map, used by Attach when a
// fresh database file needs its tables stood up.
func EnsureTables(d *Driver, maps []pdtypes.Map) error {
	for _, m := range maps {
		if err := EnsureTable(d, m); err != nil {
			return err
		}
	}
	return nil
}
