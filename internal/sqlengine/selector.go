package sqlengine

import (
	"fmt"
	"strings"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// MatchedMap pairs a selected map with the bound pattern values extracted
// from the path it matched.
type MatchedMap struct {
	Index  int
	Map    *pdtypes.Map
	Values []string
}

// FindMap selects the first map (in declaration order) whose pattern
// exactly matches path. It returns ErrKeyContinuesPastMap if a map's
// pattern is exhausted by literal characters alone while path still has
// trailing segments, and ErrNoMapMatches otherwise.
func FindMap(maps []pdtypes.Map, path string) (MatchedMap, error) {
	var continued *pdtypes.Map
	for i := range maps {
		result := Match(maps[i].Pattern, path, false, false)
		if result.Matched {
			return MatchedMap{Index: i, Map: &maps[i], Values: result.Values}, nil
		}
		if result.PathContinuedPastPattern && continued == nil {
			continued = &maps[i]
		}
	}
	if continued != nil {
		return MatchedMap{}, fmt.Errorf("%w %s", pdtypes.ErrKeyContinuesPastMap, continued.Pattern)
	}
	return MatchedMap{}, pdtypes.ErrNoMapMatches
}

// IterCandidate is a map that partially matched an iteration path, along
// with the bound values and whether its pattern still has an unbound
// segment for the engine to project and enumerate.
type IterCandidate struct {
	Index      int
	Map        *pdtypes.Map
	Values     []string
	PatLen     int
	FullyBound bool
}

// FindNextIterMap scans maps starting at fromIndex for the next one whose
// pattern partially matches path under the given recursion mode. It mirrors
// sql_dict_iterate_find_next_map: candidates that don't match, or that have
// more than one unbound field when recursion is off, are skipped. A
// non-empty path without a trailing '/' is treated as if it had one, so
// "shared/q" and "shared/q/" select the same children.
func FindNextIterMap(maps []pdtypes.Map, fromIndex int, path string, recurse bool) (IterCandidate, bool) {
	if path != "" && !strings.HasSuffix(path, "/") {
		path += "/"
	}
	for i := fromIndex; i < len(maps); i++ {
		result := Match(maps[i].Pattern, path, true, recurse)
		if !result.Matched {
			continue
		}
		fullyBound := len(result.Values) == len(maps[i].PatternFields)
		return IterCandidate{
			Index:      i,
			Map:        &maps[i],
			Values:     result.Values,
			PatLen:     result.PatLen,
			FullyBound: fullyBound,
		}, true
	}
	return IterCandidate{}, false
}
