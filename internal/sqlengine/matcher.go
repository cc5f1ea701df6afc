package sqlengine

import "strings"

// MatchResult is the outcome of matching a pattern against a path.
type MatchResult struct {
	// Matched reports whether the pattern accepts the path (in Exact mode)
	// or the path's prefix (in Partial mode).
	Matched bool

	// Values holds one bound string per '$' consumed, in pattern order.
	Values []string

	// PatLen is the number of pattern bytes consumed.
	PatLen int

	// PathLen is the number of path bytes consumed.
	PathLen int

	// PathContinuedPastPattern is true when the pattern was exhausted by
	// literal characters alone (no trailing '$') while path still had
	// remaining segments: the path binds more segments than the pattern
	// declares.
	PathContinuedPastPattern bool
}

// Match walks pattern and path jointly. On a literal it requires character
// equality; on '$' it consumes the path up to the next '/' (or to the end
// of the path if the pattern ends with '$'). In Exact mode, matching only
// succeeds if pattern and path are exhausted together. In Partial mode, a
// prefix match succeeds either when the pattern is left at a '/' boundary
// (letting the caller resolve the rest inside the final unbound segment) or,
// with recurse false, when at most one '$' remains in the unconsumed
// pattern tail with no intervening '/'.
//
// Partial mode also trims a trailing '/' from the final bound value: the
// last '$' of a pattern used for iteration never matches a path segment in
// full, since the caller is enumerating children of that position.
func Match(pattern, path string, partialOK, recurse bool) MatchResult {
	var values []string
	pat, p := pattern, path

	for len(pat) > 0 && len(p) > 0 {
		if pat[0] == '$' {
			pat = pat[1:]
			if len(pat) == 0 {
				// Pattern ends with this variable; it matches the rest
				// of the path.
				if partialOK {
					if p[len(p)-1] == '/' {
						values = append(values, p[:len(p)-1])
					} else {
						values = append(values, p)
					}
				} else {
					values = append(values, p)
					p = p[len(p):]
				}
				return MatchResult{
					Matched: true,
					Values:  values,
					PatLen:  len(pattern) - len(pat),
					PathLen: len(path) - len(p),
				}
			}

			if idx := strings.IndexByte(p, '/'); idx >= 0 {
				values = append(values, p[:idx])
				p = p[idx:]
			} else {
				values = append(values, p)
				p = p[len(p):]
			}
			continue
		}

		if pat[0] != p[0] {
			return MatchResult{Matched: false}
		}
		pat = pat[1:]
		p = p[1:]
	}

	patLen := len(pattern) - len(pat)
	pathLen := len(path) - len(p)

	if len(pat) == 0 {
		if len(p) == 0 {
			return MatchResult{Matched: true, Values: values, PatLen: patLen, PathLen: pathLen}
		}
		return MatchResult{Matched: false, PatLen: patLen, PathLen: pathLen, PathContinuedPastPattern: true}
	}
	if !partialOK {
		return MatchResult{Matched: false}
	}

	// Partial matches must end at a '/' boundary.
	if len(pattern[:patLen]) > 0 && pattern[patLen-1] != '/' {
		return MatchResult{Matched: false}
	}
	if recurse {
		return MatchResult{Matched: true, Values: values, PatLen: patLen, PathLen: pathLen}
	}
	// Not recursing: at most one '$' may remain, with no further '/'.
	tail := pattern[patLen:]
	matched := len(tail) > 0 && tail[0] == '$' && !strings.Contains(tail, "/")
	return MatchResult{Matched: matched, Values: values, PatLen: patLen, PathLen: pathLen}
}

// Substitute rebuilds a path from pattern by replacing each '$' with the
// next entry of values, in order. len(values) must equal the number of
// '$' in pattern.
func Substitute(pattern string, values []string) string {
	var b strings.Builder
	vi := 0
	for i := 0; i < len(pattern); i++ {
		if pattern[i] == '$' {
			b.WriteString(values[vi])
			vi++
			continue
		}
		b.WriteByte(pattern[i])
	}
	return b.String()
}
