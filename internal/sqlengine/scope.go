package sqlengine

import "strings"

// Path scope prefixes. The first path segment selects whether the
// operation's username is bound into queries against a map's
// UsernameField.
const (
	ScopePrivatePrefix = "priv/"
	ScopeSharedPrefix  = "shared/"
)

// IsPrivatePath reports whether path addresses the private (per-user)
// scope.
func IsPrivatePath(path string) bool {
	return strings.HasPrefix(path, ScopePrivatePrefix)
}
