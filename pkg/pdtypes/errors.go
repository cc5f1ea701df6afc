package pdtypes

import "errors"

// Key/value validation errors.
var (
	ErrInvalidKey             = errors.New("invalid key")
	ErrKeyContinuesPastMap    = errors.New("key continues past the matched pattern")
	ErrNoMapMatches           = errors.New("no map matches the given path")
	ErrTypeError              = errors.New("value does not match the column type")
	ErrEmptyHexBlob           = errors.New("hex blob must have even length")
	ErrUnsupportedValueKind   = errors.New("unsupported value kind")
	ErrTooManyPatternFields   = errors.New("path binds more segments than the pattern declares")
)

// Lookup/iteration outcomes.
var (
	ErrNotFound = errors.New("not found")
)

// Transaction and commit errors.
var (
	ErrWriteUncertain     = errors.New("write outcome is uncertain")
	ErrTransactionClosed  = errors.New("transaction is already committed or rolled back")
	ErrNothingToMerge     = errors.New("no pending operation to merge with")
	ErrDuplicateBatchKey  = errors.New("same key set twice within one batch")
)

// Dict lifecycle errors.
var (
	ErrAlreadyAttached = errors.New("dict is already attached")
	ErrDetached        = errors.New("dict is not attached")
	ErrIteratorClosed  = errors.New("iterator is already closed")
)

// Configuration errors.
var (
	ErrNoMaps               = errors.New("configuration declares no maps")
	ErrMapMissingTable      = errors.New("map is missing a table name")
	ErrMapMissingValueField = errors.New("map is missing a value field")
	ErrMapFieldCountMismatch = errors.New("value_field columns and value_types have mismatched length")
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
)
