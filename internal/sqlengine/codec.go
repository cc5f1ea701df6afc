// Package sqlengine implements the pattern matcher, value codec, query
// builder, lookup/iteration engines, transaction batcher, and expiry scan
// that make up the core of a pathdict.Dict.
package sqlengine

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/latticedb/pathdict/pkg/pdtypes"
)

// EncodeValue converts a decoded path-segment string into the SQL parameter
// value bound for a column of the given kind. suffix, when non-empty, is
// used by the query builder to build LIKE-pattern prefixes ("/%", "/%/%")
// for STRING and HEXBLOB columns; every other kind rejects a non-empty
// suffix since LIKE prefix matching on a fixed-width numeric or UUID column
// is not meaningful.
func EncodeValue(kind pdtypes.ValueKind, text, suffix string) (any, error) {
	switch kind {
	case pdtypes.KindString:
		return text + suffix, nil

	case pdtypes.KindInt64:
		if suffix != "" {
			return nil, fmt.Errorf("%w: int64 column does not support LIKE suffixes", pdtypes.ErrTypeError)
		}
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a valid int64", pdtypes.ErrTypeError, text)
		}
		return v, nil

	case pdtypes.KindUint64:
		if suffix != "" {
			return nil, fmt.Errorf("%w: uint64 column does not support LIKE suffixes", pdtypes.ErrTypeError)
		}
		if strings.HasPrefix(text, "-") {
			return nil, fmt.Errorf("%w: uint64 value %q must not have a leading '-'", pdtypes.ErrTypeError, text)
		}
		v, err := strconv.ParseUint(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a valid uint64", pdtypes.ErrTypeError, text)
		}
		return v, nil

	case pdtypes.KindDouble:
		if suffix != "" {
			return nil, fmt.Errorf("%w: double column does not support LIKE suffixes", pdtypes.ErrTypeError)
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a valid double", pdtypes.ErrTypeError, text)
		}
		return v, nil

	case pdtypes.KindUUID:
		if suffix != "" {
			return nil, fmt.Errorf("%w: uuid column does not support LIKE suffixes", pdtypes.ErrTypeError)
		}
		id, err := uuid.Parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not a valid uuid", pdtypes.ErrTypeError, text)
		}
		raw, err := id.MarshalBinary()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", pdtypes.ErrTypeError, err)
		}
		return raw, nil

	case pdtypes.KindHexBlob:
		if len(text)%2 != 0 {
			return nil, fmt.Errorf("%w: %s", pdtypes.ErrEmptyHexBlob, text)
		}
		raw, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("%w: %s is not valid hex", pdtypes.ErrTypeError, text)
		}
		if suffix != "" {
			raw = append(raw, []byte(suffix)...)
		}
		return raw, nil

	default:
		return nil, pdtypes.ErrUnsupportedValueKind
	}
}

// DecodeValue converts a raw column value read back from the driver into
// the string form callers see. Binary kinds (UUID, HEXBLOB) are rendered
// as lowercase hex text; UUID additionally canonicalizes to the standard
// 8-4-4-4-12 grouping regardless of how the source text was cased.
func DecodeValue(kind pdtypes.ValueKind, raw any) (string, error) {
	if raw == nil {
		return "", nil
	}

	switch kind {
	case pdtypes.KindString:
		return asString(raw), nil

	case pdtypes.KindInt64:
		switch v := raw.(type) {
		case int64:
			return strconv.FormatInt(v, 10), nil
		default:
			return asString(raw), nil
		}

	case pdtypes.KindUint64:
		switch v := raw.(type) {
		case int64:
			return strconv.FormatUint(uint64(v), 10), nil
		case uint64:
			return strconv.FormatUint(v, 10), nil
		default:
			return asString(raw), nil
		}

	case pdtypes.KindDouble:
		switch v := raw.(type) {
		case float64:
			return strconv.FormatFloat(v, 'g', -1, 64), nil
		default:
			return asString(raw), nil
		}

	case pdtypes.KindUUID:
		b, ok := raw.([]byte)
		if !ok {
			return "", fmt.Errorf("%w: uuid column returned non-blob value", pdtypes.ErrTypeError)
		}
		id, err := uuid.FromBytes(b)
		if err != nil {
			return "", fmt.Errorf("%w: %s", pdtypes.ErrTypeError, err)
		}
		return id.String(), nil

	case pdtypes.KindHexBlob:
		b, ok := raw.([]byte)
		if !ok {
			return "", fmt.Errorf("%w: hexblob column returned non-blob value", pdtypes.ErrTypeError)
		}
		return hex.EncodeToString(b), nil

	default:
		return "", pdtypes.ErrUnsupportedValueKind
	}
}

func asString(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
