package controller

import (
	"github.com/google/uuid"
	"github.com/rise-and-shine/crud/cruderr"
	"github.com/spf13/cast"
)

// IDParser converts the raw :id path parameter into the entity's identifier
// type. Parsers fail with an INVALID_IDENTIFIER error so malformed
// identifiers render as a 400, not a 500.
type IDParser[ID comparable] func(raw string) (ID, error)

// Int64ID parses numeric identifiers.
func Int64ID(raw string) (int64, error) {
	id, err := cast.ToInt64E(raw)
	if err != nil {
		return 0, cruderr.InvalidIdentifier(raw, err)
	}
	return id, nil
}

// StringID passes the raw path parameter through unchanged.
func StringID(raw string) (string, error) {
	return raw, nil
}

// UUIDID parses UUID identifiers.
func UUIDID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, cruderr.InvalidIdentifier(raw, err)
	}
	return id, nil
}
