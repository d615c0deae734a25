package sqlutil

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// Helper functions for converting between Go types and sql.Null* types

// ToNullFloat64 converts a Go float pointer to sql.NullFloat64
func ToNullFloat64(val *float64) sql.NullFloat64 {
	if val == nil {
		return sql.NullFloat64{Valid: false}
	}
	return sql.NullFloat64{Float64: *val, Valid: true}
}

// FromNullFloat64 converts sql.NullFloat64 to a Go float pointer
func FromNullFloat64(val sql.NullFloat64) *float64 {
	if !val.Valid {
		return nil
	}
	f := val.Float64
	return &f
}

// ToSqlString converts a Go string to sql.NullString, treating "" as NULL
func ToSqlString(val string) sql.NullString {
	if val == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: val, Valid: true}
}

// FromSqlString converts sql.NullString to Go string with default
func FromSqlString(val sql.NullString, defaultVal string) string {
	if !val.Valid {
		return defaultVal
	}
	return val.String
}

// ToNullUUID converts a Go UUID pointer to uuid.NullUUID
func ToNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{Valid: false}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

// FromNullUUID converts uuid.NullUUID to Go UUID pointer
func FromNullUUID(val uuid.NullUUID) *uuid.UUID {
	if !val.Valid {
		return nil
	}
	id := val.UUID
	return &id
}

// ToSqlTime converts a Go time pointer to sql.NullTime
func ToSqlTime(val *time.Time) sql.NullTime {
	if val == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *val, Valid: true}
}

// FromSqlTime converts sql.NullTime to Go time pointer
func FromSqlTime(val sql.NullTime) *time.Time {
	if !val.Valid {
		return nil
	}
	t := val.Time
	return &t
}

// ToNullJSON marshals v into a nullable JSONB value. A nil pointer, map or
// slice becomes NULL.
func ToNullJSON(v any) (pqtype.NullRawMessage, error) {
	if isNil(v) {
		return pqtype.NullRawMessage{Valid: false}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return pqtype.NullRawMessage{}, fmt.Errorf("failed to marshal json column: %w", err)
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

// FromNullJSON unmarshals a nullable JSONB value into dst. It reports
// whether a value was present.
func FromNullJSON(val pqtype.NullRawMessage, dst any) (bool, error) {
	if !val.Valid || len(val.RawMessage) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(val.RawMessage, dst); err != nil {
		return false, fmt.Errorf("failed to unmarshal json column: %w", err)
	}
	return true, nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch t := v.(type) {
	case json.RawMessage:
		return len(t) == 0
	}
	raw, err := json.Marshal(v)
	return err == nil && string(raw) == "null"
}
