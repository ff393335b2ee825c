package util

import (
	"database/sql"
	"strconv"
	"time"
)

// NullString wraps s in a sql.NullString that is valid only when s is
// non-empty.
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NullTime wraps t in a sql.NullTime that is valid only when t is
// non-zero.
func NullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// ParseNullInt64 parses a decimal form value into sql.NullInt64. Empty
// or unparseable input yields an invalid NullInt64.
func ParseNullInt64(s string) sql.NullInt64 {
	if s == "" {
		return sql.NullInt64{}
	}
	if val, err := strconv.ParseInt(s, 10, 64); err == nil {
		return sql.NullInt64{Int64: val, Valid: true}
	}
	return sql.NullInt64{}
}
