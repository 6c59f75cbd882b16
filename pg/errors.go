package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/code19m/errx"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error code for unique constraint violations.
const uniqueViolationCode = "23505"

// IsConflict reports whether err is a PostgreSQL unique constraint violation.
func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return false
}

// IsNoRows reports whether err indicates that no rows were found.
func IsNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// ConstraintName extracts the violated constraint name from a PostgreSQL
// error, or returns an empty string for other errors.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// ErrorDetails collects diagnostic fields from a PostgreSQL error and the
// failed query for inclusion in errx details.
func ErrorDetails(err error, query fmt.Stringer) errx.D {
	details := make(errx.D)
	if queryStr := safeQueryString(query); queryStr != "" {
		details["query"] = strings.ReplaceAll(queryStr, `"`, ``)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return details
	}

	details["pg.code"] = pgErr.Code
	details["pg.message"] = pgErr.Message
	details["pg.detail"] = pgErr.Detail
	details["pg.table"] = pgErr.TableName
	details["pg.column"] = pgErr.ColumnName
	details["pg.constraint"] = pgErr.ConstraintName

	return details
}

// safeQueryString converts a query to a string, recovering from the panics
// some bun query types raise in String() when the query is incomplete.
func safeQueryString(query fmt.Stringer) (s string) {
	defer func() {
		_ = recover()
	}()

	if query == nil {
		return ""
	}
	return query.String()
}
