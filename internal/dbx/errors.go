package dbx

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// UniqueViolation reports whether err was caused by a unique constraint.
// The returned detail names the violated constraint: the constraint name for
// PostgreSQL, the "table.column" list for SQLite.
func UniqueViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgUniqueViolation {
			return pgErr.ConstraintName, true
		}
		return "", false
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return sqliteConstraintDetail(sqliteErr.Error()), true
		}
	}

	msg := err.Error()
	if strings.Contains(strings.ToLower(msg), "unique constraint failed") {
		return sqliteConstraintDetail(msg), true
	}

	return "", false
}

func sqliteConstraintDetail(msg string) string {
	const marker = "constraint failed: "
	i := strings.LastIndex(strings.ToLower(msg), marker)
	if i < 0 {
		return msg
	}
	detail := msg[i+len(marker):]
	if j := strings.Index(detail, " ("); j >= 0 {
		detail = detail[:j]
	}
	return strings.TrimSpace(detail)
}
