package repomanager

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/identity/internal/common"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// sqlitePragmas enables foreign keys, which SQLite leaves off per connection,
// and makes concurrent writers wait for the lock instead of failing.
var sqlitePragmas = []string{"foreign_keys(1)", "busy_timeout(5000)"}

// Open opens the database named by dsn and returns it with a matching
// RepositoryManager. PostgreSQL DSNs ("postgres://", "postgresql://" or
// "host=...") use pgx; "file:", "sqlite:" and ":memory:" use SQLite.
func Open(dsn string) (*sql.DB, RepositoryManager, error) {
	dialect, driver, source, err := parseDSN(dsn)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if dialect == DialectSQLite {
		// one writer at a time; transactions queue on the pool
		db.SetMaxOpenConns(1)
	}

	m, err := NewRepositoryManager(dialect)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, m, nil
}

func parseDSN(dsn string) (Dialect, string, string, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return "", "", "", fmt.Errorf("%w: empty database DSN", common.ErrInvalidConfig)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		return DialectPostgres, "pgx", dsn, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return DialectSQLite, "sqlite", withSQLitePragmas("file:" + strings.TrimPrefix(strings.TrimPrefix(dsn, "sqlite:"), "//")), nil
	case strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return DialectSQLite, "sqlite", withSQLitePragmas(dsn), nil
	default:
		return "", "", "", fmt.Errorf("%w: unrecognised database DSN", common.ErrInvalidConfig)
	}
}

func withSQLitePragmas(source string) string {
	for _, p := range sqlitePragmas {
		name := p[:strings.Index(p, "(")]
		if strings.Contains(source, "_pragma="+name) {
			continue
		}
		sep := "?"
		if strings.Contains(source, "?") {
			sep = "&"
		}
		source += sep + "_pragma=" + p
	}
	return source
}
