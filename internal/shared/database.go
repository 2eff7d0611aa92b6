package shared

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const memoryDatabase = ":memory:"

// busyTimeout is how long, in milliseconds, a writer waits on a locked upload log.
const busyTimeout = 5000

// NewDatabase opens the local store for saved page sizes and the upload log.
//
// ":memory:" keeps a single connection so migrations and queries share one database.
// File stores wait on locks instead of failing while upload workers record outcomes.
func NewDatabase(path string) (*sql.DB, error) {
	dsn := path
	if path != memoryDatabase {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=%d", path, busyTimeout)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	if path == memoryDatabase {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database %s: %w", path, err)
	}
	return db, nil
}

// ConfigureDatabase applies the [database] pool limits. In-memory stores and
// non-positive limits keep what [NewDatabase] set.
func ConfigureDatabase(db *sql.DB, cfg DatabaseConfig) {
	if cfg.Path == memoryDatabase {
		return
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
}
