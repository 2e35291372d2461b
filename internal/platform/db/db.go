// Package db opens the backing store for the selected backend.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mssqldialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

const (
	// BackendSQLite selects the embedded SQLite database.
	BackendSQLite = "sqlite"
	// BackendSQLServer selects SQL Server.
	BackendSQLServer = "sqlserver"
)

// Options selects and configures the storage backend.
type Options struct {
	Backend       string
	SQLitePath    string
	SQLServerConn string
}

// Open connects to the configured backend and returns a dialect-aware handle.
func Open(ctx context.Context, opts Options) (*bun.DB, error) {
	var bunDB *bun.DB

	switch opts.Backend {
	case BackendSQLite, "":
		path := opts.SQLitePath
		if path == "" {
			path = filepath.Join("data", "carmine.sqlite")
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("platform/db: create data dir: %w", err)
			}
		}
		sqldb, err := sql.Open(sqliteshim.ShimName, path)
		if err != nil {
			return nil, fmt.Errorf("platform/db: open sqlite: %w", err)
		}
		// SQLite serializes writes; a single connection avoids SQLITE_BUSY
		// under concurrent registrations.
		sqldb.SetMaxOpenConns(1)
		bunDB = bun.NewDB(sqldb, sqlitedialect.New())

	case BackendSQLServer:
		if opts.SQLServerConn == "" {
			return nil, errors.New("platform/db: backend is sqlserver but no connection string is configured")
		}
		sqldb, err := sql.Open("sqlserver", opts.SQLServerConn)
		if err != nil {
			return nil, fmt.Errorf("platform/db: open sqlserver: %w", err)
		}
		bunDB = bun.NewDB(sqldb, mssqldialect.New())

	default:
		return nil, fmt.Errorf("platform/db: unknown backend %q", opts.Backend)
	}

	if err := bunDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("platform/db: ping: %w", err)
	}
	return bunDB, nil
}

// IsUniqueViolation reports whether err is a unique-constraint failure on
// either backend. The storage constraint, not the application pre-check, is
// the real guard against racing registrations.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqlServerErr mssql.Error
	if errors.As(err, &sqlServerErr) {
		return sqlServerErr.Number == 2627 || sqlServerErr.Number == 2601
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint")
}
