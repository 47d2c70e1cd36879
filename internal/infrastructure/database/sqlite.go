package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteDriverName = "sqlite"

// SQLiteDB is the local store used when STORE_DRIVER=sqlite.
type SQLiteDB struct {
	DB   *sql.DB
	Path string
}

// OpenSQLite opens (or creates) the database file at path and applies the
// schema. ":memory:" is accepted for throwaway databases.
func OpenSQLite(path string) (*SQLiteDB, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	dsn := cleanPath
	if cleanPath != ":memory:" {
		if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
			return nil, fmt.Errorf("sqlite path %q is a directory, expected file", cleanPath)
		}
		if dir := filepath.Dir(cleanPath); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite directory %q: %w", dir, err)
			}
		}
		dsn = fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)", cleanPath)
	}

	db, err := sql.Open(sqliteDriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", cleanPath, err)
	}
	// Single writer; also keeps ":memory:" on one connection
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite %q: %w", cleanPath, err)
	}
	if err := EnsureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &SQLiteDB{DB: db, Path: cleanPath}, nil
}

func (s *SQLiteDB) HealthCheck(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return fmt.Errorf("sqlite database is not initialized")
	}
	return s.DB.PingContext(ctx)
}

func (s *SQLiteDB) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
