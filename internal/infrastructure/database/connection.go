package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Config selects the backing store. URLs with a libsql, https or wss scheme go
// to Turso; anything else is a local SQLite path or file: URI.
type Config struct {
	URL             string
	AuthToken       string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type Database struct {
	Conn     *sql.DB
	UseTurso bool
	url      string
}

// IsRemote reports whether url addresses a libsql server
func IsRemote(url string) bool {
	for _, scheme := range []string{"libsql://", "https://", "wss://", "http://", "ws://"} {
		if strings.HasPrefix(url, scheme) {
			return true
		}
	}
	return false
}

// Open connects to the configured database and verifies it with a ping
func Open(cfg Config) (*Database, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is empty")
	}

	var conn *sql.DB
	var err error
	useTurso := IsRemote(cfg.URL)

	if useTurso {
		connStr := cfg.URL
		if cfg.AuthToken != "" {
			connStr += "?authToken=" + cfg.AuthToken
		}
		conn, err = sql.Open("libsql", connStr)
		if err != nil {
			return nil, fmt.Errorf("turso connection failed: %w", err)
		}
	} else {
		if path := sqlitePath(cfg.URL); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		conn, err = sql.Open("sqlite3", cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if isMemory(cfg.URL) {
		// every connection to :memory: is a separate database
		conn.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			conn.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			conn.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		conn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	return &Database{Conn: conn, UseTurso: useTurso, url: cfg.URL}, nil
}

func (db *Database) Close() error {
	if db.Conn != nil {
		return db.Conn.Close()
	}
	return nil
}

func (db *Database) GetConnectionInfo() string {
	if db.UseTurso {
		return "Turso (libsql)"
	}
	return fmt.Sprintf("SQLite (%s)", db.url)
}

// Stats reports pool statistics for the health endpoint
func (db *Database) Stats() map[string]any {
	stats := db.Conn.Stats()
	return map[string]any{
		"healthy":      db.Conn.Ping() == nil,
		"maxOpen":      stats.MaxOpenConnections,
		"open":         stats.OpenConnections,
		"inUse":        stats.InUse,
		"idle":         stats.Idle,
		"waitCount":    stats.WaitCount,
		"waitDuration": stats.WaitDuration.String(),
	}
}

func isMemory(url string) bool {
	return strings.Contains(url, ":memory:") || strings.Contains(url, "mode=memory")
}

func sqlitePath(url string) string {
	if isMemory(url) {
		return ""
	}
	path := strings.TrimPrefix(url, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return path
}
