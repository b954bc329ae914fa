package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	// MySQL driver.
	_ "github.com/go-sql-driver/mysql"
	// Postgres driver.
	_ "github.com/lib/pq"
	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Supported dialect names, as accepted by Open.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// Config selects the database backing the store.
type Config struct {
	Dialect string `yaml:"dialect"`
	DSN     string `yaml:"dsn"`
}

// Validate checks the dialect is one Open understands.
func (c Config) Validate() error {
	switch c.Dialect {
	case DialectSQLite, DialectPostgres, DialectMySQL:
	default:
		return fmt.Errorf("unsupported database dialect %q", c.Dialect)
	}
	if c.DSN == "" && c.Dialect != DialectSQLite {
		return fmt.Errorf("database dsn is required for dialect %q", c.Dialect)
	}
	return nil
}

// Store holds the ent SQL driver and provides access to repositories.
type Store struct {
	db      *sql.DB
	drv     *entsql.Driver
	dialect string
}

// Open connects to the database described by cfg, applies dialect
// specific session settings and runs auto-migration.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	driverName, entDialect := driverFor(cfg.Dialect)

	db, err := sql.Open(driverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.Dialect == DialectSQLite {
		// Pragmas are per connection.
		db.SetMaxOpenConns(1)
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	drv := entsql.OpenDB(entDialect, db)

	migrate, err := schema.NewMigrate(drv)
	if err != nil {
		drv.Close()
		return nil, fmt.Errorf("create migrator: %w", err)
	}
	if err := migrate.Create(ctx, Tables...); err != nil {
		drv.Close()
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	return &Store{db: db, drv: drv, dialect: entDialect}, nil
}

// OpenSQLite is a shorthand for opening an embedded SQLite database.
func OpenSQLite(ctx context.Context, dsn string) (*Store, error) {
	return Open(ctx, Config{Dialect: DialectSQLite, DSN: dsn})
}

func driverFor(name string) (driverName, entDialect string) {
	switch name {
	case DialectPostgres:
		return "postgres", dialect.Postgres
	case DialectMySQL:
		return "mysql", dialect.MySQL
	default:
		return "sqlite", dialect.SQLite
	}
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Dialect returns the ent dialect name of the connection.
func (s *Store) Dialect() string {
	return s.dialect
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.drv.Close()
}

// Questions returns the question repository backed by this store.
func (s *Store) Questions() *QuestionRepo {
	return &QuestionRepo{drv: s.drv}
}

// Ratings returns the rating repository backed by this store.
func (s *Store) Ratings() *RatingRepo {
	return &RatingRepo{drv: s.drv}
}

// Events returns the LLM event log backed by this store.
func (s *Store) Events() *EventLog {
	return &EventLog{drv: s.drv}
}

// applyPragmas configures SQLite for a single writer with concurrent readers.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the SQLite database file path in priority order:
// 1. WIKIQUIZ_DB environment variable
// 2. $XDG_DATA_HOME/wikiquiz/wikiquiz.db
// 3. ~/.local/share/wikiquiz/wikiquiz.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("WIKIQUIZ_DB"); p != "" {
		return p, ensureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "wikiquiz", "wikiquiz.db")
	return p, ensureDir(p)
}

// ensureDir creates the parent directory of path if it doesn't exist.
// In-memory and URI-style DSNs are left alone.
func ensureDir(path string) error {
	if strings.HasPrefix(path, "file:") || strings.Contains(path, ":memory:") {
		return nil
	}
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
