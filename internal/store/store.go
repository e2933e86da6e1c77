package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/precompute/internal/querysql"
)

//go:embed schema_sqlite.sql
var schemaSQLite string

//go:embed schema_postgres.sql
var schemaPostgres string

// Schema version tracking:
// 1 - Initial schema
// 2 - Added reverse index on refs(target_id, field)
const currentSchemaVersion = 2

// Backend describes how a DSN is opened.
type Backend struct {
	Name    string // "sqlite", "sqlite-pure" or "postgres"
	Driver  string // database/sql driver name; empty for postgres
	Dialect querysql.Dialect
	Target  string // DSN with the scheme prefix removed
}

// ParseDSN picks the backend for a store handle.
func ParseDSN(dsn string) (Backend, error) {
	switch {
	case dsn == "":
		return Backend{}, fmt.Errorf("empty store DSN")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return Backend{Name: "postgres", Dialect: querysql.DialectPostgres, Target: dsn}, nil
	case strings.HasPrefix(dsn, "sqlite-pure:"):
		return Backend{Name: "sqlite-pure", Driver: "sqlite", Dialect: querysql.DialectSQLite,
			Target: strings.TrimPrefix(dsn, "sqlite-pure:")}, nil
	case strings.HasPrefix(dsn, "sqlite:"):
		return Backend{Name: "sqlite", Driver: "sqlite3", Dialect: querysql.DialectSQLite,
			Target: strings.TrimPrefix(dsn, "sqlite:")}, nil
	case strings.Contains(dsn, "://"):
		return Backend{}, fmt.Errorf("unsupported store DSN scheme: %q", dsn)
	default:
		return Backend{Name: "sqlite", Driver: "sqlite3", Dialect: querysql.DialectSQLite, Target: dsn}, nil
	}
}

// Store provides planning-time access to the object store.
type Store struct {
	db       *sql.DB
	backend  Backend
	compiler *querysql.SQLCompiler
	summary  map[string]int64
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithModel sets the class hierarchy used to widen class slots to their
// subclasses. Without it a slot matches its exact class only.
func WithModel(h querysql.Hierarchy) Option {
	return func(s *Store) { s.compiler.Model = h }
}

// WithSummary sets per-class instance counts. A plan touching a class
// recorded with zero instances is estimated at zero without a query.
func WithSummary(counts map[string]int64) Option {
	return func(s *Store) { s.summary = counts }
}

// WithClock overrides the time source for catalog timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open creates or opens the store named by dsn.
// Applies pragmas (SQLite) and schema migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	backend, err := ParseDSN(dsn)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if backend.Dialect == querysql.DialectPostgres {
		cfg, err := pgx.ParseConfig(backend.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to parse postgres DSN: %w", err)
		}
		db = stdlib.OpenDB(*cfg)
	} else {
		db, err = sql.Open(backend.Driver, backend.Target)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		// SQLite only supports one writer at a time
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &Store{
		db:       db,
		backend:  backend,
		compiler: querysql.NewSQLCompiler(backend.Dialect, nil),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if backend.Dialect == querysql.DialectSQLite {
		if err := applyPragmas(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	if err := s.applySchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Backend reports how the store was opened.
func (s *Store) Backend() Backend {
	return s.backend
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
// This function is idempotent.
func (s *Store) applySchema(ctx context.Context) error {
	schema := schemaSQLite
	if s.backend.Dialect == querysql.DialectPostgres {
		schema = schemaPostgres
	}

	for _, stmt := range splitStatements(schema) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema: %w", err)
		}
	}

	if err := s.runMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations.
// SQLite tracks the version in user_version; the Postgres migrations are
// all IF NOT EXISTS and run on every open.
func (s *Store) runMigrations(ctx context.Context) error {
	if s.backend.Dialect == querysql.DialectPostgres {
		return migrateToV2(ctx, s.db)
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 2 {
		if err := migrateToV2(ctx, s.db); err != nil {
			return err
		}
	}

	if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV2 adds the reverse refs index used when a join starts from
// the contained side.
func migrateToV2(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_refs_target
		ON refs(target_id, field)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v2: %w", err)
	}
	return nil
}

// splitStatements splits a schema file on statement terminators.
func splitStatements(schema string) []string {
	var out []string
	for _, stmt := range strings.Split(schema, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// rebind rewrites "?" placeholders for the store's dialect.
func (s *Store) rebind(query string) string {
	if s.backend.Dialect != querysql.DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
