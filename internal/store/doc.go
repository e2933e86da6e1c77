// Package store is the SQL-backed object store that plans are estimated,
// executed and materialized against.
//
// Objects live in two tables:
//   - objects(id, class): one row per object, class is the concrete class
//   - refs(source_id, field, target_id): one row per reference value or
//     collection element
//
// Materialized plans are recorded in the precomputed catalog, keyed by
// table name. The table name is derived from the plan ID of the plan as
// ordered by the materialization hints, so two orderings of the same join
// are two tables.
//
// # Backends
//
// The DSN scheme picks the driver:
//   - "sqlite:<path>" or a bare path: github.com/mattn/go-sqlite3 (cgo)
//   - "sqlite-pure:<path>": modernc.org/sqlite (pure Go)
//   - "postgres://..." or "postgresql://...": pgx through database/sql
//
// SQLite databases are configured with WAL mode, NORMAL synchronous mode,
// a 5-second busy timeout and foreign key enforcement, and are limited to
// one open connection.
//
// # Deterministic Results
//
// Every row query carries an ORDER BY that covers all from-list slots, so
// Row(i) addresses the same row across calls.
package store
