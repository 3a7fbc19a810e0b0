// Package database provides the SQLite connection used by the
// run-history store.
//
// It wraps database/sql with WAL mode, busy-timeout pragmas, and a
// single-writer connection pool suited to SQLite. Schema management
// lives with the packages that own their tables (see internal/history).
package database
