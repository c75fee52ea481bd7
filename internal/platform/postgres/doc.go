// Package postgres contains PostgreSQL-backed implementations of the
// persistence interfaces defined in the store package, plus helpers for
// translating driver-level errors into the store's sentinel errors.
package postgres
