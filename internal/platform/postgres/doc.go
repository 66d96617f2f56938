// Package postgres provides the PostgreSQL implementations of the store
// interfaces defined in internal/store, the mapping of PostgreSQL error codes
// onto store errors, and the embedded goose migrations that create the schema
// and its reference data (roles, permissions, task statuses).
package postgres
