//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database. Tests connect through TASKMAN_TEST_DATABASE_URL (or
// DATABASE_URL), apply the embedded migrations once and isolate each test in a
// transaction that is always rolled back.
package testdb
