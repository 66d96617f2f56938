// Package store defines the persistence interfaces of the task manager along
// with the transaction helper and the error taxonomy shared by every store
// implementation. Concrete implementations live in internal/platform/postgres.
package store
