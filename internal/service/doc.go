// Package service implements the application's use cases on top of the store
// interfaces: authentication and token rotation, user administration and
// owner-scoped task management.
//
// Services return sentinel errors (or wrap store and domain errors with %w);
// the API layer translates them into HTTP responses.
package service
