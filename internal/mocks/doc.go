// Package mocks provides testify-based mocks of the store interfaces and the
// application services, shared by the service and API tests.
//
// Store mocks return themselves from WithTx, so expectations set on a mock
// also apply to work done inside a transaction.
package mocks
