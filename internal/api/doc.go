// Package api exposes the task and user services over HTTP. Handlers decode
// and validate requests, call the service layer with the authenticated
// principal, and map service errors to status codes via HandleAPIError.
package api
