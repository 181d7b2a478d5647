// Package repository defines error types that are reused across multiple
// repositories.  ErrUnavailable lets handlers distinguish "no store
// configured" from a real database failure.
package repository

import "errors"

// ErrUnavailable is returned by callers that hold no repository because
// persistence is disabled.  Handlers should translate this into an HTTP 503
// response.
var ErrUnavailable = errors.New("store unavailable")
