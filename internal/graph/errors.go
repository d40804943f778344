// Package graph provides an HTTP client for the Microsoft Graph API scoped
// to the signed-in user's OneDrive: a single-attempt request wrapper, the
// fixed set of drive operations built on it, and the interactive browser
// login that issues tokens for it.
package graph

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, graph.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("graph: bad request")
	ErrUnauthorized = errors.New("graph: unauthorized")
	ErrForbidden    = errors.New("graph: forbidden")
	ErrNotFound     = errors.New("graph: not found")
	ErrConflict     = errors.New("graph: conflict")
	ErrGone         = errors.New("graph: resource gone")
	ErrThrottled    = errors.New("graph: throttled")
	ErrLocked       = errors.New("graph: resource locked")
	ErrServerError  = errors.New("graph: server error")
	ErrUnexpected   = errors.New("graph: unexpected status")
)

// GraphError is returned for every non-2xx response. It carries the status,
// both request IDs, and the raw response body, and wraps a sentinel for
// errors.Is.
type GraphError struct {
	StatusCode      int
	RequestID       string // server-assigned "request-id" header
	ClientRequestID string // the "client-request-id" we sent
	Message         string // raw response body
	Err             error
}

func (e *GraphError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("graph: HTTP %d (request-id: %s): %s", e.StatusCode, e.RequestID, e.Message)
	}

	return fmt.Sprintf("graph: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx HTTP status code to a sentinel error.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusGone:
		return ErrGone
	case http.StatusTooManyRequests:
		return ErrThrottled
	case http.StatusLocked:
		return ErrLocked
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return ErrUnexpected
	}
}
