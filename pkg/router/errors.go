package router

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidPattern is returned when a route template cannot be compiled.
	// The registration is skipped; the server keeps running.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// ErrDuplicateVerb is returned when a verb is registered twice on the same
	// resolved path. The first registration wins.
	ErrDuplicateVerb = errors.New("duplicate verb")

	// ErrNoSubmitter is returned when a route asks for an offload queue but the
	// blueprint has no worker pool to submit to.
	ErrNoSubmitter = errors.New("offload queue requested without a submitter")
)

// Status is the outcome of resolving a request against the route table.
type Status int

const (
	// StatusOK means a handler was found and invoked.
	StatusOK Status = iota

	// StatusRouteNotFound means no registered pattern matches the path.
	StatusRouteNotFound

	// StatusMethodNotAllowed means the pattern exists but not for the verb.
	StatusMethodNotAllowed
)

// String returns a human readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusRouteNotFound:
		return "Route Not Found"
	case StatusMethodNotAllowed:
		return "Method Not Allowed"
	default:
		return "Unknown Status"
	}
}

// HTTPStatus maps the status to the HTTP status code the transport reports.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusOK:
		return http.StatusOK
	case StatusRouteNotFound:
		return http.StatusNotFound
	case StatusMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}
