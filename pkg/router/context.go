package router

import (
	"context"
	"net/http"
	"sync"

	"github.com/julienschmidt/httprouter"
)

// contextKey is a type for context keys.
// It's used to store and retrieve values from request contexts.
type contextKey string

const (
	// RouteKey is the key used to store the resolved route in the request context.
	RouteKey contextKey = "route"
)

// routeState is the per-request record Call attaches to the request context.
// values carries aspect state from Before to After; Before and After run on
// different goroutines for offloaded handlers, hence the mutex.
type routeState struct {
	params    httprouter.Params
	matchPath string
	fullPath  string

	mu     sync.Mutex
	values map[any]any
}

func withRouteState(req *http.Request, match MatchResult) *http.Request {
	state := &routeState{
		params:    match.Params,
		matchPath: match.MatchPath,
		fullPath:  match.Entry.Path,
	}
	return req.WithContext(context.WithValue(req.Context(), RouteKey, state))
}

func getRouteState(r *http.Request) *routeState {
	state, _ := r.Context().Value(RouteKey).(*routeState)
	return state
}

// GetParams retrieves the route parameters from the request context, in the
// order they are declared in the pattern.
func GetParams(r *http.Request) httprouter.Params {
	if state := getRouteState(r); state != nil {
		return state.params
	}
	return nil
}

// GetParam retrieves a specific parameter from the request context.
// It's a convenience function that combines GetParams and ByName.
func GetParam(r *http.Request, name string) string {
	return GetParams(r).ByName(name)
}

// MatchPath returns the part of the path captured by a trailing wildcard.
func MatchPath(r *http.Request) string {
	if state := getRouteState(r); state != nil {
		return state.matchPath
	}
	return ""
}

// FullPath returns the registered pattern the request was routed to,
// e.g. /users/{id}.
func FullPath(r *http.Request) string {
	if state := getRouteState(r); state != nil {
		return state.fullPath
	}
	return ""
}

// SetValue stores a request-scoped value. It reports false if the request
// was not dispatched by a Router.
func SetValue(r *http.Request, key, value any) bool {
	state := getRouteState(r)
	if state == nil {
		return false
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.values == nil {
		state.values = make(map[any]any)
	}
	state.values[key] = value
	return true
}

// Value returns a value stored with SetValue, or nil.
func Value(r *http.Request, key any) any {
	state := getRouteState(r)
	if state == nil {
		return nil
	}
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.values[key]
}
