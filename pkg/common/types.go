// Package common provides shared types and utilities used across the SRest framework.
package common

import (
	"net/http"
)

// Aspect is a cross-cutting hook pair applied around every dispatched handler.
// Before runs synchronously on the dispatching goroutine before the handler.
// After runs once the handler, and any asynchronous work it attached to the
// request series, has fully completed.
type Aspect interface {
	Before(w http.ResponseWriter, r *http.Request)
	After(w http.ResponseWriter, r *http.Request)
}

// AspectFuncs adapts a pair of functions to the Aspect interface.
// Either function may be nil.
type AspectFuncs struct {
	BeforeFunc func(w http.ResponseWriter, r *http.Request)
	AfterFunc  func(w http.ResponseWriter, r *http.Request)
}

// Before calls BeforeFunc if set.
func (a AspectFuncs) Before(w http.ResponseWriter, r *http.Request) {
	if a.BeforeFunc != nil {
		a.BeforeFunc(w, r)
	}
}

// After calls AfterFunc if set.
func (a AspectFuncs) After(w http.ResponseWriter, r *http.Request) {
	if a.AfterFunc != nil {
		a.AfterFunc(w, r)
	}
}
