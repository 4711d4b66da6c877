package common

import (
	"net/http"
	"sync"
)

// AspectRegistry holds the ordered list of aspects shared by every dispatch
// wrapper of a server. It is owned by the server and handed to blueprints at
// registration time; wrappers read it at invocation, so aspects added after a
// route was declared still apply to that route.
type AspectRegistry struct {
	mu      sync.RWMutex
	aspects []Aspect
}

// NewAspectRegistry creates a registry holding the given aspects in order.
func NewAspectRegistry(aspects ...Aspect) *AspectRegistry {
	r := &AspectRegistry{}
	r.Append(aspects...)
	return r
}

// Append adds aspects to the end of the registry. Nil aspects are ignored.
func (r *AspectRegistry) Append(aspects ...Aspect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range aspects {
		if a != nil {
			r.aspects = append(r.aspects, a)
		}
	}
}

// Prepend adds aspects to the beginning of the registry
func (r *AspectRegistry) Prepend(aspects ...Aspect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make([]Aspect, 0, len(aspects)+len(r.aspects))
	for _, a := range aspects {
		if a != nil {
			result = append(result, a)
		}
	}
	r.aspects = append(result, r.aspects...)
}

// Len returns the number of registered aspects.
func (r *AspectRegistry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.aspects)
}

// Snapshot returns the aspects as of now. The returned chain is not affected
// by later registrations, which lets one dispatch run its before and after
// passes over the same list.
func (r *AspectRegistry) Snapshot() AspectChain {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.aspects) == 0 {
		return nil
	}
	chain := make(AspectChain, len(r.aspects))
	copy(chain, r.aspects)
	return chain
}

// AspectChain is an immutable, ordered list of aspects.
type AspectChain []Aspect

// RunBefore invokes every Before hook in order.
func (c AspectChain) RunBefore(w http.ResponseWriter, r *http.Request) {
	for _, a := range c {
		a.Before(w, r)
	}
}

// RunAfter invokes every After hook in the same order as RunBefore.
func (c AspectChain) RunAfter(w http.ResponseWriter, r *http.Request) {
	for _, a := range c {
		a.After(w, r)
	}
}
