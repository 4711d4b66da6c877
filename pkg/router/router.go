// Package router provides the request-routing and handler-dispatch engine of SRest.
// It resolves verbs and paths through a segment trie, wraps handlers with
// aspects, and runs them inline or on named worker queues.
package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Suhaibinator/SRest/pkg/task"
	"go.uber.org/zap"
)

// WrapHandler is a handler as stored in the route table. It returns a pending
// task when the handler body was offloaded, or nil when it already ran.
type WrapHandler func(w http.ResponseWriter, r *http.Request, s *task.Series) *task.Task

// Router registers wrapped handlers into a RouteTable and dispatches requests to them.
type Router struct {
	table  *RouteTable
	logger *zap.Logger
}

// NewRouter creates a Router with an empty route table.
func NewRouter(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		table:  NewRouteTable(),
		logger: logger,
	}
}

// Handle registers handler for verb at pattern. Invalid patterns and duplicate
// verbs are logged and returned; neither is fatal and the first registration
// of a verb wins.
func (r *Router) Handle(pattern, queue string, handler WrapHandler, verb Verb) error {
	p, err := CompilePattern(pattern)
	if err != nil {
		r.logger.Error("Route registration skipped",
			zap.String("verb", verb.String()),
			zap.String("pattern", pattern),
			zap.Error(err),
		)
		return err
	}
	return r.insert(p, verb, HandlerEntry{Handler: handler, Path: p.Path(), Queue: queue})
}

func (r *Router) insert(p *Pattern, verb Verb, entry HandlerEntry) error {
	if err := r.table.Insert(p, verb, entry); err != nil {
		if errors.Is(err, ErrDuplicateVerb) {
			r.logger.Warn("Duplicate verb ignored",
				zap.String("verb", verb.String()),
				zap.String("path", p.Path()),
			)
		}
		return err
	}
	return nil
}

// Call resolves verb and path and invokes the matched handler. On a match the
// route parameters, wildcard remainder and registered path are stored on the
// request context. A pending task returned by the handler is attached to
// series; Call never waits for it.
func (r *Router) Call(verb Verb, path string, w http.ResponseWriter, req *http.Request, series *task.Series) Status {
	match := r.table.Find(path, verb)
	if match.Status != StatusOK {
		return match.Status
	}

	if series == nil {
		series = task.NewSeries()
		defer series.Close()
	}

	req = withRouteState(req, match)
	if pending := match.Entry.Handler(w, req, series); pending != nil {
		if err := series.Attach(pending); err != nil {
			r.logger.Error("Failed to attach offloaded handler",
				zap.String("verb", verb.String()),
				zap.String("path", path),
				zap.Error(err),
			)
		}
	}

	return StatusOK
}

// Allowed returns the verbs registered for the pattern path resolves to.
func (r *Router) Allowed(path string) []Verb {
	return r.table.Allowed(path)
}

// AllRoutes returns every registered route in insertion order.
func (r *Router) AllRoutes() []RouteInfo {
	return r.table.AllRoutes()
}

// PrintRoutes logs every registered route.
func (r *Router) PrintRoutes() {
	for _, route := range r.table.AllRoutes() {
		r.logger.Info("Route",
			zap.String("verb", route.Verb.String()),
			zap.String("path", route.Path),
		)
	}
}

// String returns the route listing as "VERB\tpath" lines.
func (r *Router) String() string {
	var b strings.Builder
	for _, route := range r.table.AllRoutes() {
		fmt.Fprintf(&b, "%s\t%s\n", route.Verb, route.Path)
	}
	return b.String()
}
