package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Suhaibinator/SRest/pkg/common"
	"github.com/Suhaibinator/SRest/pkg/task"
	"go.uber.org/zap"
)

// Blueprint is a composable set of route registrations. Handlers registered
// through it are wrapped with the blueprint's aspects and offload decision,
// and a blueprint can be mounted under a prefix into another one.
type Blueprint struct {
	router    *Router
	logger    *zap.Logger
	aspects   *common.AspectRegistry
	submitter task.Submitter
}

// NewBlueprint creates an empty blueprint.
func NewBlueprint(config BlueprintConfig) *Blueprint {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	aspects := config.Aspects
	if aspects == nil {
		aspects = common.NewAspectRegistry()
	}

	return &Blueprint{
		router:    NewRouter(logger),
		logger:    logger,
		aspects:   aspects,
		submitter: config.Submitter,
	}
}

// Router returns the router holding the blueprint's routes.
func (b *Blueprint) Router() *Router {
	return b.router
}

// Aspects returns the registry the blueprint's handlers consult.
func (b *Blueprint) Aspects() *common.AspectRegistry {
	return b.aspects
}

// Handle registers a route for each of its methods. Registration problems are
// logged and returned joined; routes that could be registered stay registered.
func (b *Blueprint) Handle(route RouteConfig) error {
	if len(route.Methods) == 0 {
		err := fmt.Errorf("route %q: no methods given", route.Path)
		b.logger.Error("Route registration skipped", zap.Error(err))
		return err
	}
	if (route.Handler == nil) == (route.SeriesHandler == nil) {
		err := fmt.Errorf("route %q: exactly one of Handler and SeriesHandler must be set", route.Path)
		b.logger.Error("Route registration skipped", zap.Error(err))
		return err
	}
	if route.Queue != "" && b.submitter == nil {
		err := fmt.Errorf("%w: route %q queue %q", ErrNoSubmitter, route.Path, route.Queue)
		b.logger.Error("Route registration skipped", zap.Error(err))
		return err
	}

	handler := b.wrap(route)

	var errs []error
	for _, method := range route.Methods {
		if err := b.router.Handle(route.Path, route.Queue, handler, ParseVerb(method)); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Route registers handler for several methods at once. The error is the one
// Handle returns; it has already been logged.
func (b *Blueprint) Route(path string, handler http.HandlerFunc, methods []string, opts ...RouteOption) error {
	route := RouteConfig{Path: path, Methods: methods, Handler: handler}
	for _, opt := range opts {
		opt(&route)
	}
	return b.Handle(route)
}

// GET registers a GET route.
func (b *Blueprint) GET(path string, handler http.HandlerFunc, opts ...RouteOption) error {
	return b.Route(path, handler, []string{http.MethodGet}, opts...)
}

// POST registers a POST route.
func (b *Blueprint) POST(path string, handler http.HandlerFunc, opts ...RouteOption) error {
	return b.Route(path, handler, []string{http.MethodPost}, opts...)
}

// PUT registers a PUT route.
func (b *Blueprint) PUT(path string, handler http.HandlerFunc, opts ...RouteOption) error {
	return b.Route(path, handler, []string{http.MethodPut}, opts...)
}

// PATCH registers a PATCH route.
func (b *Blueprint) PATCH(path string, handler http.HandlerFunc, opts ...RouteOption) error {
	return b.Route(path, handler, []string{http.MethodPatch}, opts...)
}

// DELETE registers a DELETE route.
func (b *Blueprint) DELETE(path string, handler http.HandlerFunc, opts ...RouteOption) error {
	return b.Route(path, handler, []string{http.MethodDelete}, opts...)
}

// HEAD registers a HEAD route.
func (b *Blueprint) HEAD(path string, handler http.HandlerFunc, opts ...RouteOption) error {
	return b.Route(path, handler, []string{http.MethodHead}, opts...)
}

// OPTIONS registers an OPTIONS route.
func (b *Blueprint) OPTIONS(path string, handler http.HandlerFunc, opts ...RouteOption) error {
	return b.Route(path, handler, []string{http.MethodOptions}, opts...)
}

// ANY registers a route matching every verb that has no exact registration.
func (b *Blueprint) ANY(path string, handler http.HandlerFunc, opts ...RouteOption) error {
	return b.Route(path, handler, []string{string(VerbAny)}, opts...)
}

// Mount copies every route of other into b under prefix. The copy is taken
// now; routes added to other later are not seen by b.
func (b *Blueprint) Mount(other *Blueprint, prefix string) {
	for _, rec := range other.router.table.records {
		path := joinMountPath(prefix, rec.entry.Path)
		p, err := CompilePattern(path)
		if err != nil {
			b.logger.Error("Mounted route skipped", zap.String("path", path), zap.Error(err))
			continue
		}
		entry := *rec.entry
		entry.Path = p.Path()
		_ = b.router.insert(p, rec.verb, entry)
	}
}

// joinMountPath joins prefix and sub with exactly one separator.
func joinMountPath(prefix, sub string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(sub, "/")
}

// wrap builds the dispatch closure for a route. The aspect list is read at
// invocation and the same snapshot serves both passes. After hooks run as a
// series continuation, once the handler and everything it attached are done.
// The continuation is registered before the handler runs so a panicking
// handler still gets its after pass.
func (b *Blueprint) wrap(route RouteConfig) WrapHandler {
	aspects := b.aspects
	submitter := b.submitter
	logger := b.logger
	queue := route.Queue
	kind := route.Kind()
	plain := route.Handler
	series := route.SeriesHandler

	return func(w http.ResponseWriter, r *http.Request, s *task.Series) *task.Task {
		chain := aspects.Snapshot()
		chain.RunBefore(w, r)

		if len(chain) > 0 {
			s.OnComplete(func() {
				defer func() {
					if rec := recover(); rec != nil {
						logger.Error("Panic recovered in after hook",
							zap.Any("panic", rec),
							zap.String("method", r.Method),
							zap.String("path", r.URL.Path),
						)
					}
				}()
				chain.RunAfter(w, r)
			})
		}

		var pending *task.Task
		switch {
		case queue == "" && kind == PlainHandler:
			plain(w, r)
			return nil
		case queue == "":
			series(w, r, s)
			return nil
		case kind == PlainHandler:
			pending = submitter.Submit(queue, func() { plain(w, r) })
		default:
			pending = submitter.Submit(queue, func() { series(w, r, s) })
		}

		// Registered ahead of the series release, so the failure status is
		// written before any after hook reads it.
		if pending != nil {
			pending.OnComplete(func(err error) {
				if err != nil {
					failResponse(w, err)
				}
			})
		}
		return pending
	}
}
