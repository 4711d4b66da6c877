package router

import (
	"net/http"

	"github.com/Suhaibinator/SRest/pkg/common"
	"github.com/Suhaibinator/SRest/pkg/task"
	"go.uber.org/zap"
)

// HandlerKind tags which handler shape a route was registered with.
type HandlerKind int

const (
	// PlainHandler routes take (w, r).
	PlainHandler HandlerKind = iota

	// SeriesHandler routes also receive the request's series so they can
	// attach further asynchronous sub-work.
	SeriesHandler
)

// SeriesHandlerFunc is a handler that receives the request's series.
type SeriesHandlerFunc func(w http.ResponseWriter, r *http.Request, s *task.Series)

// RouteConfig defines one route registration.
// Exactly one of Handler and SeriesHandler must be set.
type RouteConfig struct {
	Path          string            // Route path (rewritten with the prefix when mounted)
	Methods       []string          // HTTP methods this route handles, "ANY" for all
	Queue         string            // Offload queue name, empty to run inline
	Handler       http.HandlerFunc  // Standard HTTP handler function
	SeriesHandler SeriesHandlerFunc // Handler that may attach sub-work to the series
}

// Kind reports which handler shape the route carries.
func (rc RouteConfig) Kind() HandlerKind {
	if rc.SeriesHandler != nil {
		return SeriesHandler
	}
	return PlainHandler
}

// RouteOption customizes a route registered through the per-verb methods.
type RouteOption func(*RouteConfig)

// OnQueue offloads the handler body to the named worker queue.
func OnQueue(name string) RouteOption {
	return func(rc *RouteConfig) {
		rc.Queue = name
	}
}

// BlueprintConfig defines the collaborators a Blueprint wraps handlers with.
type BlueprintConfig struct {
	Logger    *zap.Logger            // Logger for registration problems
	Aspects   *common.AspectRegistry // Aspects applied around every handler (a private registry if nil)
	Submitter task.Submitter         // Worker pool for offloaded handlers (offloading disabled if nil)
}

// ServerConfig defines the configuration of a Server.
type ServerConfig struct {
	Logger    *zap.Logger     // Logger for all server operations
	Aspects   []common.Aspect // Aspects registered at construction, in order
	Submitter task.Submitter  // Worker pool for offloaded handlers (a task.Pool is created if nil)
	Pool      task.PoolConfig // Configuration of the pool created when Submitter is nil
	Track     TrackFunc       // Called once per request after it fully completes
}
