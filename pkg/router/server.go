package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Suhaibinator/SRest/pkg/common"
	"github.com/Suhaibinator/SRest/pkg/task"
	"go.uber.org/zap"
)

// Server is the transport adapter: it implements http.Handler on top of a
// root Blueprint, owns the aspect registry and worker pool shared by every
// blueprint it creates, and finalizes each request once its series is done.
type Server struct {
	*Blueprint

	config     ServerConfig
	logger     *zap.Logger
	pool       *task.Pool // Non-nil when the server created and owns the pool
	wg         sync.WaitGroup
	shutdown   bool
	shutdownMu sync.RWMutex
}

// NewServer creates a Server with the given configuration.
func NewServer(config ServerConfig) *Server {
	// Set up the logger
	logger := config.Logger
	if logger == nil {
		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			// Fallback to a no-op logger if we can't create a production logger
			logger = zap.NewNop()
		}
	}

	s := &Server{
		config: config,
		logger: logger,
	}

	submitter := config.Submitter
	if submitter == nil {
		poolConfig := config.Pool
		if poolConfig.Logger == nil {
			poolConfig.Logger = logger
		}
		s.pool = task.NewPool(poolConfig)
		submitter = s.pool
	}

	s.Blueprint = NewBlueprint(BlueprintConfig{
		Logger:    logger,
		Aspects:   common.NewAspectRegistry(config.Aspects...),
		Submitter: submitter,
	})

	return s
}

// Use appends aspects to the server's registry. They apply to every route,
// including routes registered before the call.
func (s *Server) Use(aspects ...common.Aspect) {
	s.aspects.Append(aspects...)
}

// NewBlueprint creates a blueprint sharing the server's aspects and worker pool.
func (s *Server) NewBlueprint() *Blueprint {
	return NewBlueprint(BlueprintConfig{
		Logger:    s.logger,
		Aspects:   s.aspects,
		Submitter: s.submitter,
	})
}

// RegisterBlueprint mounts bp's routes under prefix.
func (s *Server) RegisterBlueprint(bp *Blueprint, prefix string) {
	s.Mount(bp, prefix)
}

// ListRoutes logs every registered route.
func (s *Server) ListRoutes() {
	s.router.PrintRoutes()
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	// The flag check and wg.Add share the read lock, so no Add can follow
	// the Wait in Shutdown.
	s.shutdownMu.RLock()
	if s.shutdown {
		s.shutdownMu.RUnlock()
		http.Error(w, "Service Unavailable", http.StatusServiceUnavailable)
		return
	}
	s.wg.Add(1)
	s.shutdownMu.RUnlock()
	defer s.wg.Done()

	start := time.Now()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
	series := task.NewSeries()

	s.dispatch(rw, req, series)

	// The response must stay valid until offloaded work and after hooks are done.
	series.Close()
	<-series.Done()

	if err := series.Err(); err != nil {
		s.logger.Error("Request failed",
			zap.Error(err),
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
		)
		failResponse(rw, err)
	}

	if s.config.Track != nil {
		s.config.Track(TrackInfo{
			Time:     start,
			Status:   rw.statusCode,
			Peer:     req.RemoteAddr,
			Method:   req.Method,
			Path:     req.URL.Path,
			Duration: time.Since(start),
		})
	}
}

// dispatch routes the request and reports routing failures. A panic in an
// inline handler is contained here so it cannot affect other requests.
func (s *Server) dispatch(rw *responseWriter, req *http.Request, series *task.Series) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("Panic recovered",
				zap.Any("panic", rec),
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
			)
			if !rw.wroteHeader {
				http.Error(rw, "Internal Server Error", http.StatusInternalServerError)
			}
		}
	}()

	path := req.URL.Path
	status := s.router.Call(ParseVerb(req.Method), path, rw, req, series)

	switch status {
	case StatusOK:
		return
	case StatusMethodNotAllowed:
		allowed := s.router.Allowed(path)
		verbs := make([]string, 0, len(allowed))
		for _, v := range allowed {
			if v != VerbAny {
				verbs = append(verbs, v.String())
			}
		}
		rw.Header().Set("Allow", strings.Join(verbs, ", "))
	}

	s.logger.Debug("Request not routed",
		zap.String("method", req.Method),
		zap.String("path", path),
		zap.String("status", status.String()),
	)
	http.Error(rw, fmt.Sprintf("%s %s", req.Method, path), status.HTTPStatus())
}

// Shutdown gracefully shuts down the server.
// It stops accepting new requests, waits for in-flight requests, and then
// drains the worker pool if the server created it. If the context is canceled
// first, it returns the context's error. Call it after the http.Server in
// front has stopped its listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownMu.Lock()
	s.shutdown = true
	s.shutdownMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if s.pool != nil {
		return s.pool.Shutdown(ctx)
	}
	return nil
}

// responseWriter is a wrapper around http.ResponseWriter that captures the status code.
// This allows aspects and tracking to inspect the status code after the handler has completed.
type responseWriter struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

// WriteHeader captures the status code and calls the underlying ResponseWriter.WriteHeader.
func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.wroteHeader {
		rw.statusCode = statusCode
		rw.wroteHeader = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write records an implicit 200 and calls the underlying ResponseWriter.Write.
func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wroteHeader = true
	return rw.ResponseWriter.Write(b)
}

// Flush calls the underlying ResponseWriter.Flush if it implements http.Flusher.
// This allows streaming responses to be flushed to the client immediately.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Status returns the status code written so far.
func (rw *responseWriter) Status() int {
	return rw.statusCode
}

// Written reports whether a status line or body has been written.
func (rw *responseWriter) Written() bool {
	return rw.wroteHeader
}

// failResponse writes the status for a failed request unless w already has a
// response under way. A rejected submission maps to 503, anything else to 500.
func failResponse(w http.ResponseWriter, err error) {
	if ww, ok := w.(interface{ Written() bool }); ok && ww.Written() {
		return
	}
	status := http.StatusInternalServerError
	if errors.Is(err, task.ErrPoolClosed) {
		status = http.StatusServiceUnavailable
	}
	http.Error(w, http.StatusText(status), status)
}

// ResponseStatus returns the status code written to w if w was provided by a
// Server, or 0 otherwise.
func ResponseStatus(w http.ResponseWriter) int {
	if sw, ok := w.(interface{ Status() int }); ok {
		return sw.Status()
	}
	return 0
}
