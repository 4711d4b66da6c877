package router

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Suhaibinator/SRest/pkg/task"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestRouterCallBindsRoute tests that Call stores params, match path and full path on the request
func TestRouterCallBindsRoute(t *testing.T) {
	r := NewRouter(zap.NewNop())

	var gotID, gotMatch, gotFull string
	err := r.Handle("/users/{id}/files/*", "", func(w http.ResponseWriter, req *http.Request, s *task.Series) *task.Task {
		gotID = GetParam(req, "id")
		gotMatch = MatchPath(req)
		gotFull = FullPath(req)
		return nil
	}, VerbGet)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	req := httptest.NewRequest("GET", "/users/7/files/docs/a.txt", nil)
	series := task.NewSeries()
	status := r.Call(VerbGet, req.URL.Path, httptest.NewRecorder(), req, series)
	series.Close()

	if status != StatusOK {
		t.Fatalf("Expected StatusOK, got %v", status)
	}
	if gotID != "7" {
		t.Errorf("Expected id %q, got %q", "7", gotID)
	}
	if gotMatch != "docs/a.txt" {
		t.Errorf("Expected match path %q, got %q", "docs/a.txt", gotMatch)
	}
	if gotFull != "/users/{id}/files/*" {
		t.Errorf("Expected full path %q, got %q", "/users/{id}/files/*", gotFull)
	}
}

// TestRouterCallStatuses tests the not-found and method-not-allowed outcomes
func TestRouterCallStatuses(t *testing.T) {
	r := NewRouter(nil)
	called := false
	_ = r.Handle("/ping", "", func(w http.ResponseWriter, req *http.Request, s *task.Series) *task.Task {
		called = true
		return nil
	}, VerbGet)

	req := httptest.NewRequest("POST", "/ping", nil)
	if status := r.Call(VerbPost, "/ping", httptest.NewRecorder(), req, task.NewSeries()); status != StatusMethodNotAllowed {
		t.Errorf("Expected StatusMethodNotAllowed, got %v", status)
	}
	if status := r.Call(VerbGet, "/pong", httptest.NewRecorder(), req, task.NewSeries()); status != StatusRouteNotFound {
		t.Errorf("Expected StatusRouteNotFound, got %v", status)
	}
	if called {
		t.Errorf("Expected handler not to be called")
	}

	if StatusRouteNotFound.HTTPStatus() != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", StatusRouteNotFound.HTTPStatus())
	}
	if StatusMethodNotAllowed.HTTPStatus() != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", StatusMethodNotAllowed.HTTPStatus())
	}
}

// TestRouterCallAttachesPendingTask tests that Call chains a returned task into the series without waiting
func TestRouterCallAttachesPendingTask(t *testing.T) {
	r := NewRouter(nil)
	pending := task.NewTask()
	_ = r.Handle("/slow", "q", func(w http.ResponseWriter, req *http.Request, s *task.Series) *task.Task {
		return pending
	}, VerbGet)

	series := task.NewSeries()
	req := httptest.NewRequest("GET", "/slow", nil)
	if status := r.Call(VerbGet, "/slow", httptest.NewRecorder(), req, series); status != StatusOK {
		t.Fatalf("Expected StatusOK, got %v", status)
	}
	series.Close()

	if series.Pending() != 1 {
		t.Fatalf("Expected 1 pending task, got %d", series.Pending())
	}
	select {
	case <-series.Done():
		t.Fatal("Expected series to wait for the pending task")
	default:
	}

	pending.Complete(nil)
	<-series.Done()
}

// TestRouterHandleLogsProblems tests that registration problems are logged and non-fatal
func TestRouterHandleLogsProblems(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewRouter(zap.New(core))
	noop := func(w http.ResponseWriter, req *http.Request, s *task.Series) *task.Task { return nil }

	if err := r.Handle("/files/*/x", "", noop, VerbGet); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("Expected ErrInvalidPattern, got %v", err)
	}
	if err := r.Handle("/ping", "", noop, VerbGet); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if err := r.Handle("/ping", "", noop, VerbGet); !errors.Is(err, ErrDuplicateVerb) {
		t.Errorf("Expected ErrDuplicateVerb, got %v", err)
	}

	if n := logs.FilterMessage("Route registration skipped").Len(); n != 1 {
		t.Errorf("Expected 1 skipped registration log, got %d", n)
	}
	warnings := logs.FilterMessage("Duplicate verb ignored").All()
	if len(warnings) != 1 || warnings[0].Level != zapcore.WarnLevel {
		t.Errorf("Expected 1 duplicate verb warning, got %v", warnings)
	}

	if routes := r.AllRoutes(); len(routes) != 1 || routes[0].Path != "/ping" {
		t.Errorf("Expected only /ping to be registered, got %v", routes)
	}
}

// TestRouterPrintRoutes tests the route listing outputs
func TestRouterPrintRoutes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewRouter(zap.New(core))
	noop := func(w http.ResponseWriter, req *http.Request, s *task.Series) *task.Task { return nil }
	_ = r.Handle("/", "", noop, VerbGet)
	_ = r.Handle("/users/{id}", "", noop, VerbDelete)

	r.PrintRoutes()

	entries := logs.FilterMessage("Route").All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 route log entries, got %d", len(entries))
	}
	if entries[1].ContextMap()["verb"] != "DELETE" || entries[1].ContextMap()["path"] != "/users/{id}" {
		t.Errorf("Unexpected log fields %v", entries[1].ContextMap())
	}

	if !strings.Contains(r.String(), "DELETE\t/users/{id}\n") {
		t.Errorf("Expected listing to contain the DELETE route, got %q", r.String())
	}
}

// TestRouterAccessorsWithoutRoute tests accessors on a request that was never routed
func TestRouterAccessorsWithoutRoute(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)

	if GetParams(req) != nil || GetParam(req, "id") != "" || MatchPath(req) != "" || FullPath(req) != "" {
		t.Errorf("Expected empty route data on an unrouted request")
	}
	if SetValue(req, "k", "v") {
		t.Errorf("Expected SetValue to fail on an unrouted request")
	}
	if Value(req, "k") != nil {
		t.Errorf("Expected nil value on an unrouted request")
	}
}

func TestParseVerb(t *testing.T) {
	if ParseVerb(" get ") != VerbGet {
		t.Errorf("Expected GET, got %q", ParseVerb(" get "))
	}
	if ParseVerb("purge") != Verb("PURGE") {
		t.Errorf("Expected PURGE, got %q", ParseVerb("purge"))
	}
}
