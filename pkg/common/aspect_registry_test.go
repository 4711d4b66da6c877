package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// recordingAspect appends its name and phase to a shared log
func recordingAspect(name string, log *[]string) Aspect {
	return AspectFuncs{
		BeforeFunc: func(w http.ResponseWriter, r *http.Request) {
			*log = append(*log, name+".before")
		},
		AfterFunc: func(w http.ResponseWriter, r *http.Request) {
			*log = append(*log, name+".after")
		},
	}
}

func TestAspectChainOrder(t *testing.T) {
	var order []string

	registry := NewAspectRegistry(recordingAspect("a1", &order), recordingAspect("a2", &order))

	req := httptest.NewRequest("GET", "http://example.com/foo", nil)
	w := httptest.NewRecorder()

	chain := registry.Snapshot()
	chain.RunBefore(w, req)
	order = append(order, "handler")
	chain.RunAfter(w, req)

	// After hooks run in registration order, not reversed
	expected := []string{"a1.before", "a2.before", "handler", "a1.after", "a2.after"}

	if len(order) != len(expected) {
		t.Fatalf("Expected %d calls, got %d: %v", len(expected), len(order), order)
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("Expected call %d to be %q, got %q", i, v, order[i])
		}
	}
}

func TestAspectRegistryPrepend(t *testing.T) {
	var order []string

	registry := NewAspectRegistry(recordingAspect("second", &order))
	registry.Prepend(recordingAspect("first", &order))

	registry.Snapshot().RunBefore(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if len(order) != 2 || order[0] != "first.before" || order[1] != "second.before" {
		t.Errorf("Expected [first.before second.before], got %v", order)
	}
}

func TestAspectRegistrySnapshotIsolation(t *testing.T) {
	var order []string

	registry := NewAspectRegistry(recordingAspect("a1", &order))
	chain := registry.Snapshot()

	registry.Append(recordingAspect("a2", &order))

	if len(chain) != 1 {
		t.Errorf("Expected snapshot to keep 1 aspect, got %d", len(chain))
	}
	if registry.Len() != 2 {
		t.Errorf("Expected registry to hold 2 aspects, got %d", registry.Len())
	}
}

func TestAspectRegistryIgnoresNil(t *testing.T) {
	registry := NewAspectRegistry(nil)
	registry.Append(nil)
	registry.Prepend(nil)

	if registry.Len() != 0 {
		t.Errorf("Expected empty registry, got %d aspects", registry.Len())
	}
	if registry.Snapshot() != nil {
		t.Errorf("Expected nil snapshot for empty registry")
	}
}

func TestNilRegistry(t *testing.T) {
	var registry *AspectRegistry

	if registry.Len() != 0 {
		t.Errorf("Expected nil registry length 0, got %d", registry.Len())
	}
	// A nil chain is a no-op
	registry.Snapshot().RunBefore(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
}
