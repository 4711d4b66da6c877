// Package aspect provides cross-cutting aspects for the SRest dispatcher.
// Each aspect implements common.Aspect and keeps any state it needs between
// Before and After in the request's route store.
package aspect

import (
	"net/http"

	"github.com/Suhaibinator/SRest/pkg/common"
	"github.com/Suhaibinator/SRest/pkg/router"
	"github.com/google/uuid"
)

// RequestIDHeader carries the trace ID in both directions.
const RequestIDHeader = "X-Request-ID"

type traceIDKey struct{}

// Trace assigns each request a trace ID, reusing an incoming X-Request-ID
// header when present, and echoes it on the response.
func Trace() common.Aspect {
	return common.AspectFuncs{
		BeforeFunc: func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(RequestIDHeader)
			if traceID == "" {
				traceID = uuid.New().String()
			}
			router.SetValue(r, traceIDKey{}, traceID)
			w.Header().Set(RequestIDHeader, traceID)
		},
	}
}

// GetTraceID returns the trace ID assigned by Trace, or an empty string.
func GetTraceID(r *http.Request) string {
	if traceID, ok := router.Value(r, traceIDKey{}).(string); ok {
		return traceID
	}
	return ""
}
