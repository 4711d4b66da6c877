package aspect

import (
	"net/http"
	"time"

	"github.com/Suhaibinator/SRest/pkg/common"
	"github.com/Suhaibinator/SRest/pkg/router"
	"go.uber.org/zap"
)

// SlowRequestThreshold is the duration above which a successful request is
// logged at Warn level.
var SlowRequestThreshold = time.Second

type startTimeKey struct{}

// Logging logs every request once its handler and any offloaded work have
// finished. Server errors are logged at Error, client errors and slow
// requests at Warn, everything else at Debug.
func Logging(logger *zap.Logger) common.Aspect {
	if logger == nil {
		logger = zap.NewNop()
	}
	return common.AspectFuncs{
		BeforeFunc: func(w http.ResponseWriter, r *http.Request) {
			router.SetValue(r, startTimeKey{}, time.Now())
		},
		AfterFunc: func(w http.ResponseWriter, r *http.Request) {
			var duration time.Duration
			if start, ok := router.Value(r, startTimeKey{}).(time.Time); ok {
				duration = time.Since(start)
			}

			status := router.ResponseStatus(w)
			if status == 0 {
				status = http.StatusOK
			}

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", router.FullPath(r)),
				zap.Int("status", status),
				zap.Duration("duration", duration),
			}
			if traceID := GetTraceID(r); traceID != "" {
				fields = append(fields, zap.String("trace_id", traceID))
			}

			switch {
			case status >= 500:
				logger.Error("Server error", append(fields, zap.String("remote_addr", ClientIP(r)))...)
			case status >= 400:
				logger.Warn("Client error", fields...)
			case duration > SlowRequestThreshold:
				logger.Warn("Slow request", fields...)
			default:
				logger.Debug("Request", fields...)
			}
		},
	}
}
