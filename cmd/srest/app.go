package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/Suhaibinator/SRest/internal/config"
	"github.com/Suhaibinator/SRest/pkg/aspect"
	"github.com/Suhaibinator/SRest/pkg/common"
	"github.com/Suhaibinator/SRest/pkg/metrics"
	"github.com/Suhaibinator/SRest/pkg/router"
	"github.com/Suhaibinator/SRest/pkg/task"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// app is the demo application and the resources it owns.
type app struct {
	server   *router.Server
	pool     *task.Pool
	registry *prometheus.Registry
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(cfg.Level())
	return zc.Build()
}

func newApp(cfg *config.Config, logger *zap.Logger) (*app, error) {
	a := &app{
		pool: task.NewPool(task.PoolConfig{
			Logger:               logger,
			DefaultWorkers:       cfg.Workers,
			DefaultRatePerSecond: cfg.QueueRate,
			Queues:               []task.QueueConfig{{Name: "cpu", Workers: cfg.Workers}},
		}),
		registry: prometheus.NewRegistry(),
	}

	aspects := []common.Aspect{
		aspect.Trace(),
		aspect.ClientIPAspect(nil),
		aspect.Logging(logger),
	}
	if cfg.MetricsPath != "" {
		a.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		aspects = append(aspects, metrics.NewRequestMetrics(metrics.Config{Registry: a.registry}))
		if _, err := metrics.RegisterPool(a.pool, metrics.Config{Registry: a.registry}); err != nil {
			return nil, fmt.Errorf("registering pool metrics: %w", err)
		}
	}

	var track router.TrackFunc
	if cfg.Track {
		track = router.DefaultTrack(logger)
		if cfg.TrackColor {
			track = router.ColoredTrack(os.Stdout)
		}
	}

	a.server = router.NewServer(router.ServerConfig{
		Logger:    logger,
		Aspects:   aspects,
		Submitter: a.pool,
		Track:     track,
	})

	a.server.GET("/health", healthHandler)
	a.server.RegisterBlueprint(apiBlueprint(a.server), "/api")

	if cfg.MetricsPath != "" {
		a.server.GET(cfg.MetricsPath, metrics.Handler(a.registry).ServeHTTP)
	}
	if cfg.StaticRoot != "" {
		if err := a.server.Static(cfg.StaticPrefix, cfg.StaticRoot); err != nil {
			return nil, err
		}
	}

	return a, nil
}

func apiBlueprint(srv *router.Server) *router.Blueprint {
	bp := srv.NewBlueprint()
	bp.GET("/echo/{message}", echoHandler)
	bp.POST("/hash/{value}", hashHandler, router.OnQueue("cpu"))
	bp.GET("/files/*", filesHandler)
	bp.ANY("/anything", anythingHandler)
	return bp
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = io.WriteString(w, `{"status":"ok"}`)
}

func echoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"message":%q,"trace_id":%q}`, router.GetParam(r, "message"), aspect.GetTraceID(r))
}

// hashHandler runs on the cpu queue.
func hashHandler(w http.ResponseWriter, r *http.Request) {
	h := sha256.New()
	h.Write([]byte(router.GetParam(r, "value")))
	if r.Body != nil {
		if _, err := io.Copy(h, r.Body); err != nil {
			http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"sha256":%q}`, hex.EncodeToString(h.Sum(nil)))
}

func filesHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"route":%q,"path":%q}`, router.FullPath(r), router.MatchPath(r))
}

func anythingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = fmt.Fprintf(w, `{"method":%q,"client_ip":%q}`, r.Method, aspect.ClientIP(r))
}
