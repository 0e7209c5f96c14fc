// Package metrics defines the Prometheus collectors for tool calls and the
// geo pipeline, and the HTTP handler that exposes them.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "photogeo"

var (
	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tool",
		Name:      "calls_total",
		Help:      "Total MCP tool calls by outcome",
	}, []string{"tool", "outcome"})

	toolCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tool",
		Name:      "call_duration_seconds",
		Help:      "MCP tool call latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"tool"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tool",
		Name:      "rate_limited_total",
		Help:      "Tool calls rejected because the rate limiter wait failed",
	})

	// PointsIn and PointsOut count photos entering and leaving a pipeline
	// stage ("cluster" or "reduce").
	PointsIn = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "points_in_total",
		Help:      "Points submitted to a pipeline stage",
	}, []string{"stage"})

	PointsOut = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "points_out_total",
		Help:      "Points or clusters produced by a pipeline stage",
	}, []string{"stage"})

	SkippedPoints = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "skipped_points_total",
		Help:      "Points dropped for invalid coordinates",
	}, []string{"stage"})

	LODSelected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "viewport",
		Name:      "lod_selected_total",
		Help:      "Level of detail chosen per reduction",
	}, []string{"lod"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Memoized results served from cache",
	}, []string{"tool"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Results computed because they were not cached",
	}, []string{"tool"})
)

// Outcome labels for ObserveToolCall.
const (
	OutcomeOK          = "ok"
	OutcomeToolError   = "tool_error"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// ObserveToolCall records one finished tool call.
func ObserveToolCall(tool, outcome string, d time.Duration) {
	toolCallsTotal.WithLabelValues(tool, outcome).Inc()
	toolCallDuration.WithLabelValues(tool).Observe(d.Seconds())
	if outcome == OutcomeRateLimited {
		rateLimited.Inc()
	}
}

// ObserveCache records a memoized lookup for tool.
func ObserveCache(tool string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(tool).Inc()
		return
	}
	CacheMisses.WithLabelValues(tool).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Serve exposes /metrics on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("metrics listener started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
