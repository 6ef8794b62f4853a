package profiling

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the scheduler's Prometheus collectors. Each instance owns its
// registry so tests and multiple sessions do not collide.
type Metrics struct {
	Registry *prometheus.Registry

	Ticks             prometheus.Counter
	Recomputes        *prometheus.CounterVec
	RecomputeDuration prometheus.Histogram
	EmittedInstances  prometheus.Gauge
	PresentCells      prometheus.Gauge
	ConfigRejected    prometheus.Counter
	RunState          *prometheus.GaugeVec
}

// NewMetrics creates and registers the collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voxelfield_ticks_total",
			Help: "Scheduler ticks processed",
		}),
		Recomputes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voxelfield_recomputes_total",
			Help: "Field recomputes by result",
		}, []string{"result"}),
		RecomputeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "voxelfield_recompute_duration_seconds",
			Help:    "Wall time of one full recompute",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		}),
		EmittedInstances: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelfield_emitted_instances",
			Help: "Visible instances written by the last recompute",
		}),
		PresentCells: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "voxelfield_present_cells",
			Help: "Cells sampled present by the last recompute",
		}),
		ConfigRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voxelfield_config_rejected_total",
			Help: "Configuration batches rejected during drain",
		}),
		RunState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "voxelfield_run_state",
			Help: "1 for the scheduler's current run state",
		}, []string{"state"}),
	}
	reg.MustRegister(
		m.Ticks,
		m.Recomputes,
		m.RecomputeDuration,
		m.EmittedInstances,
		m.PresentCells,
		m.ConfigRejected,
		m.RunState,
	)
	return m
}

// ObserveRecompute records a successful recompute
func (m *Metrics) ObserveRecompute(d time.Duration, present, emitted int) {
	if m == nil {
		return
	}
	m.Recomputes.WithLabelValues("ok").Inc()
	m.RecomputeDuration.Observe(d.Seconds())
	m.PresentCells.Set(float64(present))
	m.EmittedInstances.Set(float64(emitted))
}

// ObserveFailure records a failed recompute
func (m *Metrics) ObserveFailure() {
	if m == nil {
		return
	}
	m.Recomputes.WithLabelValues("error").Inc()
}

// ObserveTick counts one scheduler tick
func (m *Metrics) ObserveTick() {
	if m == nil {
		return
	}
	m.Ticks.Inc()
}

// ObserveRejected counts one rejected configuration batch
func (m *Metrics) ObserveRejected() {
	if m == nil {
		return
	}
	m.ConfigRejected.Inc()
}

// SetState marks state as the active run state
func (m *Metrics) SetState(state string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		v := 0.0
		if s == state {
			v = 1
		}
		m.RunState.WithLabelValues(s).Set(v)
	}
}

// Serve exposes the registry on addr at /metrics until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics endpoint listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
