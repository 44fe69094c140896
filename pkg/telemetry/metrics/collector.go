// Package metrics exposes Prometheus metrics about compliance runs.
//
// The collector matters mostly in watch mode, where the process is long
// lived and a scrape shows whether the tree is still clean without
// tailing logs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled turns metric recording on. When false every Record method
	// is a no-op.
	Enabled bool

	// Namespace is the Prometheus metric namespace. Default: "callisto"
	Namespace string

	// RunDurationBuckets are the histogram buckets for run durations in
	// seconds. Defaults cover 10ms to 60s.
	RunDurationBuckets []float64
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Namespace: "callisto",
	}
}

// Collector registers and records all compliance run metrics.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	packagesScanned  prometheus.Gauge
	conflicts        prometheus.Gauge
	undetermined     prometheus.Gauge
	malformed        prometheus.Gauge
	parseCacheHits   prometheus.Counter
	parseCacheMisses prometheus.Counter
	recheckTotal     *prometheus.CounterVec
}

// NewCollector creates a metrics collector with the specified
// configuration and Prometheus registry. If registry is nil, a fresh
// registry is used.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "callisto"
	}
	if len(cfg.RunDurationBuckets) == 0 {
		cfg.RunDurationBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 15.0, 60.0}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "runs_total",
			Help:      "Completed compliance runs by mode and verdict status.",
		}, []string{"mode", "status"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of compliance runs.",
			Buckets:   cfg.RunDurationBuckets,
		}),
		packagesScanned: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "packages_scanned",
			Help:      "Packages covered by the most recent run.",
		}),
		conflicts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "conflicts",
			Help:      "Incompatible packages found by the most recent run.",
		}),
		undetermined: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "undetermined",
			Help:      "Packages the most recent run could not classify.",
		}),
		malformed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "malformed_expressions",
			Help:      "License expressions that failed strict parsing in the most recent run.",
		}),
		parseCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "parse_cache_hits_total",
			Help:      "Expression parse cache hits.",
		}),
		parseCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "parse_cache_misses_total",
			Help:      "Expression parse cache misses.",
		}),
		recheckTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "rechecks_total",
			Help:      "Watch-mode re-checks by trigger (fsevent, schedule).",
		}, []string{"trigger"}),
	}

	registry.MustRegister(
		c.runsTotal, c.runDuration, c.packagesScanned,
		c.conflicts, c.undetermined, c.malformed,
		c.parseCacheHits, c.parseCacheMisses, c.recheckTotal,
	)

	return c
}

// RecordRun records the outcome of one completed run.
func (c *Collector) RecordRun(mode, status string, duration time.Duration, packages, conflicts, undetermined, malformed int) {
	if !c.config.Enabled {
		return
	}
	if status == "" {
		status = "none"
	}
	c.runsTotal.WithLabelValues(mode, status).Inc()
	c.runDuration.Observe(duration.Seconds())
	c.packagesScanned.Set(float64(packages))
	c.conflicts.Set(float64(conflicts))
	c.undetermined.Set(float64(undetermined))
	c.malformed.Set(float64(malformed))
}

// RecordCacheHit records an expression parse cache hit.
func (c *Collector) RecordCacheHit() {
	if !c.config.Enabled {
		return
	}
	c.parseCacheHits.Inc()
}

// RecordCacheMiss records an expression parse cache miss.
func (c *Collector) RecordCacheMiss() {
	if !c.config.Enabled {
		return
	}
	c.parseCacheMisses.Inc()
}

// RecordRecheck records a watch-mode re-check and its trigger.
func (c *Collector) RecordRecheck(trigger string) {
	if !c.config.Enabled {
		return
	}
	c.recheckTotal.WithLabelValues(trigger).Inc()
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the collector's metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
