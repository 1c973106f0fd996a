// Package metrics exposes compiler statistics as Prometheus metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/broady/jsonmodel/compiler"
)

// Collector holds the compile metrics of one process.
type Collector struct {
	registry *prometheus.Registry

	Compiles        *prometheus.CounterVec
	CompileDuration *prometheus.HistogramVec

	// Per-compile statistics of the last compile, by language.
	Checkers  *prometheus.GaugeVec
	Inlined   *prometheus.GaugeVec
	DedupHits *prometheus.GaugeVec
	Regexes   *prometheus.GaugeVec
	Tables    *prometheus.GaugeVec
	Chains    *prometheus.GaugeVec
	Entries   *prometheus.GaugeVec
}

// New creates a collector on a fresh registry.
func New() *Collector {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry creates a collector registered on reg.
func NewWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	gauge := func(name, help string) *prometheus.GaugeVec {
		return factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "jmc",
			Name:      name,
			Help:      help,
		}, []string{"language"})
	}
	return &Collector{
		registry: reg,
		Compiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jmc",
			Name:      "compiles_total",
			Help:      "Total number of compiles by language and outcome",
		}, []string{"language", "status"}),
		CompileDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "jmc",
			Name:      "compile_duration_seconds",
			Help:      "Compile duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"language"}),
		Checkers:  gauge("checkers", "Checker functions emitted by the last compile"),
		Inlined:   gauge("inlined", "Checks inlined by the last compile"),
		DedupHits: gauge("dedup_hits", "Checkers shared by structural deduplication in the last compile"),
		Regexes:   gauge("regexes", "Distinct regular expressions of the last compile"),
		Tables:    gauge("dispatch_tables", "Table dispatches of the last compile"),
		Chains:    gauge("dispatch_chains", "Chain dispatches of the last compile"),
		Entries:   gauge("entries", "Entry points of the last compile"),
	}
}

// Registry returns the registry the collector is registered on.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe records one compile. A failed compile only counts as an error.
func (c *Collector) Observe(lang string, elapsed time.Duration, stats *compiler.Stats, err error) {
	if err != nil {
		c.Compiles.WithLabelValues(lang, "error").Inc()
		return
	}
	c.Compiles.WithLabelValues(lang, "ok").Inc()
	c.CompileDuration.WithLabelValues(lang).Observe(elapsed.Seconds())
	if stats == nil {
		return
	}
	c.Checkers.WithLabelValues(lang).Set(float64(stats.Checkers))
	c.Inlined.WithLabelValues(lang).Set(float64(stats.Inlined))
	c.DedupHits.WithLabelValues(lang).Set(float64(stats.DedupHits))
	c.Regexes.WithLabelValues(lang).Set(float64(stats.Regexes))
	c.Tables.WithLabelValues(lang).Set(float64(stats.Tables))
	c.Chains.WithLabelValues(lang).Set(float64(stats.Chains))
	c.Entries.WithLabelValues(lang).Set(float64(stats.Entries))
}

// WriteTextfile writes the metrics in the node_exporter textfile format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
