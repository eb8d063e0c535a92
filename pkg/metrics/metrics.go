// Package metrics exports index telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const defaultNamespace = "jamofind"

// PrometheusObserver implements finder.Observer. A nil *PrometheusObserver is a no-op.
type PrometheusObserver struct {
	searchDuration *prometheus.HistogramVec
	searchResults  *prometheus.CounterVec
	emptySearches  *prometheus.CounterVec
	buildDuration  *prometheus.HistogramVec
	buildErrors    *prometheus.CounterVec
	records        *prometheus.GaugeVec
}

// NewPrometheusObserver registers the search and build metrics on reg.
// Registering twice against the same registry reuses the existing collectors.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = defaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Latency of index searches.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"index"}),
		searchResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_results_total",
			Help:      "Records returned by index searches.",
		}, []string{"index"}),
		emptySearches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_empty_total",
			Help:      "Searches that matched nothing.",
		}, []string{"index"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Time spent rebuilding an index.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"index"}),
		buildErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_errors_total",
			Help:      "Rebuilds that failed or were cancelled.",
		}, []string{"index"}),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_records",
			Help:      "Records held by the live index.",
		}, []string{"index"}),
	}

	var err error
	if o.searchDuration, err = register(reg, o.searchDuration); err != nil {
		return nil, err
	}
	if o.searchResults, err = register(reg, o.searchResults); err != nil {
		return nil, err
	}
	if o.emptySearches, err = register(reg, o.emptySearches); err != nil {
		return nil, err
	}
	if o.buildDuration, err = register(reg, o.buildDuration); err != nil {
		return nil, err
	}
	if o.buildErrors, err = register(reg, o.buildErrors); err != nil {
		return nil, err
	}
	if o.records, err = register(reg, o.records); err != nil {
		return nil, err
	}
	return o, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("register index metric: %w", err)
}

// ObserveSearch records one search against index.
func (o *PrometheusObserver) ObserveSearch(index string, duration time.Duration, results int) {
	if o == nil {
		return
	}
	o.searchDuration.WithLabelValues(index).Observe(duration.Seconds())
	o.searchResults.WithLabelValues(index).Add(float64(results))
	if results == 0 {
		o.emptySearches.WithLabelValues(index).Inc()
	}
}

// ObserveBuild records one rebuild. The record gauge only moves on success,
// since a failed rebuild leaves the previous index serving.
func (o *PrometheusObserver) ObserveBuild(index string, duration time.Duration, records int, err error) {
	if o == nil {
		return
	}
	o.buildDuration.WithLabelValues(index).Observe(duration.Seconds())
	if err != nil {
		o.buildErrors.WithLabelValues(index).Inc()
		return
	}
	o.records.WithLabelValues(index).Set(float64(records))
}
