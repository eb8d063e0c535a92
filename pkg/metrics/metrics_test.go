package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserverRecordsSearches(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)

	o.ObserveSearch("region", time.Millisecond, 3)
	o.ObserveSearch("region", time.Millisecond, 0)
	o.ObserveSearch("apart", time.Millisecond, 1)

	assert.Equal(t, 3.0, testutil.ToFloat64(o.searchResults.WithLabelValues("region")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.emptySearches.WithLabelValues("region")))
	assert.Equal(t, 1.0, testutil.ToFloat64(o.searchResults.WithLabelValues("apart")))
	assert.Equal(t, 2, testutil.CollectAndCount(o.searchDuration))
}

func TestObserverRecordsBuilds(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)

	o.ObserveBuild("region", time.Second, 120, nil)
	o.ObserveBuild("region", time.Second, 5, errors.New("cancelled"))

	assert.Equal(t, 120.0, testutil.ToFloat64(o.records.WithLabelValues("region")), "failed build keeps the gauge")
	assert.Equal(t, 1.0, testutil.ToFloat64(o.buildErrors.WithLabelValues("region")))
}

func TestObserverReRegistrationReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)
	second, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)

	second.ObserveSearch("region", time.Millisecond, 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(first.searchResults.WithLabelValues("region")))
}

func TestNilObserverIsNoop(t *testing.T) {
	var o *PrometheusObserver
	assert.NotPanics(t, func() {
		o.ObserveSearch("region", time.Millisecond, 1)
		o.ObserveBuild("region", time.Millisecond, 1, nil)
	})
}
