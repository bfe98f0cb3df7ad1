// Package observe wires OpenTelemetry metrics for the prediction service and
// bridges them to a Prometheus scrape endpoint.
//
// Tests should build [Metrics] from their own [metric.MeterProvider] (for
// example an SDK provider with a ManualReader) instead of the exporter set up
// by [InitProvider].
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/bastiangx/nextword"

var (
	cacheHit  = metric.WithAttributes(attribute.String("cache", "hit"))
	cacheMiss = metric.WithAttributes(attribute.String("cache", "miss"))
)

// predictBuckets are in seconds; prediction is in-memory so most of the mass
// sits well under a millisecond.
var predictBuckets = []float64{
	0.00001, 0.000025, 0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01,
}

// Metrics holds the instruments recorded by the suggestion facade. All fields
// are safe for concurrent use.
type Metrics struct {
	// SuggestRequests counts Suggest calls, attribute "cache" = hit|miss.
	SuggestRequests metric.Int64Counter

	// CacheEvictions counts entries dropped by the LRU policy.
	CacheEvictions metric.Int64Counter

	// CacheEntries tracks the number of live cache entries.
	CacheEntries metric.Int64UpDownCounter

	// PredictDuration tracks back-off computation time on cache misses.
	PredictDuration metric.Float64Histogram

	// SuggestResults tracks how many suggestions each computation returned.
	SuggestResults metric.Int64Histogram
}

// NewMetrics creates every instrument from mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.SuggestRequests, err = m.Int64Counter("nextword.suggest.requests",
		metric.WithDescription("Suggestion requests by cache outcome."),
	); err != nil {
		return nil, err
	}
	if met.CacheEvictions, err = m.Int64Counter("nextword.cache.evictions",
		metric.WithDescription("Prediction cache entries evicted."),
	); err != nil {
		return nil, err
	}
	if met.CacheEntries, err = m.Int64UpDownCounter("nextword.cache.entries",
		metric.WithDescription("Live prediction cache entries."),
	); err != nil {
		return nil, err
	}
	if met.PredictDuration, err = m.Float64Histogram("nextword.predict.duration",
		metric.WithDescription("Latency of back-off prediction on cache misses."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(predictBuckets...),
	); err != nil {
		return nil, err
	}
	if met.SuggestResults, err = m.Int64Histogram("nextword.suggest.results",
		metric.WithDescription("Suggestions returned per computation."),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 4, 6, 8, 16, 32, 64),
	); err != nil {
		return nil, err
	}
	return met, nil
}

// Noop returns Metrics that record nothing.
func Noop() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// RecordHit counts a request served from cache.
func (m *Metrics) RecordHit() {
	m.SuggestRequests.Add(context.Background(), 1, cacheHit)
}

// RecordMiss counts a computed request with its latency and result size.
func (m *Metrics) RecordMiss(elapsed time.Duration, results int) {
	ctx := context.Background()
	m.SuggestRequests.Add(ctx, 1, cacheMiss)
	m.PredictDuration.Record(ctx, elapsed.Seconds())
	m.SuggestResults.Record(ctx, int64(results))
}

// RecordStore tracks entry growth and evictions after a cache insert.
func (m *Metrics) RecordStore(added, evicted int) {
	ctx := context.Background()
	if delta := added - evicted; delta != 0 {
		m.CacheEntries.Add(ctx, int64(delta))
	}
	if evicted > 0 {
		m.CacheEvictions.Add(ctx, int64(evicted))
	}
}

// RecordPurge drops n entries from the live gauge without counting them as
// evictions.
func (m *Metrics) RecordPurge(n int) {
	if n > 0 {
		m.CacheEntries.Add(context.Background(), int64(-n))
	}
}
