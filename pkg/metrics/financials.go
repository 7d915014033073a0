package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FinancialsMetrics records metadata for financial view derivations.
type FinancialsMetrics struct {
	duration   *prometheus.HistogramVec
	cacheHits  prometheus.Counter
	cacheMiss  prometheus.Counter
	refreshes  *prometheus.CounterVec
	batchSizes prometheus.Histogram
}

// NewFinancialsMetrics registers the financials metrics on the provided registerer.
func NewFinancialsMetrics(reg prometheus.Registerer) *FinancialsMetrics {
	if reg == nil {
		return &FinancialsMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "financials_derivation_duration_seconds",
		Help:    "Duration of order financial derivations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "financials_cache_hits",
		Help: "Financial view cache hits.",
	})
	cacheMiss := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "financials_cache_misses",
		Help: "Financial view cache misses.",
	})
	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "price_snapshot_refreshes",
		Help: "Price snapshot refresh attempts by outcome.",
	}, []string{"outcome"})
	batchSizes := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "financials_batch_size",
		Help:    "Number of orders per batch financials request.",
		Buckets: []float64{1, 5, 10, 25, 50, 100},
	})
	reg.MustRegister(duration, cacheHits, cacheMiss, refreshes, batchSizes)
	return &FinancialsMetrics{
		duration:   duration,
		cacheHits:  cacheHits,
		cacheMiss:  cacheMiss,
		refreshes:  refreshes,
		batchSizes: batchSizes,
	}
}

// ObserveDerivation records the duration of the named derivation.
func (f *FinancialsMetrics) ObserveDerivation(operation string, duration time.Duration) {
	if f == nil || f.duration == nil {
		return
	}
	f.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}

// IncCacheHit increments the view cache hit counter.
func (f *FinancialsMetrics) IncCacheHit() {
	if f == nil || f.cacheHits == nil {
		return
	}
	f.cacheHits.Inc()
}

// IncCacheMiss increments the view cache miss counter.
func (f *FinancialsMetrics) IncCacheMiss() {
	if f == nil || f.cacheMiss == nil {
		return
	}
	f.cacheMiss.Inc()
}

// IncPriceRefresh counts a price snapshot refresh attempt by outcome.
func (f *FinancialsMetrics) IncPriceRefresh(outcome string) {
	if f == nil || f.refreshes == nil {
		return
	}
	f.refreshes.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveBatchSize records the size of a batch financials request.
func (f *FinancialsMetrics) ObserveBatchSize(size int) {
	if f == nil || f.batchSizes == nil {
		return
	}
	f.batchSizes.Observe(float64(size))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
