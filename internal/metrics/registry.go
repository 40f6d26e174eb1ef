package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "devpairs"

// Registry holds the metrics of a single analysis run. It satisfies
// github.Recorder so the commit source can report into it directly.
type Registry struct {
	registry *prometheus.Registry

	commitsFetched prometheus.Counter
	commitFailures prometheus.Counter
	pagesFetched   prometheus.Counter
	fetchDuration  prometheus.Histogram
	cacheHits      prometheus.Counter
	pairsFound     *prometheus.GaugeVec
}

// NewRegistry creates a registry with every run metric registered
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	auto := promauto.With(reg)

	return &Registry{
		registry: reg,
		commitsFetched: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commits_fetched_total",
			Help:      "Commits whose details were fetched successfully",
		}),
		commitFailures: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commit_fetch_failures_total",
			Help:      "Commit detail fetches that failed and were skipped",
		}),
		pagesFetched: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Commit list pages retrieved",
		}),
		fetchDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "commit_fetch_duration_seconds",
			Help:      "Latency of commit detail requests",
			Buckets:   prometheus.DefBuckets,
		}),
		cacheHits: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Analyses served from a cached commit snapshot",
		}),
		pairsFound: auto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pairs_found",
			Help:      "Developer pairs reported by the last analysis",
		}, []string{"mode"}),
	}
}

func (r *Registry) PageFetched() {
	r.pagesFetched.Inc()
}

func (r *Registry) CommitFetched(elapsed time.Duration) {
	r.commitsFetched.Inc()
	r.fetchDuration.Observe(elapsed.Seconds())
}

func (r *Registry) CommitFailed() {
	r.commitFailures.Inc()
}

func (r *Registry) CacheHit() {
	r.cacheHits.Inc()
}

// PairsFound records the size of the final pair list for a mode
func (r *Registry) PairsFound(mode string, n int) {
	r.pairsFound.WithLabelValues(mode).Set(float64(n))
}

// Gatherer exposes the underlying registry, mainly for tests and exporters
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes the registry in the node_exporter textfile format
func (r *Registry) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
