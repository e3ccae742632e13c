// Package metrics exposes Prometheus counters for the catalog's write paths,
// the derived-value cache and the export queue.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "openmusic"

// Collector is a prometheus.Collector for OpenMusic server metrics.
// A nil *Collector is valid and records nothing.
type Collector struct {
	cacheLookups      *prometheus.CounterVec
	playlistMutations *prometheus.CounterVec
	likeToggles       *prometheus.CounterVec
	exportMessages    *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cache_lookups_total",
				Help:      "Cache lookups by key family and result.",
			}, []string{"family", "result"},
		),
		playlistMutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "playlist_mutations_total",
				Help:      "Playlist membership changes by action and outcome.",
			}, []string{"action", "outcome"},
		),
		likeToggles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "album_like_toggles_total",
				Help:      "Album like toggles by resulting state.",
			}, []string{"state"},
		),
		exportMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "export_messages_total",
				Help:      "Export queue messages by stage.",
			}, []string{"stage"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route and status.",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			}, []string{"method", "route", "status"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.cacheLookups.Describe(ch)
	c.playlistMutations.Describe(ch)
	c.likeToggles.Describe(ch)
	c.exportMessages.Describe(ch)
	c.requestDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.cacheLookups.Collect(ch)
	c.playlistMutations.Collect(ch)
	c.likeToggles.Collect(ch)
	c.exportMessages.Collect(ch)
	c.requestDuration.Collect(ch)
}

// CacheHit implements cache.Observer.
func (c *Collector) CacheHit(key string) {
	if c == nil {
		return
	}
	c.cacheLookups.WithLabelValues(family(key), "hit").Inc()
}

// CacheMiss implements cache.Observer.
func (c *Collector) CacheMiss(key string) {
	if c == nil {
		return
	}
	c.cacheLookups.WithLabelValues(family(key), "miss").Inc()
}

// PlaylistMutation records an add or delete attempt.
func (c *Collector) PlaylistMutation(action string, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.playlistMutations.WithLabelValues(action, outcome).Inc()
}

// LikeToggled records a successful toggle.
func (c *Collector) LikeToggled(liked bool) {
	if c == nil {
		return
	}
	state := "disliked"
	if liked {
		state = "liked"
	}
	c.likeToggles.WithLabelValues(state).Inc()
}

// ExportMessage records an export message reaching stage
// ("enqueued", "processed", "dead_lettered").
func (c *Collector) ExportMessage(stage string) {
	if c == nil {
		return
	}
	c.exportMessages.WithLabelValues(stage).Inc()
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// family keeps label cardinality bounded: "albumlike:album-x" becomes "albumlike".
func family(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}
