package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue gathers reg and returns the counter value for the metric with the given labels.
func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestCollector_Counters(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	c := NewCollector()
	require.NoError(t, reg.Register(c))

	c.CacheHit("albumlike:album-1")
	c.CacheMiss("albumlike:album-2")
	c.CacheMiss("albumlike:album-3")
	c.PlaylistMutation("add", nil)
	c.PlaylistMutation("add", errors.New("boom"))
	c.LikeToggled(true)
	c.ExportMessage("enqueued")
	c.ObserveRequest("GET", "/api/v1/albums/{id}", 200, 3*time.Millisecond)

	assert.Equal(t, 1.0, counterValue(t, reg, "openmusic_cache_lookups_total",
		map[string]string{"family": "albumlike", "result": "hit"}))
	assert.Equal(t, 2.0, counterValue(t, reg, "openmusic_cache_lookups_total",
		map[string]string{"family": "albumlike", "result": "miss"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "openmusic_playlist_mutations_total",
		map[string]string{"action": "add", "outcome": "error"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "openmusic_album_like_toggles_total",
		map[string]string{"state": "liked"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "openmusic_export_messages_total",
		map[string]string{"stage": "enqueued"}))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.CacheHit("k")
		c.CacheMiss("k")
		c.PlaylistMutation("delete", nil)
		c.LikeToggled(false)
		c.ExportMessage("processed")
		c.ObserveRequest("GET", "", 404, time.Millisecond)
	})
}

func TestFamily(t *testing.T) {
	assert.Equal(t, "albumlike", family("albumlike:album-1"))
	assert.Equal(t, "other", family("plain"))
}
