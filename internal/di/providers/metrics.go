package providers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do/v2"

	"github.com/openmusic/openmusic-server/internal/config"
	"github.com/openmusic/openmusic-server/internal/metrics"
)

// MetricsHandle carries the collector and the exposition handler.
// Handler is nil when metrics are disabled.
type MetricsHandle struct {
	Collector *metrics.Collector
	Handler   http.Handler
}

// ProvideMetrics registers the OpenMusic collector with a dedicated registry.
func ProvideMetrics(i do.Injector) (*MetricsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	if !cfg.Metrics.Enabled {
		return &MetricsHandle{}, nil
	}

	collector := metrics.NewCollector()
	registry := prometheus.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return nil, err
	}
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &MetricsHandle{
		Collector: collector,
		Handler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
	}, nil
}

// ProvideCollector exposes the collector alone; nil when metrics are disabled.
func ProvideCollector(i do.Injector) (*metrics.Collector, error) {
	return do.MustInvoke[*MetricsHandle](i).Collector, nil
}
