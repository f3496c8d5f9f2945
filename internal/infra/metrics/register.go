package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

func register(cs ...prometheus.Collector) {
	for _, c := range cs {
		registry.MustRegister(c)
	}
}

// Handler serves the /metrics endpoint for this process registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
