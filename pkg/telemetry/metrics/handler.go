package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the HTTP handler for the Prometheus metrics endpoint.
// It exposes all metrics registered on the default registry, which includes
// the budget/pacing collectors registered via promauto.
func Handler() http.Handler {
	return promhttp.Handler()
}
