package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var registerOnce sync.Once

// Register registers every collector with the default registry. Safe to call
// more than once; only the first call has an effect.
func Register() {
	registerOnce.Do(func() {
		var all []prometheus.Collector
		all = append(all, embeddingCollectors()...)
		all = append(all, ragCollectors()...)
		all = append(all, httpRequestDuration, httpRequestsTotal)
		prometheus.MustRegister(all...)
	})
}
