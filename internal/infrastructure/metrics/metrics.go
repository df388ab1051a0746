package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// NewCounter registers the service wide counter. Labels are the event names
// incremented across the code base, e.g. "file_uploaded_total".
func NewCounter() *prometheus.CounterVec {
	return promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fileshare",
			Name:      "general_counters",
		},
		[]string{"result"})
}
