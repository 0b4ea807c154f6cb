package db

import (
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// NewMetricsListener records read and write latencies in microseconds.
func NewMetricsListener(registerer prometheus.Registerer) (*SelectiveListener, error) {
	buckets := []float64{5, 10, 20, 50, 100, 200, 500, 1000, 10000, 100000, math.Inf(0)}
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "db",
		Name:      "io_latency",
		Buckets:   buckets,
	}, []string{"op"})
	if err := registerer.Register(latency); err != nil {
		return nil, err
	}

	return &SelectiveListener{
		OnIOCb: func(write bool, duration time.Duration) {
			op := "read"
			if write {
				op = "write"
			}
			latency.WithLabelValues(op).Observe(float64(duration.Microseconds()))
		},
	}, nil
}
