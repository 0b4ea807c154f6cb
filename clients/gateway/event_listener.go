package gateway

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type EventListener interface {
	OnResponse(urlPath string, status int, took time.Duration)
}

type SelectiveListener struct {
	OnResponseCb func(urlPath string, status int, took time.Duration)
}

func (l *SelectiveListener) OnResponse(urlPath string, status int, took time.Duration) {
	if l.OnResponseCb != nil {
		l.OnResponseCb(urlPath, status, took)
	}
}

// NewMetricsListener records request latencies per endpoint and status.
func NewMetricsListener(registerer prometheus.Registerer) (*SelectiveListener, error) {
	requestLatencies := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gateway",
		Subsystem: "client",
		Name:      "request_latency",
	}, []string{"method", "status"})
	if err := registerer.Register(requestLatencies); err != nil {
		return nil, err
	}
	return &SelectiveListener{
		OnResponseCb: func(urlPath string, status int, took time.Duration) {
			statusString := strconv.FormatInt(int64(status), 10)
			requestLatencies.WithLabelValues(urlPath, statusString).Observe(took.Seconds())
		},
	}, nil
}
