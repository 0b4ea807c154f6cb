package rpc

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type EventListener interface {
	OnNewRequest(method string)
	OnRequestHandled(method string, took time.Duration)
	OnRequestFailed(method string, data any)
}

type SelectiveListener struct {
	OnNewRequestCb     func(method string)
	OnRequestHandledCb func(method string, took time.Duration)
	OnRequestFailedCb  func(method string, data any)
}

func (l *SelectiveListener) OnNewRequest(method string) {
	if l.OnNewRequestCb != nil {
		l.OnNewRequestCb(method)
	}
}

func (l *SelectiveListener) OnRequestHandled(method string, took time.Duration) {
	if l.OnRequestHandledCb != nil {
		l.OnRequestHandledCb(method, took)
	}
}

func (l *SelectiveListener) OnRequestFailed(method string, data any) {
	if l.OnRequestFailedCb != nil {
		l.OnRequestFailedCb(method, data)
	}
}

// NewMetricsListener counts requests and failures and records latencies per
// method.
func NewMetricsListener(registerer prometheus.Registerer) (*SelectiveListener, error) {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rpc",
		Subsystem: "client",
		Name:      "requests",
	}, []string{"method"})
	failedRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rpc",
		Subsystem: "client",
		Name:      "failed_requests",
	}, []string{"method", "error_code"})
	requestLatencies := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rpc",
		Subsystem: "client",
		Name:      "requests_latency",
	}, []string{"method"})
	for _, c := range []prometheus.Collector{requests, failedRequests, requestLatencies} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}

	return &SelectiveListener{
		OnNewRequestCb: func(method string) {
			requests.WithLabelValues(method).Inc()
		},
		OnRequestHandledCb: func(method string, took time.Duration) {
			requestLatencies.WithLabelValues(method).Observe(took.Seconds())
		},
		OnRequestFailedCb: func(method string, data any) {
			var errorCode string
			if rpcErr, ok := data.(*Error); ok {
				errorCode = strconv.Itoa(rpcErr.Code)
			}
			failedRequests.WithLabelValues(method, errorCode).Inc()
		},
	}, nil
}
