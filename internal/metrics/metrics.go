package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capi_relay_events_received_total",
		Help: "Total number of collect requests that reached the handler.",
	})

	EventsAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capi_relay_events_accepted_total",
		Help: "Total number of non-duplicate events forwarded to the provider.",
	})

	EventsDuplicate = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capi_relay_events_duplicate_total",
		Help: "Total number of events suppressed by the dedup store.",
	})

	EventsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capi_relay_events_rejected_total",
		Help: "Total number of rejected requests, labelled by reason.",
	}, []string{"reason"})

	ForwardFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capi_relay_forward_failures_total",
		Help: "Total number of provider calls that failed or returned non-2xx.",
	})

	StoreFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capi_relay_store_failures_total",
		Help: "Total number of dedup/counter store operations that failed.",
	})
)
