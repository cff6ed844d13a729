package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the pipeline counters exposed on /metrics.
type Registry struct {
	reg *prometheus.Registry

	MessagesSeen       prometheus.Counter
	OrdersMatched      prometheus.Counter
	ReceiptsDispatched prometheus.Counter
	FetchFailures      prometheus.Counter
	ExtractFailures    prometheus.Counter
	RenderFailures     prometheus.Counter
	DispatchFailures   prometheus.Counter
	RenderLatencySec   prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	seen := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_messages_seen_total",
		Help: "Messages from the source channel that passed the author filter.",
	})
	matched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_orders_matched_total",
		Help: "Messages the classifier recognized as order notifications.",
	})
	dispatched := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_receipts_dispatched_total",
		Help: "Receipt documents handed to the output channel.",
	})
	fetchFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_fetch_failures_total",
		Help: "Partial messages that could not be re-fetched.",
	})
	extractFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_extract_failures_total",
		Help: "Classified messages missing a mandatory field.",
	})
	renderFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_render_failures_total",
		Help: "Receipt documents that failed to serialize.",
	})
	dispatchFail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orderbot_dispatch_failures_total",
		Help: "Outbound sends rejected by the chat API.",
	})
	renderLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "orderbot_render_latency_seconds",
		Help:    "Time to render one receipt document.",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(seen, matched, dispatched, fetchFail, extractFail, renderFail, dispatchFail, renderLatency)
	return &Registry{
		reg:                r,
		MessagesSeen:       seen,
		OrdersMatched:      matched,
		ReceiptsDispatched: dispatched,
		FetchFailures:      fetchFail,
		ExtractFailures:    extractFail,
		RenderFailures:     renderFail,
		DispatchFailures:   dispatchFail,
		RenderLatencySec:   renderLatency,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
