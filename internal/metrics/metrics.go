package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry groups the storefront collectors. A nil *Registry is valid and
// records nothing, so components can be built without metrics in tests.
type Registry struct {
	reg             *prometheus.Registry
	GatewayRequests *prometheus.CounterVec
	GatewayLatency  *prometheus.HistogramVec
	StoreMutations  *prometheus.CounterVec
	PersistFailures *prometheus.CounterVec
	StateRecoveries *prometheus.CounterVec
	CartItems       prometheus.Gauge
	EventsPublished *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	gatewayRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hakey_catalog_requests_total",
		Help: "Remote catalog calls by operation and outcome.",
	}, []string{"op", "outcome"})
	gatewayLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hakey_catalog_request_seconds",
		Help:    "Remote catalog round-trip latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	storeMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hakey_store_mutations_total",
		Help: "State store actions applied.",
	}, []string{"store", "action"})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hakey_store_persist_failures_total",
		Help: "Best-effort local storage writes that failed.",
	}, []string{"store"})
	recoveries := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hakey_store_state_recoveries_total",
		Help: "Malformed persisted records replaced by empty state.",
	}, []string{"store"})
	cartItems := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hakey_cart_items",
		Help: "Units currently in the cart.",
	})
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hakey_events_published_total",
		Help: "Activity events handed to the publisher.",
	}, []string{"outcome"})

	r.MustRegister(gatewayRequests, gatewayLatency, storeMutations, persistFailures, recoveries, cartItems, events)

	return &Registry{
		reg:             r,
		GatewayRequests: gatewayRequests,
		GatewayLatency:  gatewayLatency,
		StoreMutations:  storeMutations,
		PersistFailures: persistFailures,
		StateRecoveries: recoveries,
		CartItems:       cartItems,
		EventsPublished: events,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

func (r *Registry) ObserveGateway(op, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.GatewayRequests.WithLabelValues(op, outcome).Inc()
	r.GatewayLatency.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (r *Registry) Mutation(store, action string) {
	if r == nil {
		return
	}
	r.StoreMutations.WithLabelValues(store, action).Inc()
}

func (r *Registry) PersistFailed(store string) {
	if r == nil {
		return
	}
	r.PersistFailures.WithLabelValues(store).Inc()
}

func (r *Registry) Recovered(store string) {
	if r == nil {
		return
	}
	r.StateRecoveries.WithLabelValues(store).Inc()
}

func (r *Registry) SetCartItems(n int) {
	if r == nil {
		return
	}
	r.CartItems.Set(float64(n))
}

func (r *Registry) EventPublished(ok bool) {
	if r == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	r.EventsPublished.WithLabelValues(outcome).Inc()
}
