package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wallspace"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "inflight_requests",
		Help:      "Current number of in-flight HTTP requests.",
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests handled.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "route"})

	bookingsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bookings",
		Name:      "created_total",
		Help:      "Bookings inserted, by initial status.",
	}, []string{"status"})

	bookingConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bookings",
		Name:      "conflicts_total",
		Help:      "Reservations refused because the space was already taken.",
	})

	bookingTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "bookings",
		Name:      "transitions_total",
		Help:      "Applied booking status transitions.",
	}, []string{"from", "to"})

	paymentConfirmations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "payments",
		Name:      "confirmations_total",
		Help:      "Payment confirmation attempts by result.",
	}, []string{"result"})

	eventsHandled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "handled_total",
		Help:      "Domain events consumed by handler and result.",
	}, []string{"handler", "result"})
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		bookingsCreated,
		bookingConflicts,
		bookingTransitions,
		paymentConfirmations,
		eventsHandled,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler records request count and latency keyed by the chi route pattern.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// RecordBookingCreated counts a newly inserted booking.
func RecordBookingCreated(status string) {
	bookingsCreated.WithLabelValues(status).Inc()
}

// RecordBookingConflict counts a refused reservation.
func RecordBookingConflict() {
	bookingConflicts.Inc()
}

// RecordTransition counts an applied status change.
func RecordTransition(from, to string) {
	bookingTransitions.WithLabelValues(from, to).Inc()
}

// RecordPaymentConfirmation counts a confirm attempt ("confirmed", "replayed", "rejected", "failed").
func RecordPaymentConfirmation(result string) {
	paymentConfirmations.WithLabelValues(result).Inc()
}

// RecordEventHandled counts a consumed domain event.
func RecordEventHandled(handler string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsHandled.WithLabelValues(handler, result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
