package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "basho"

// Storefront records cart, catalog, booking and checkout activity. A nil
// *Storefront is valid and records nothing.
type Storefront struct {
	requestDuration    *prometheus.HistogramVec
	cartMutations      *prometheus.CounterVec
	catalogFallbacks   *prometheus.CounterVec
	bookingSubmissions *prometheus.CounterVec
	checkoutOrders     *prometheus.CounterVec
	jobRuns            *prometheus.CounterVec
	jobDuration        *prometheus.HistogramVec
}

// NewStorefront registers the storefront metrics on the provided registerer.
func NewStorefront(reg prometheus.Registerer) *Storefront {
	if reg == nil {
		return &Storefront{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Cart mutations by operation and outcome.",
	}, []string{"op", "outcome"})
	catalogFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_fallbacks_total",
		Help:      "Catalog reads served from static fixtures.",
	}, []string{"resource"})
	bookingSubmissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "booking_submissions_total",
		Help:      "Workshop booking submissions by outcome.",
	}, []string{"outcome"})
	checkoutOrders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "checkout_orders_total",
		Help:      "Checkout order creations and confirmations by stage and outcome.",
	}, []string{"stage", "outcome"})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduled_job_runs_total",
		Help:      "Scheduled maintenance job runs by job and outcome.",
	}, []string{"job", "outcome"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scheduled_job_duration_seconds",
		Help:      "Duration of scheduled maintenance jobs in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	reg.MustRegister(requestDuration, cartMutations, catalogFallbacks, bookingSubmissions, checkoutOrders, jobRuns, jobDuration)
	return &Storefront{
		requestDuration:    requestDuration,
		cartMutations:      cartMutations,
		catalogFallbacks:   catalogFallbacks,
		bookingSubmissions: bookingSubmissions,
		checkoutOrders:     checkoutOrders,
		jobRuns:            jobRuns,
		jobDuration:        jobDuration,
	}
}

// ObserveRequest records an HTTP request against its route pattern.
func (m *Storefront) ObserveRequest(route string, status int, duration time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	m.requestDuration.WithLabelValues(normalizeLabel(route), strconv.Itoa(status)).Observe(duration.Seconds())
}

func (m *Storefront) CartMutation(op, outcome string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op), normalizeLabel(outcome)).Inc()
}

func (m *Storefront) CatalogFallback(resource string) {
	if m == nil || m.catalogFallbacks == nil {
		return
	}
	m.catalogFallbacks.WithLabelValues(normalizeLabel(resource)).Inc()
}

func (m *Storefront) BookingSubmission(outcome string) {
	if m == nil || m.bookingSubmissions == nil {
		return
	}
	m.bookingSubmissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *Storefront) CheckoutOrder(stage, outcome string) {
	if m == nil || m.checkoutOrders == nil {
		return
	}
	m.checkoutOrders.WithLabelValues(normalizeLabel(stage), normalizeLabel(outcome)).Inc()
}

// ScheduledJob records one run of a maintenance job.
func (m *Storefront) ScheduledJob(job, outcome string, duration time.Duration) {
	if m == nil || m.jobRuns == nil {
		return
	}
	m.jobRuns.WithLabelValues(normalizeLabel(job), normalizeLabel(outcome)).Inc()
	m.jobDuration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
