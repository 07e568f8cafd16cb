package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestStorefrontExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewStorefront(reg)
	metrics.ObserveRequest("/api/v1/cart", 200, 120*time.Millisecond)
	metrics.CartMutation("add", "ok")
	metrics.CartMutation("add", "ok")
	metrics.CatalogFallback("workshops")
	metrics.BookingSubmission("")
	metrics.CheckoutOrder("start", "ok")
	metrics.ScheduledJob("cart_snapshot_purge", "failed", 40*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "basho_cart_mutations_total", "op", "add"); err != nil {
		t.Fatalf("fetch cart mutations: %v", err)
	} else if got != 2 {
		t.Fatalf("expected cart mutations=2, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "basho_catalog_fallbacks_total", "resource", "workshops"); err != nil {
		t.Fatalf("fetch fallbacks: %v", err)
	} else if got != 1 {
		t.Fatalf("expected fallbacks=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "basho_booking_submissions_total", "outcome", "unknown"); err != nil {
		t.Fatalf("fetch submissions: %v", err)
	} else if got != 1 {
		t.Fatalf("expected submissions=1, got %f", got)
	}

	if got, err := fetchCounterValue(mfs, "basho_scheduled_job_runs_total", "outcome", "failed"); err != nil {
		t.Fatalf("fetch job runs: %v", err)
	} else if got != 1 {
		t.Fatalf("expected job runs=1, got %f", got)
	}

	if got, err := fetchHistogramSum(mfs, "basho_http_request_duration_seconds", "route", "/api/v1/cart"); err != nil {
		t.Fatalf("fetch duration: %v", err)
	} else if got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f", got)
	}
}

func TestNilStorefrontIsNoop(t *testing.T) {
	var metrics *Storefront
	metrics.CartMutation("add", "ok")
	metrics.CatalogFallback("products")
	metrics.BookingSubmission("ok")
	metrics.CheckoutOrder("confirm", "ok")
	metrics.ObserveRequest("/", 200, time.Millisecond)
	metrics.ScheduledJob("cart_snapshot_purge", "ok", time.Millisecond)

	unregistered := NewStorefront(nil)
	unregistered.CartMutation("add", "ok")
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func fetchHistogramSum(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetHistogram().GetSampleSum(), nil
		}
	}
	return 0, fmt.Errorf("histogram %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
