package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/basho-studio/storefront/api/controllers"
	"github.com/basho-studio/storefront/api/middleware"
	"github.com/basho-studio/storefront/internal/cart"
	"github.com/basho-studio/storefront/internal/catalog"
	"github.com/basho-studio/storefront/internal/pricing"
	"github.com/basho-studio/storefront/pkg/config"
	"github.com/basho-studio/storefront/pkg/logger"
	"github.com/basho-studio/storefront/pkg/metrics"
)

type offlineSource struct{}

var errOffline = errors.New("backend offline")

func (offlineSource) FetchProducts(context.Context) (json.RawMessage, error) { return nil, errOffline }

func (offlineSource) FetchProduct(context.Context, string) (json.RawMessage, error) {
	return nil, errOffline
}

func (offlineSource) FetchWorkshops(context.Context) (json.RawMessage, error) { return nil, errOffline }

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	logg := logger.Nop()

	reg := prometheus.NewRegistry()
	m := metrics.NewStorefront(reg)

	catalogSvc, err := catalog.NewService(offlineSource{}, logg, catalog.WithFixturesFallback(true), catalog.WithMetrics(m))
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	cartSvc, err := cart.NewService(cart.NewMemory(), catalogSvc, logg, cart.WithMetrics(m))
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}

	return NewRouter(
		cfg,
		logg,
		m,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		map[string]controllers.Pinger{"redis": stubPinger{}},
		nil,
		catalogSvc,
		cartSvc,
		nil,
		nil,
		pricing.DefaultRules(),
	)
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, resp.Code)
		}
	}
}

func TestCatalogServedFromFixturesWhenBackendIsDown(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products?featured=true", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if resp.Header().Get(middleware.CartSessionHeader) == "" {
		t.Fatalf("expected a minted cart session header")
	}

	var body struct {
		Data []catalog.Product `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Data) == 0 {
		t.Fatalf("expected featured fixtures")
	}
	for _, p := range body.Data {
		if !p.Featured {
			t.Fatalf("unexpected non-featured product %s", p.ID)
		}
	}
}

func TestCartRoundTripKeepsSession(t *testing.T) {
	router := newTestRouter(t)

	add := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"productId":"ceremonial-tea-bowl-001","variantCode":"#8B6F47","quantity":2}`))
	addResp := httptest.NewRecorder()
	router.ServeHTTP(addResp, add)
	if addResp.Code != http.StatusOK {
		t.Fatalf("add: expected 200 got %d: %s", addResp.Code, addResp.Body.String())
	}
	session := addResp.Header().Get(middleware.CartSessionHeader)

	update := httptest.NewRequest(http.MethodPatch, "/api/v1/cart/items/ceremonial-tea-bowl-001/%238B6F47", strings.NewReader(`{"quantity":1}`))
	update.Header.Set(middleware.CartSessionHeader, session)
	updateResp := httptest.NewRecorder()
	router.ServeHTTP(updateResp, update)
	if updateResp.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d: %s", updateResp.Code, updateResp.Body.String())
	}

	fetch := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	fetch.Header.Set(middleware.CartSessionHeader, session)
	fetchResp := httptest.NewRecorder()
	router.ServeHTTP(fetchResp, fetch)

	var body struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	if err := json.NewDecoder(fetchResp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.Count != 1 {
		t.Fatalf("expected count 1 got %d", body.Data.Count)
	}
	if fetchResp.Header().Get(middleware.CartSessionHeader) != session {
		t.Fatalf("expected session to be echoed back")
	}
}

func TestWorkshopCalendarRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/workshops/wheel-throwing-basics-001/calendar?month=2026-01", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUnwiredServicesAnswerInternalError(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v1/workshops/wheel-throwing-basics-001/booking/submit", strings.NewReader(`{}`))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/cart/items", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", middleware.CartSessionHeader)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if got := resp.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin, got %q", got)
	}
}

func TestMetricsExposeRequestDurations(t *testing.T) {
	router := newTestRouter(t)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "basho_http_request_duration_seconds") {
		t.Fatalf("expected request histogram in metrics output")
	}
	if !strings.Contains(string(body), "basho_catalog_fallbacks_total") {
		t.Fatalf("expected catalog fallback counter in metrics output")
	}
}
