package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/basho-studio/storefront/api/controllers"
	cartcontrollers "github.com/basho-studio/storefront/api/controllers/cart"
	"github.com/basho-studio/storefront/api/middleware"
	"github.com/basho-studio/storefront/internal/booking"
	"github.com/basho-studio/storefront/internal/cart"
	"github.com/basho-studio/storefront/internal/catalog"
	checkoutsvc "github.com/basho-studio/storefront/internal/checkout"
	"github.com/basho-studio/storefront/internal/pricing"
	"github.com/basho-studio/storefront/pkg/config"
	"github.com/basho-studio/storefront/pkg/logger"
	"github.com/basho-studio/storefront/pkg/metrics"
	"github.com/basho-studio/storefront/pkg/redis"
)

// NewRouter wires the storefront API. redisClient may be nil, in which case
// idempotent replay and submit rate limiting are disabled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	m *metrics.Storefront,
	metricsHandler http.Handler,
	readyChecks map[string]controllers.Pinger,
	redisClient *redis.Client,
	catalogService catalog.Service,
	cartService cart.Service,
	submitter *booking.Submitter,
	checkoutService checkoutsvc.Service,
	rules pricing.Rules,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, m),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	// A nil *redis.Client must not reach the middleware as a non-nil interface.
	var (
		idempotencyStore redis.IdempotencyStore
		limiterStore     middleware.RateLimitStore
	)
	if redisClient != nil {
		idempotencyStore = redisClient
		limiterStore = redisClient
	}
	submitReplay := middleware.Idempotency(idempotencyStore, middleware.IdempotencyPolicy{
		Scope: "booking_submit",
		TTL:   cfg.Booking.IdempotencyTTL,
	}, logg)
	checkoutReplay := middleware.Idempotency(idempotencyStore, middleware.IdempotencyPolicy{
		Scope: "checkout",
		TTL:   cfg.Booking.CheckoutIdempotencyTTL,
	}, logg)
	var bookingSubmitter interface {
		Submit(context.Context, string, catalog.Workshop, booking.State) (booking.State, error)
	}
	if submitter != nil {
		bookingSubmitter = submitter
	}
	submitLimit := middleware.NewRateLimitPolicy("booking_submit", cfg.RateLimit.SubmitWindow, cfg.RateLimit.SubmitLimit)
	checkoutLimit := middleware.NewRateLimitPolicy("checkout", cfg.RateLimit.SubmitWindow, cfg.RateLimit.SubmitLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readyChecks))
	})
	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Use(middleware.CartSession(logg))
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.CartSession(logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(catalogService, logg))
			r.Get("/{productId}", controllers.ProductDetail(catalogService, logg))
		})

		r.Route("/workshops", func(r chi.Router) {
			r.Get("/", controllers.WorkshopList(catalogService, logg))
			r.Route("/{workshopId}", func(r chi.Router) {
				r.Get("/", controllers.WorkshopDetail(catalogService, logg))
				r.Get("/calendar", controllers.WorkshopCalendar(catalogService, logg, nil))
				r.Get("/slots", controllers.WorkshopSlots(catalogService, logg))
				r.Route("/booking", func(r chi.Router) {
					r.Post("/", controllers.BookingStart(catalogService, rules, logg))
					r.Post("/transition", controllers.BookingTransition(catalogService, rules, logg))
					r.With(
						middleware.RateLimit(submitLimit, limiterStore, logg),
						submitReplay,
					).Post("/submit", controllers.BookingSubmit(catalogService, bookingSubmitter, rules, logg))
				})
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(cartService, logg))
			r.Delete("/", cartcontrollers.CartClear(cartService, logg))
			r.Post("/items", cartcontrollers.CartAddItem(cartService, logg))
			r.Patch("/items/{productId}/{variantCode}", cartcontrollers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{productId}/{variantCode}", cartcontrollers.CartRemoveItem(cartService, logg))
		})

		checkoutGuards := chi.Chain(middleware.RateLimit(checkoutLimit, limiterStore, logg), checkoutReplay)
		r.With(checkoutGuards...).Post("/checkout", controllers.Checkout(checkoutService, logg))
		r.With(checkoutGuards...).Post("/checkout/confirm", controllers.CheckoutConfirm(checkoutService, logg))
	})

	return r
}
