package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/basho-studio/storefront/api/middleware"
	"github.com/basho-studio/storefront/api/responses"
	"github.com/basho-studio/storefront/pkg/config"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/logger"
)

const readyTimeout = 2 * time.Second

// Pinger is a dependency probed by the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Basho-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. Only dependencies the
// process was started with are listed in checks.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Basho-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		status := make(map[string]string, len(names))
		failed := make([]string, 0)
		for _, name := range names {
			if err := checks[name].Ping(ctx); err != nil {
				status[name] = "unavailable"
				failed = append(failed, name)
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"dependency": name, "error": err.Error()}), "health.ready.dependency_failed")
				}
				continue
			}
			status[name] = "ok"
		}

		if len(failed) > 0 {
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependencies unavailable").WithDetails(map[string]any{"failed": failed}))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": status})
	}
}

type pingResponse struct {
	Status      string    `json:"status"`
	CartSession string    `json:"cartSession,omitempty"`
	RequestID   string    `json:"requestId,omitempty"`
	ServerTime  time.Time `json:"serverTime"`
}

// PublicPing lets the storefront confirm connectivity and learn the cart
// session the API resolved for it.
func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, pingResponse{
			Status:      "ok",
			CartSession: middleware.CartSessionFromContext(r.Context()),
			RequestID:   middleware.RequestIDFromContext(r.Context()),
			ServerTime:  time.Now().UTC(),
		})
	}
}
