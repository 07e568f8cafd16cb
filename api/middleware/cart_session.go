package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/basho-studio/storefront/pkg/logger"
)

// CartSessionHeader carries the anonymous visitor's cart session id.
const CartSessionHeader = "X-Cart-Session"

// CartSession resolves the cart session from the request header, minting a
// new id when the header is missing or malformed. The resolved id is echoed
// on the response so the client can persist it.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(CartSessionHeader))
			if _, err := uuid.Parse(sessionID); err != nil {
				sessionID = uuid.NewString()
			}

			w.Header().Set(CartSessionHeader, sessionID)

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
