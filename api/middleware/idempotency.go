package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/basho-studio/storefront/api/responses"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/logger"
	pkgredis "github.com/basho-studio/storefront/pkg/redis"
)

// IdempotencyKeyHeader names the client-chosen key for a write.
const IdempotencyKeyHeader = "Idempotency-Key"

// ReplayedHeader marks a response served from the idempotency store.
const ReplayedHeader = "Idempotent-Replayed"

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyPolicy configures replay for one route.
type IdempotencyPolicy struct {
	// Scope namespaces stored records, e.g. "checkout".
	Scope string
	TTL   time.Duration
}

// storedResponse is what a replay writes back.
type storedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body"`
	Fingerprint string `json:"fingerprint"`
}

type skipReplayKey struct{}

// SkipReplay keeps the current response out of the idempotency store so a
// retry under the same key reaches the handler again. Handlers call it for
// failures they answer with a 2xx, such as a rejected reservation.
func SkipReplay(ctx context.Context) {
	if skip, ok := ctx.Value(skipReplayKey{}).(*bool); ok {
		*skip = true
	}
}

// Idempotency makes a POST safe to retry: the first response for a given
// Idempotency-Key (per cart session and path) is stored and replayed for
// later requests with the same body. A nil store turns it into a no-op.
func Idempotency(store pkgredis.IdempotencyStore, policy IdempotencyPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	if policy.TTL <= 0 {
		policy.TTL = defaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
			if clientKey == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, IdempotencyKeyHeader+" header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			fingerprint := fingerprintBody(body)
			key := store.IdempotencyKey(policy.Scope, recordID(r, clientKey))

			raw, err := store.Get(ctx, key)
			switch {
			case err != nil && !pkgredis.IsNil(err):
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			case err == nil && raw != "":
				var prior storedResponse
				if err := json.Unmarshal([]byte(raw), &prior); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
					return
				}
				if prior.Fingerprint != fingerprint {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
					return
				}
				prior.replay(w)
				return
			}

			var skip bool
			capture := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(capture, r.WithContext(context.WithValue(ctx, skipReplayKey{}, &skip)))

			status := capture.statusCode()
			if skip || !replayable(status) {
				return
			}
			payload, err := json.Marshal(storedResponse{
				Status:      status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
				Fingerprint: fingerprint,
			})
			if err == nil {
				_, err = store.SetNX(ctx, key, string(payload), policy.TTL)
			}
			if err != nil && logg != nil {
				logg.Error(logg.WithField(ctx, "scope", policy.Scope), "idempotency.persist_failed", err)
			}
		})
	}
}

func (s storedResponse) replay(w http.ResponseWriter) {
	if s.ContentType != "" {
		w.Header().Set("Content-Type", s.ContentType)
	}
	w.Header().Set(ReplayedHeader, "true")
	w.WriteHeader(s.Status)
	_, _ = w.Write(s.Body)
}

// recordID binds the client key to the cart session and path so two
// shoppers picking the same key never see each other's responses.
func recordID(r *http.Request, clientKey string) string {
	sum := sha256.Sum256([]byte(CartSessionFromContext(r.Context()) + "|" + r.URL.Path))
	return hex.EncodeToString(sum[:8]) + ":" + clientKey
}

func fingerprintBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// replayable skips server failures, in-flight conflicts and throttling so the
// client can retry them under the same key.
func replayable(status int) bool {
	return status < http.StatusInternalServerError &&
		status != http.StatusConflict &&
		status != http.StatusTooManyRequests
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
