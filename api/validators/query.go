package validators

import (
	"net/http"

	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
)

const maxQueryLen = 64

// ParseQueryString returns the trimmed query value, or def when absent.
func ParseQueryString(r *http.Request, key, def string) string {
	raw := SanitizeString(r.URL.Query().Get(key), maxQueryLen)
	if raw == "" {
		return def
	}
	return raw
}

// ParseQueryEnum reads an optional enum-valued parameter. An empty value is
// accepted and returned as the zero value.
func ParseQueryEnum[T ~string](r *http.Request, key string, valid func(T) bool) (T, error) {
	raw := ParseQueryString(r, key, "")
	if raw == "" {
		return "", nil
	}
	value := T(raw)
	if !valid(value) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter has an unsupported value").WithDetails(map[string]any{"field": key, "value": raw})
	}
	return value, nil
}

// RequireQuery reads a mandatory parameter.
func RequireQuery(r *http.Request, key string) (string, error) {
	raw := ParseQueryString(r, key, "")
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").WithDetails(map[string]any{"field": key})
	}
	return raw, nil
}
