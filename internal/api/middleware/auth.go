package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/zabecode/dac/internal/api/response"
	"github.com/zabecode/dac/internal/credentials"
	"github.com/zabecode/dac/internal/service"
	"github.com/zabecode/dac/pkg/models"
)

// KeyValidator resolves a raw bearer secret to its API key record.
type KeyValidator interface {
	Validate(ctx context.Context, rawSecret string) (*models.APIKey, error)
}

// Auth provides API key authentication and permission-checking middleware.
type Auth struct {
	keys KeyValidator
}

// NewAuth creates a new Auth middleware.
func NewAuth(keys KeyValidator) *Auth {
	return &Auth{keys: keys}
}

// Authenticate validates the Bearer credential and attaches the tenant
// identifier and the key record to the request context. Missing, malformed,
// unknown, inactive, and expired keys all produce the same 401 response so
// callers cannot probe which keys exist.
func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawKey := extractBearerToken(r)
		if rawKey == "" {
			unauthorized(w)
			return
		}

		key, err := a.keys.Validate(r.Context(), rawKey)
		if errors.Is(err, service.ErrInvalidKey) {
			unauthorized(w)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to validate API key", nil)
			return
		}

		ctx := r.Context()
		ctx = setIdentifier(ctx, key.Identifier)
		ctx = setAPIKey(ctx, key)
		ctx = setKeyPrefix(ctx, rawKey[:credentials.PrefixLength])
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission returns middleware that checks whether the authenticated
// key grants the given module, naming the module on denial.
func (a *Auth) RequirePermission(moduleSlug string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, ok := GetAPIKey(r)
			if !ok {
				unauthorized(w)
				return
			}
			if !key.HasPermission(moduleSlug) {
				response.Error(w, http.StatusForbidden,
					"FORBIDDEN", "Missing permission for module: "+moduleSlug,
					map[string]string{"module": moduleSlug})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	response.Error(w, http.StatusUnauthorized,
		"INVALID_KEY", "Missing, invalid, or expired API key", nil)
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
