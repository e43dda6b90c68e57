package middleware

import (
	"context"
	"net/http"

	"github.com/zabecode/dac/pkg/models"
)

type contextKey string

const (
	identifierKey contextKey = "identifier"
	apiKeyKey     contextKey = "api_key"
	keyPrefixKey  contextKey = "key_prefix"
	requestIDKey  contextKey = "request_id"
)

func setIdentifier(ctx context.Context, identifier string) context.Context {
	return context.WithValue(ctx, identifierKey, identifier)
}

// GetIdentifier returns the tenant identifier resolved by the auth middleware.
func GetIdentifier(r *http.Request) (string, bool) {
	identifier, ok := r.Context().Value(identifierKey).(string)
	return identifier, ok
}

func setAPIKey(ctx context.Context, key *models.APIKey) context.Context {
	return context.WithValue(ctx, apiKeyKey, key)
}

// GetAPIKey returns the validated API key record for the request.
func GetAPIKey(r *http.Request) (*models.APIKey, bool) {
	key, ok := r.Context().Value(apiKeyKey).(*models.APIKey)
	return key, ok
}

func setKeyPrefix(ctx context.Context, prefix string) context.Context {
	return context.WithValue(ctx, keyPrefixKey, prefix)
}

// ExportedKeyPrefixKey returns the context key for key_prefix (for testing).
func ExportedKeyPrefixKey() contextKey {
	return keyPrefixKey
}

func getKeyPrefix(r *http.Request) (string, bool) {
	prefix, ok := r.Context().Value(keyPrefixKey).(string)
	return prefix, ok
}

func setRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id set by the RequestID middleware.
func GetRequestID(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(requestIDKey).(string)
	return id, ok
}
