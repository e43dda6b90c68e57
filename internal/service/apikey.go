package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/zabecode/dac/internal/credentials"
	"github.com/zabecode/dac/internal/store"
	"github.com/zabecode/dac/pkg/models"
)

// APIKeyService owns the API key lifecycle: creation, update, validation,
// revocation.
type APIKeyService struct {
	store store.Store
}

func NewAPIKeyService(s store.Store) *APIKeyService {
	return &APIKeyService{store: s}
}

// CreateAPIKeyParams holds input for a new key.
type CreateAPIKeyParams struct {
	Name        string     `json:"name"`
	Identifier  string     `json:"identifier"`
	UserID      *int64     `json:"user_id"`
	ExpiresAt   *time.Time `json:"expires_at"`
	Permissions []string   `json:"permissions"`
}

func (p CreateAPIKeyParams) validate() error {
	f := fieldErrors{}
	if len(p.Name) < 2 || len(p.Name) > 100 {
		f["name"] = "must be between 2 and 100 characters"
	}
	if len(p.Identifier) < 2 || len(p.Identifier) > 150 {
		f["identifier"] = "must be between 2 and 150 characters"
	}
	if len(p.Permissions) == 0 {
		f["permissions"] = "at least one module permission is required"
	}
	return f.err()
}

// Create generates a credential pair and persists the key record. The raw
// secret is returned exactly once and never stored.
func (s *APIKeyService) Create(ctx context.Context, p CreateAPIKeyParams) (*models.APIKey, string, error) {
	if err := p.validate(); err != nil {
		return nil, "", err
	}

	secret, hash, prefix, err := credentials.Generate()
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	key := &models.APIKey{
		Code:        generateCode(),
		Identifier:  p.Identifier,
		Name:        p.Name,
		Prefix:      prefix,
		KeyHash:     hash,
		UserID:      p.UserID,
		Permissions: p.Permissions,
		IsActive:    true,
		ExpiresAt:   p.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		return nil, "", fmt.Errorf("create api key: %w", err)
	}
	return key, secret, nil
}

// UpdateAPIKeyParams is a partial update; nil fields are left unchanged.
// ClearExpiresAt removes an existing expiry.
type UpdateAPIKeyParams struct {
	Name           *string    `json:"name"`
	Identifier     *string    `json:"identifier"`
	IsActive       *bool      `json:"is_active"`
	ExpiresAt      *time.Time `json:"expires_at"`
	ClearExpiresAt bool       `json:"clear_expires_at"`
	Permissions    []string   `json:"permissions"`
}

func (p UpdateAPIKeyParams) validate() error {
	f := fieldErrors{}
	if p.Name != nil && (len(*p.Name) < 2 || len(*p.Name) > 100) {
		f["name"] = "must be between 2 and 100 characters"
	}
	if p.Identifier != nil && (len(*p.Identifier) < 2 || len(*p.Identifier) > 150) {
		f["identifier"] = "must be between 2 and 150 characters"
	}
	if p.Permissions != nil && len(p.Permissions) == 0 {
		f["permissions"] = "at least one module permission is required"
	}
	return f.err()
}

// Update applies a partial update to an existing key.
func (s *APIKeyService) Update(ctx context.Context, id int64, p UpdateAPIKeyParams) (*models.APIKey, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	key, err := s.store.GetAPIKey(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.Name != nil {
		key.Name = *p.Name
	}
	if p.Identifier != nil {
		key.Identifier = *p.Identifier
	}
	if p.IsActive != nil {
		key.IsActive = *p.IsActive
	}
	if p.Permissions != nil {
		key.Permissions = p.Permissions
	}
	if p.ClearExpiresAt {
		key.ExpiresAt = nil
	} else if p.ExpiresAt != nil {
		key.ExpiresAt = p.ExpiresAt
	}

	if err := s.store.UpdateAPIKey(ctx, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Validate resolves a raw secret to its key record. The prefix lookup hits
// only active keys, so a miss never pays for a bcrypt comparison. Every
// rejection is ErrInvalidKey regardless of cause.
func (s *APIKeyService) Validate(ctx context.Context, rawSecret string) (*models.APIKey, error) {
	if len(rawSecret) < credentials.PrefixLength {
		return nil, ErrInvalidKey
	}

	keys, err := s.store.GetAPIKeysByPrefix(ctx, rawSecret[:credentials.PrefixLength])
	if err != nil {
		return nil, fmt.Errorf("lookup api key: %w", err)
	}

	for _, key := range keys {
		if !credentials.Verify(rawSecret, key.KeyHash) {
			continue
		}
		if key.IsExpired() {
			return nil, ErrInvalidKey
		}

		now := time.Now().UTC()
		if err := s.store.TouchAPIKey(ctx, key.ID, now); err != nil {
			return nil, fmt.Errorf("touch api key: %w", err)
		}
		key.LastUsedAt = &now
		return key, nil
	}
	return nil, ErrInvalidKey
}

// Revoke hard-deletes a key. A revoked key is indistinguishable from one
// that never existed.
func (s *APIKeyService) Revoke(ctx context.Context, id int64) error {
	return s.store.DeleteAPIKey(ctx, id)
}

// ListForUser returns all keys owned by a user, newest first.
func (s *APIKeyService) ListForUser(ctx context.Context, userID int64) ([]*models.APIKey, error) {
	return s.store.ListAPIKeysForUser(ctx, userID)
}

// Modules returns the registry of permission-gated modules.
func (s *APIKeyService) Modules() []models.Module {
	return models.SystemModules()
}

// generateCode produces the display code for a key: millisecond timestamp
// with three random digits appended.
func generateCode() int64 {
	return time.Now().UnixMilli()*1000 + rand.Int64N(1000)
}
