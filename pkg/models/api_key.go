package models

import "time"

// APIKey is a scoped credential for gateway and integration access.
// Raw secrets are shown once at creation; only the bcrypt hash is stored.
type APIKey struct {
	ID          int64      `db:"id"           json:"id"`
	Code        int64      `db:"code"         json:"code"`
	Identifier  string     `db:"identifier"   json:"identifier"`
	Name        string     `db:"name"         json:"name"`
	Prefix      string     `db:"prefix"       json:"prefix"`
	KeyHash     string     `db:"key_hash"     json:"-"`
	UserID      *int64     `db:"user_id"      json:"user_id,omitempty"`
	Permissions []string   `db:"permissions"  json:"permissions"`
	IsActive    bool       `db:"is_active"    json:"is_active"`
	LastUsedAt  *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	ExpiresAt   *time.Time `db:"expires_at"   json:"expires_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"   json:"updated_at"`
}

// IsExpired reports whether the key has an expiry in the past.
func (k *APIKey) IsExpired() bool {
	if k.ExpiresAt == nil {
		return false
	}
	return k.ExpiresAt.Before(time.Now())
}

// IsValid reports whether the key is active and not expired.
func (k *APIKey) IsValid() bool {
	return k.IsActive && !k.IsExpired()
}

// HasPermission reports whether the key grants access to the given module
// slug. A key with no permissions grants nothing.
func (k *APIKey) HasPermission(moduleSlug string) bool {
	for _, p := range k.Permissions {
		if p == moduleSlug {
			return true
		}
	}
	return false
}
