package model

import "time"

// Status is the explicit lifecycle state of a link mapping, distinct from
// expiration (which is evaluated lazily at resolution time).
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// LinkMapping binds one short code to a target URL plus lifecycle metadata.
// The click counter is not part of the record: it lives in a dedicated store
// counter so increments never rewrite the record.
type LinkMapping struct {
	ID          string    `json:"id"`                    // UUID v4, owned by the store
	ShortCode   string    `json:"shortCode"`             // 3-20 chars, [A-Za-z0-9_-], globally unique
	TargetURL   string    `json:"targetURL"`             // must start with http:// or https://
	Owner       string    `json:"owner,omitempty"`       // opaque owner reference, set by the creation API
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	ExpiresAt   time.Time `json:"expiresAt,omitempty"`   // zero value means never expires
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Expired reports whether the mapping's expiry time has passed.
// Mappings without an expiry never expire.
func (m *LinkMapping) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && now.After(m.ExpiresAt)
}
