// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// Link represents a shortened, UTM-decorated URL entity.
type Link struct {
	ID          string `json:"id"`
	ShortCode   string `json:"short_code"`
	OriginalURL string `json:"original_url"`
	UserID      string `json:"user_id"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// UTM attribution fields merged into the destination at redirect time.
	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`

	IsActive  bool       `json:"is_active"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`

	// PasswordHash is an argon2id hash; empty means the link is not protected.
	PasswordHash string `json:"-"`

	// MaxClicks caps total recorded clicks; nil means unlimited.
	MaxClicks *int64 `json:"max_clicks,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired returns true if the link has passed its expiry time.
func (l *Link) IsExpired() bool {
	return l.ExpiresAt != nil && time.Now().After(*l.ExpiresAt)
}

// IsProtected returns true if a password is required to resolve the link.
func (l *Link) IsProtected() bool {
	return l.PasswordHash != ""
}

// CapReached returns true if the click cap is set and already consumed.
func (l *Link) CapReached(clickCount int64) bool {
	return l.MaxClicks != nil && clickCount >= *l.MaxClicks
}

// HasUTM returns true if at least one UTM field is set.
func (l *Link) HasUTM() bool {
	return l.UTMSource != "" || l.UTMMedium != "" || l.UTMCampaign != "" ||
		l.UTMTerm != "" || l.UTMContent != ""
}

// CachedLink represents link data stored in Redis cache.
// Uses string types for Redis hash compatibility.
type CachedLink struct {
	ID           string `redis:"id"`
	OriginalURL  string `redis:"original_url"`
	UserID       string `redis:"user_id"`
	UTMSource    string `redis:"utm_source"`
	UTMMedium    string `redis:"utm_medium"`
	UTMCampaign  string `redis:"utm_campaign"`
	UTMTerm      string `redis:"utm_term"`
	UTMContent   string `redis:"utm_content"`
	IsActive     string `redis:"is_active"`     // "1" or "0"
	ExpiresAt    string `redis:"expires_at"`    // Unix timestamp or empty
	PasswordHash string `redis:"password_hash"` // empty when unprotected
	MaxClicks    string `redis:"max_clicks"`    // decimal or empty
}

// ToLink converts CachedLink to Link domain model.
func (c *CachedLink) ToLink(shortCode string) *Link {
	link := &Link{
		ID:           c.ID,
		ShortCode:    shortCode,
		OriginalURL:  c.OriginalURL,
		UserID:       c.UserID,
		UTMSource:    c.UTMSource,
		UTMMedium:    c.UTMMedium,
		UTMCampaign:  c.UTMCampaign,
		UTMTerm:      c.UTMTerm,
		UTMContent:   c.UTMContent,
		IsActive:     c.IsActive == "1",
		PasswordHash: c.PasswordHash,
	}

	if c.ExpiresAt != "" {
		if ts, err := strconv.ParseInt(c.ExpiresAt, 10, 64); err == nil {
			t := time.Unix(ts, 0)
			link.ExpiresAt = &t
		}
	}

	if c.MaxClicks != "" {
		if n, err := strconv.ParseInt(c.MaxClicks, 10, 64); err == nil {
			link.MaxClicks = &n
		}
	}

	return link
}

// ToCachedLink converts Link domain model to CachedLink.
func (l *Link) ToCachedLink() *CachedLink {
	cached := &CachedLink{
		ID:           l.ID,
		OriginalURL:  l.OriginalURL,
		UserID:       l.UserID,
		UTMSource:    l.UTMSource,
		UTMMedium:    l.UTMMedium,
		UTMCampaign:  l.UTMCampaign,
		UTMTerm:      l.UTMTerm,
		UTMContent:   l.UTMContent,
		IsActive:     boolToString(l.IsActive),
		PasswordHash: l.PasswordHash,
	}

	if l.ExpiresAt != nil {
		cached.ExpiresAt = strconv.FormatInt(l.ExpiresAt.Unix(), 10)
	}

	if l.MaxClicks != nil {
		cached.MaxClicks = strconv.FormatInt(*l.MaxClicks, 10)
	}

	return cached
}

// boolToString converts boolean to "1" or "0".
func boolToString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
