package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// Cache key prefixes and TTLs.
const (
	linkKeyPrefix     = "link:"
	negCacheKeySuffix = ":neg"

	// DefaultLinkTTL is the TTL for cached link data.
	DefaultLinkTTL = 24 * time.Hour

	// NegativeCacheTTL is the TTL for negative cache entries.
	NegativeCacheTTL = 5 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// GetLink retrieves a link from cache by short code.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetLink(ctx context.Context, shortCode string) (*model.CachedLink, error) {
	key := linkKeyPrefix + shortCode

	result, err := c.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedLink{
		ID:           result["id"],
		OriginalURL:  result["original_url"],
		UserID:       result["user_id"],
		UTMSource:    result["utm_source"],
		UTMMedium:    result["utm_medium"],
		UTMCampaign:  result["utm_campaign"],
		UTMTerm:      result["utm_term"],
		UTMContent:   result["utm_content"],
		IsActive:     result["is_active"],
		ExpiresAt:    result["expires_at"],
		PasswordHash: result["password_hash"],
		MaxClicks:    result["max_clicks"],
	}

	return cached, nil
}

// SetLink stores a link in cache. The TTL is capped by the link expiry
// so stale entries cannot outlive the link itself.
func (c *Cache) SetLink(ctx context.Context, shortCode string, link *model.Link) error {
	key := linkKeyPrefix + shortCode
	cached := link.ToCachedLink()

	ttl := DefaultLinkTTL
	if link.ExpiresAt != nil {
		expiresIn := time.Until(*link.ExpiresAt)
		if expiresIn <= 0 {
			c.client.Del(ctx, key, key+negCacheKeySuffix)
			return nil
		}
		if expiresIn < ttl {
			ttl = expiresIn
		}
	}

	fields := map[string]any{
		"id":           cached.ID,
		"original_url": cached.OriginalURL,
		"user_id":      cached.UserID,
		"is_active":    cached.IsActive,
	}

	// Only set optional fields if they have values
	if cached.UTMSource != "" {
		fields["utm_source"] = cached.UTMSource
	}
	if cached.UTMMedium != "" {
		fields["utm_medium"] = cached.UTMMedium
	}
	if cached.UTMCampaign != "" {
		fields["utm_campaign"] = cached.UTMCampaign
	}
	if cached.UTMTerm != "" {
		fields["utm_term"] = cached.UTMTerm
	}
	if cached.UTMContent != "" {
		fields["utm_content"] = cached.UTMContent
	}
	if cached.ExpiresAt != "" {
		fields["expires_at"] = cached.ExpiresAt
	}
	if cached.PasswordHash != "" {
		fields["password_hash"] = cached.PasswordHash
	}
	if cached.MaxClicks != "" {
		fields["max_clicks"] = cached.MaxClicks
	}

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fields)
	pipe.Expire(ctx, key, ttl)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to cache link: %w", err)
	}

	// Remove negative cache if exists
	c.client.Del(ctx, key+negCacheKeySuffix)

	return nil
}

// DeleteLink removes a link from cache.
func (c *Cache) DeleteLink(ctx context.Context, shortCode string) error {
	key := linkKeyPrefix + shortCode

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.Del(ctx, key+negCacheKeySuffix)

	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete link from cache: %w", err)
	}

	return nil
}

// IsNegativelyCached checks if a short code is in negative cache.
func (c *Cache) IsNegativelyCached(ctx context.Context, shortCode string) (bool, error) {
	key := linkKeyPrefix + shortCode + negCacheKeySuffix

	exists, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check negative cache: %w", err)
	}

	return exists > 0, nil
}

// SetNegativeCache marks a short code as not found.
func (c *Cache) SetNegativeCache(ctx context.Context, shortCode string) error {
	key := linkKeyPrefix + shortCode + negCacheKeySuffix

	err := c.client.SetEx(ctx, key, "", NegativeCacheTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to set negative cache: %w", err)
	}

	return nil
}
