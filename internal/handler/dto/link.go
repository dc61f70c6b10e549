// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// CreateLinkRequest represents the request body for creating a link.
type CreateLinkRequest struct {
	OriginalURL string     `json:"original_url"`
	ShortCode   string     `json:"short_code,omitempty"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	UTMSource   string     `json:"utm_source,omitempty"`
	UTMMedium   string     `json:"utm_medium,omitempty"`
	UTMCampaign string     `json:"utm_campaign,omitempty"`
	UTMTerm     string     `json:"utm_term,omitempty"`
	UTMContent  string     `json:"utm_content,omitempty"`
	Password    string     `json:"password,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	MaxClicks   *int64     `json:"max_clicks,omitempty"`
}

// UpdateLinkRequest represents the request body for updating a link.
// Absent fields stay unchanged.
type UpdateLinkRequest struct {
	OriginalURL *string    `json:"original_url,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	UTMSource   *string    `json:"utm_source,omitempty"`
	UTMMedium   *string    `json:"utm_medium,omitempty"`
	UTMCampaign *string    `json:"utm_campaign,omitempty"`
	UTMTerm     *string    `json:"utm_term,omitempty"`
	UTMContent  *string    `json:"utm_content,omitempty"`
	IsActive    *bool      `json:"is_active,omitempty"`
	Password    *string    `json:"password,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ClearExpiry bool       `json:"clear_expiry,omitempty"`
	MaxClicks   *int64     `json:"max_clicks,omitempty"`
	ClearCap    bool       `json:"clear_cap,omitempty"`
}

// LinkResponse represents a link in API responses.
type LinkResponse struct {
	ID          string     `json:"id"`
	ShortCode   string     `json:"short_code"`
	ShortURL    string     `json:"short_url"`
	OriginalURL string     `json:"original_url"`
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	UTMSource   string     `json:"utm_source,omitempty"`
	UTMMedium   string     `json:"utm_medium,omitempty"`
	UTMCampaign string     `json:"utm_campaign,omitempty"`
	UTMTerm     string     `json:"utm_term,omitempty"`
	UTMContent  string     `json:"utm_content,omitempty"`
	IsActive    bool       `json:"is_active"`
	IsProtected bool       `json:"is_protected"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	MaxClicks   *int64     `json:"max_clicks,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// LinkListResponse represents a list of links.
type LinkListResponse struct {
	Data []*LinkResponse `json:"data"`
}

// ToLinkResponse converts a Link model to LinkResponse DTO.
func ToLinkResponse(link *model.Link, shortURL string) *LinkResponse {
	return &LinkResponse{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		ShortURL:    shortURL,
		OriginalURL: link.OriginalURL,
		Title:       link.Title,
		Description: link.Description,
		UTMSource:   link.UTMSource,
		UTMMedium:   link.UTMMedium,
		UTMCampaign: link.UTMCampaign,
		UTMTerm:     link.UTMTerm,
		UTMContent:  link.UTMContent,
		IsActive:    link.IsActive,
		IsProtected: link.IsProtected(),
		ExpiresAt:   link.ExpiresAt,
		MaxClicks:   link.MaxClicks,
		CreatedAt:   link.CreatedAt,
		UpdatedAt:   link.UpdatedAt,
	}
}
