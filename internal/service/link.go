// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Alirezastar2/utmkit-sub000/internal/auth"
	"github.com/Alirezastar2/utmkit-sub000/internal/cache"
	"github.com/Alirezastar2/utmkit-sub000/internal/metrics"
	"github.com/Alirezastar2/utmkit-sub000/internal/model"
	"github.com/Alirezastar2/utmkit-sub000/internal/repository"
	"github.com/Alirezastar2/utmkit-sub000/internal/shortcode"
)

// Service errors.
var (
	ErrInvalidDestination = errors.New("invalid destination URL")
	ErrInvalidShortCode   = errors.New("invalid short code format")
	ErrShortCodeExists    = errors.New("short code already exists")
	ErrLinkNotFound       = errors.New("link not found")
	ErrNotOwner           = errors.New("link belongs to another user")
	ErrExpiresInPast      = errors.New("expires_at must be in the future")
	ErrInvalidMaxClicks   = errors.New("max_clicks must be positive")
	ErrURLTooLong         = errors.New("destination URL too long")
)

// Custom short code: 3-50 alphanumeric characters.
var shortCodeRegex = regexp.MustCompile(`^[a-zA-Z0-9]{3,50}$`)

const maxDestinationLength = 2048

// Notifier triggers webhook deliveries for link lifecycle events.
type Notifier interface {
	Trigger(ctx context.Context, userID string, event model.EventType, data any)
}

// LinkService handles link business logic.
type LinkService struct {
	repo      *repository.Repository
	cache     *cache.Cache
	allocator *shortcode.Allocator
	notifier  Notifier
	logger    *slog.Logger
	metrics   metrics.Recorder
	baseURL   string
}

// NewLinkService creates a new LinkService. notifier may be nil.
func NewLinkService(
	repo *repository.Repository,
	linkCache *cache.Cache,
	allocator *shortcode.Allocator,
	notifier Notifier,
	baseURL string,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *LinkService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &LinkService{
		repo:      repo,
		cache:     linkCache,
		allocator: allocator,
		notifier:  notifier,
		logger:    logger.With("component", "link.service"),
		metrics:   recorder,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
	}
}

// CreateLinkInput defines input for creating a link.
type CreateLinkInput struct {
	OriginalURL string
	ShortCode   string // optional custom code
	UserID      string
	Title       string
	Description string
	UTMSource   string
	UTMMedium   string
	UTMCampaign string
	UTMTerm     string
	UTMContent  string
	Password    string // optional, hashed before storage
	ExpiresAt   *time.Time
	MaxClicks   *int64
}

// CreateLink creates a new short link.
func (s *LinkService) CreateLink(ctx context.Context, input CreateLinkInput) (*model.Link, error) {
	if err := s.validateDestination(input.OriginalURL); err != nil {
		return nil, err
	}

	if input.ExpiresAt != nil && input.ExpiresAt.Before(time.Now()) {
		return nil, ErrExpiresInPast
	}

	if input.MaxClicks != nil && *input.MaxClicks <= 0 {
		return nil, ErrInvalidMaxClicks
	}

	custom := input.ShortCode != ""
	code := input.ShortCode
	if custom {
		if !shortCodeRegex.MatchString(code) {
			return nil, ErrInvalidShortCode
		}
	} else {
		var err error
		code, err = s.allocator.Allocate(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate short code: %w", err)
		}
	}

	var passwordHash string
	if input.Password != "" {
		var err error
		passwordHash, err = auth.HashPassword(input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	now := time.Now().UTC()
	link := &model.Link{
		ID:           uuid.NewString(),
		ShortCode:    code,
		OriginalURL:  input.OriginalURL,
		UserID:       input.UserID,
		Title:        input.Title,
		Description:  input.Description,
		UTMSource:    input.UTMSource,
		UTMMedium:    input.UTMMedium,
		UTMCampaign:  input.UTMCampaign,
		UTMTerm:      input.UTMTerm,
		UTMContent:   input.UTMContent,
		IsActive:     true,
		ExpiresAt:    input.ExpiresAt,
		PasswordHash: passwordHash,
		MaxClicks:    input.MaxClicks,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// The unique constraint is authoritative: the allocator's existence
	// check only narrows the race window. A generated code that loses
	// the race gets one fresh allocation.
	err := s.repo.CreateLink(ctx, link)
	if errors.Is(err, repository.ErrShortCodeExists) && !custom {
		link.ShortCode, err = s.allocator.Allocate(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to re-allocate short code: %w", err)
		}
		err = s.repo.CreateLink(ctx, link)
	}
	if err != nil {
		if errors.Is(err, repository.ErrShortCodeExists) {
			return nil, ErrShortCodeExists
		}
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	// A visitor may have requested this code before it existed, leaving a
	// negative cache entry that would keep 404-redirecting the new link.
	if err := s.cache.DeleteLink(ctx, link.ShortCode); err != nil {
		s.logger.Warn("cache invalidation failed", "short_code", link.ShortCode, "error", err)
	}

	s.metrics.IncLinkCreated()

	if s.notifier != nil {
		s.notifier.Trigger(ctx, link.UserID, model.EventLinkCreated, link)
	}

	return link, nil
}

// GetLink retrieves a link by ID, scoped to its owner.
func (s *LinkService) GetLink(ctx context.Context, id, userID string) (*model.Link, error) {
	link, err := s.repo.GetLinkByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}

	if link.UserID != userID {
		return nil, ErrNotOwner
	}

	return link, nil
}

// ListLinks retrieves all of a user's links, newest first.
func (s *LinkService) ListLinks(ctx context.Context, userID string) ([]*model.Link, error) {
	return s.repo.ListLinksByUser(ctx, userID)
}

// UpdateLinkInput defines input for updating a link. Nil pointers
// leave the current value unchanged.
type UpdateLinkInput struct {
	ID          string
	UserID      string
	OriginalURL *string
	Title       *string
	Description *string
	UTMSource   *string
	UTMMedium   *string
	UTMCampaign *string
	UTMTerm     *string
	UTMContent  *string
	IsActive    *bool
	Password    *string // empty string clears the password
	ExpiresAt   *time.Time
	ClearExpiry bool
	MaxClicks   *int64
	ClearCap    bool
}

// UpdateLink updates a link's mutable fields. The short code is
// immutable after creation.
func (s *LinkService) UpdateLink(ctx context.Context, input UpdateLinkInput) (*model.Link, error) {
	link, err := s.GetLink(ctx, input.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.OriginalURL != nil {
		if err := s.validateDestination(*input.OriginalURL); err != nil {
			return nil, err
		}
		link.OriginalURL = *input.OriginalURL
	}

	if input.Title != nil {
		link.Title = *input.Title
	}
	if input.Description != nil {
		link.Description = *input.Description
	}
	if input.UTMSource != nil {
		link.UTMSource = *input.UTMSource
	}
	if input.UTMMedium != nil {
		link.UTMMedium = *input.UTMMedium
	}
	if input.UTMCampaign != nil {
		link.UTMCampaign = *input.UTMCampaign
	}
	if input.UTMTerm != nil {
		link.UTMTerm = *input.UTMTerm
	}
	if input.UTMContent != nil {
		link.UTMContent = *input.UTMContent
	}
	if input.IsActive != nil {
		link.IsActive = *input.IsActive
	}

	if input.Password != nil {
		if *input.Password == "" {
			link.PasswordHash = ""
		} else {
			hash, err := auth.HashPassword(*input.Password)
			if err != nil {
				return nil, fmt.Errorf("failed to hash password: %w", err)
			}
			link.PasswordHash = hash
		}
	}

	if input.ClearExpiry {
		link.ExpiresAt = nil
	} else if input.ExpiresAt != nil {
		if input.ExpiresAt.Before(time.Now()) {
			return nil, ErrExpiresInPast
		}
		link.ExpiresAt = input.ExpiresAt
	}

	if input.ClearCap {
		link.MaxClicks = nil
	} else if input.MaxClicks != nil {
		if *input.MaxClicks <= 0 {
			return nil, ErrInvalidMaxClicks
		}
		link.MaxClicks = input.MaxClicks
	}

	if err := s.repo.UpdateLink(ctx, link); err != nil {
		return nil, err
	}

	s.metrics.IncLinkUpdated()

	// Invalidate cache; eventual consistency is acceptable
	if err := s.cache.DeleteLink(ctx, link.ShortCode); err != nil {
		s.logger.Warn("cache invalidation failed", "short_code", link.ShortCode, "error", err)
	}

	if s.notifier != nil {
		s.notifier.Trigger(ctx, link.UserID, model.EventLinkUpdated, link)
	}

	return link, nil
}

// DeleteLink removes a link and its click history.
func (s *LinkService) DeleteLink(ctx context.Context, id, userID string) error {
	link, err := s.GetLink(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteLink(ctx, id); err != nil {
		return err
	}

	s.metrics.IncLinkDeleted()

	if err := s.cache.DeleteLink(ctx, link.ShortCode); err != nil {
		s.logger.Warn("cache invalidation failed", "short_code", link.ShortCode, "error", err)
	}

	if s.notifier != nil {
		s.notifier.Trigger(ctx, link.UserID, model.EventLinkDeleted, map[string]any{
			"id":         link.ID,
			"short_code": link.ShortCode,
		})
	}

	return nil
}

// LookupByCode resolves a short code to its link. This is the hot
// path - cache-first with a negative cache for unknown codes.
func (s *LinkService) LookupByCode(ctx context.Context, shortCode string) (*model.Link, error) {
	cached, err := s.cache.GetLink(ctx, shortCode)
	if err == nil {
		s.metrics.IncRedirectCacheHit()
		return cached.ToLink(shortCode), nil
	}

	if errors.Is(err, cache.ErrCacheMiss) {
		s.metrics.IncRedirectCacheMiss()

		negative, negErr := s.cache.IsNegativelyCached(ctx, shortCode)
		if negErr == nil && negative {
			return nil, repository.ErrLinkNotFound
		}
	} else {
		s.logger.Warn("cache lookup failed", "short_code", shortCode, "error", err)
	}

	link, err := s.repo.GetLinkByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			if cacheErr := s.cache.SetNegativeCache(ctx, shortCode); cacheErr != nil {
				s.logger.Warn("negative cache set failed", "short_code", shortCode, "error", cacheErr)
			}
		}
		return nil, err
	}

	if err := s.cache.SetLink(ctx, shortCode, link); err != nil {
		s.logger.Warn("cache backfill failed", "short_code", shortCode, "error", err)
	}

	return link, nil
}

// ShortURL builds the public short URL for a code.
func (s *LinkService) ShortURL(code string) string {
	return s.baseURL + "/l/" + code
}

// validateDestination validates a destination URL.
func (s *LinkService) validateDestination(dest string) error {
	if dest == "" {
		return ErrInvalidDestination
	}

	if len(dest) > maxDestinationLength {
		return ErrURLTooLong
	}

	parsed, err := url.Parse(dest)
	if err != nil {
		return ErrInvalidDestination
	}

	// Only allow http and https schemes
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidDestination
	}

	// Must have a host
	if parsed.Host == "" {
		return ErrInvalidDestination
	}

	return nil
}
