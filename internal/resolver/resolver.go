// Package resolver decides the outcome of a redirect request.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Alirezastar2/utmkit-sub000/internal/auth"
	"github.com/Alirezastar2/utmkit-sub000/internal/model"
	"github.com/Alirezastar2/utmkit-sub000/internal/repository"
)

// Outcome is the result of resolving a short code.
type Outcome int

const (
	// OutcomeNotFound means no link exists for the short code.
	OutcomeNotFound Outcome = iota
	// OutcomeInactive means the link exists but has been disabled.
	OutcomeInactive
	// OutcomeExpired means the link's expiry timestamp has passed.
	OutcomeExpired
	// OutcomeCapReached means the link hit its click limit.
	OutcomeCapReached
	// OutcomePasswordRequired means the link is protected and no
	// password was supplied.
	OutcomePasswordRequired
	// OutcomePasswordMismatch means the supplied password was wrong.
	OutcomePasswordMismatch
	// OutcomeAuthorized means the visitor may be redirected.
	OutcomeAuthorized
)

// String returns the outcome name for logging.
func (o Outcome) String() string {
	switch o {
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInactive:
		return "inactive"
	case OutcomeExpired:
		return "expired"
	case OutcomeCapReached:
		return "cap_reached"
	case OutcomePasswordRequired:
		return "password_required"
	case OutcomePasswordMismatch:
		return "password_mismatch"
	case OutcomeAuthorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// Resolution is the full result of a redirect decision.
type Resolution struct {
	Outcome  Outcome
	Link     *model.Link
	FinalURL string
}

// LinkSource looks up links by short code. Implemented by the link
// service with its cache-first lookup.
type LinkSource interface {
	LookupByCode(ctx context.Context, shortCode string) (*model.Link, error)
}

// ClickCounter counts recorded clicks for a link.
type ClickCounter interface {
	CountClicks(ctx context.Context, linkID string) (int64, error)
}

// Resolver evaluates redirect requests against the link's state.
type Resolver struct {
	links  LinkSource
	clicks ClickCounter
	logger *slog.Logger
}

// New creates a Resolver.
func New(links LinkSource, clicks ClickCounter, logger *slog.Logger) *Resolver {
	return &Resolver{
		links:  links,
		clicks: clicks,
		logger: logger.With("component", "resolver"),
	}
}

// Resolve decides what to do with a visit to the given short code.
// password is the visitor-supplied password, empty when none was given.
//
// Checks run in a fixed order: existence, active flag, expiry, click
// cap, password. The first failing check wins.
func (r *Resolver) Resolve(ctx context.Context, shortCode, password string) (*Resolution, error) {
	link, err := r.links.LookupByCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			return &Resolution{Outcome: OutcomeNotFound}, nil
		}
		return nil, fmt.Errorf("lookup link: %w", err)
	}

	if !link.IsActive {
		return &Resolution{Outcome: OutcomeInactive, Link: link}, nil
	}

	if link.IsExpired() {
		return &Resolution{Outcome: OutcomeExpired, Link: link}, nil
	}

	if link.MaxClicks != nil {
		count, err := r.clicks.CountClicks(ctx, link.ID)
		if err != nil {
			return nil, fmt.Errorf("count clicks: %w", err)
		}
		if link.CapReached(count) {
			return &Resolution{Outcome: OutcomeCapReached, Link: link}, nil
		}
	}

	if link.IsProtected() {
		if password == "" {
			return &Resolution{Outcome: OutcomePasswordRequired, Link: link}, nil
		}

		ok, err := auth.VerifyPassword(password, link.PasswordHash)
		if err != nil {
			r.logger.Warn("password verification failed",
				"short_code", shortCode,
				"error", err,
			)
			return &Resolution{Outcome: OutcomePasswordMismatch, Link: link}, nil
		}
		if !ok {
			return &Resolution{Outcome: OutcomePasswordMismatch, Link: link}, nil
		}
	}

	return &Resolution{
		Outcome:  OutcomeAuthorized,
		Link:     link,
		FinalURL: BuildFinalURL(link),
	}, nil
}
