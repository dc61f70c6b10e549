package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// Common errors for link repository operations.
var (
	ErrLinkNotFound      = errors.New("link not found")
	ErrShortCodeExists   = errors.New("short code already exists")
)

const linkColumns = `id, short_code, original_url, user_id, title, description,
	utm_source, utm_medium, utm_campaign, utm_term, utm_content,
	is_active, expires_at, password_hash, max_clicks, created_at, updated_at`

// CreateLink inserts a new link. The short_code unique constraint is
// the authoritative uniqueness guard; a violation maps to ErrShortCodeExists
// so callers can re-allocate.
func (r *Repository) CreateLink(ctx context.Context, link *model.Link) error {
	query := `
		INSERT INTO links (
			id, short_code, original_url, user_id, title, description,
			utm_source, utm_medium, utm_campaign, utm_term, utm_content,
			is_active, expires_at, password_hash, max_clicks, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.ShortCode,
		link.OriginalURL,
		link.UserID,
		nullableString(link.Title),
		nullableString(link.Description),
		nullableString(link.UTMSource),
		nullableString(link.UTMMedium),
		nullableString(link.UTMCampaign),
		nullableString(link.UTMTerm),
		nullableString(link.UTMContent),
		link.IsActive,
		link.ExpiresAt,
		nullableString(link.PasswordHash),
		link.MaxClicks,
		link.CreatedAt,
		link.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrShortCodeExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetLinkByID retrieves a link by its ID.
func (r *Repository) GetLinkByID(ctx context.Context, id string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE id = $1`

	link, err := scanLink(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by ID: %w", err)
	}

	return link, nil
}

// GetLinkByShortCode retrieves a link by its short code.
// This is the hot path for redirects.
func (r *Repository) GetLinkByShortCode(ctx context.Context, shortCode string) (*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE short_code = $1`

	link, err := scanLink(r.pool.QueryRow(ctx, query, shortCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link by short code: %w", err)
	}

	return link, nil
}

// ListLinksByUser retrieves all links owned by a user, newest first.
func (r *Repository) ListLinksByUser(ctx context.Context, userID string) ([]*model.Link, error) {
	query := `SELECT ` + linkColumns + ` FROM links WHERE user_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []*model.Link
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

// UpdateLink updates a link's mutable fields. The short code is immutable.
func (r *Repository) UpdateLink(ctx context.Context, link *model.Link) error {
	query := `
		UPDATE links
		SET original_url = $2, title = $3, description = $4,
		    utm_source = $5, utm_medium = $6, utm_campaign = $7,
		    utm_term = $8, utm_content = $9,
		    is_active = $10, expires_at = $11, password_hash = $12,
		    max_clicks = $13, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, query,
		link.ID,
		link.OriginalURL,
		nullableString(link.Title),
		nullableString(link.Description),
		nullableString(link.UTMSource),
		nullableString(link.UTMMedium),
		nullableString(link.UTMCampaign),
		nullableString(link.UTMTerm),
		nullableString(link.UTMContent),
		link.IsActive,
		link.ExpiresAt,
		nullableString(link.PasswordHash),
		link.MaxClicks,
	)

	if err != nil {
		return fmt.Errorf("failed to update link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// DeleteLink removes a link; its clicks are removed by ON DELETE CASCADE.
func (r *Repository) DeleteLink(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}

// ShortCodeExists checks if a short code is already taken.
func (r *Repository) ShortCodeExists(ctx context.Context, shortCode string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM links WHERE short_code = $1)`

	var exists bool
	err := r.pool.QueryRow(ctx, query, shortCode).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check short code existence: %w", err)
	}

	return exists, nil
}

// scanLink scans a single row into a Link model.
func scanLink(row pgx.Row) (*model.Link, error) {
	var link model.Link
	var title, description, source, medium, campaign, term, content, passwordHash *string

	err := row.Scan(
		&link.ID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.UserID,
		&title,
		&description,
		&source,
		&medium,
		&campaign,
		&term,
		&content,
		&link.IsActive,
		&link.ExpiresAt,
		&passwordHash,
		&link.MaxClicks,
		&link.CreatedAt,
		&link.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	link.Title = derefString(title)
	link.Description = derefString(description)
	link.UTMSource = derefString(source)
	link.UTMMedium = derefString(medium)
	link.UTMCampaign = derefString(campaign)
	link.UTMTerm = derefString(term)
	link.UTMContent = derefString(content)
	link.PasswordHash = derefString(passwordHash)

	return &link, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 is unique_violation
		return pgErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "23505")
}

// nullableString returns nil for empty strings.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// derefString returns the empty string for nil pointers.
func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
