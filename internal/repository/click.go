package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

const clickColumns = `id, link_id, ip, user_agent, referer,
	device_type, os, browser, country, city, created_at`

// InsertClick persists a single enriched click record.
func (r *Repository) InsertClick(ctx context.Context, click *model.Click) error {
	query := `
		INSERT INTO clicks (
			id, link_id, ip, user_agent, referer,
			device_type, os, browser, country, city, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		click.ID,
		click.LinkID,
		click.IP,
		nullableString(click.UserAgent),
		nullableString(click.Referer),
		string(click.DeviceType),
		nullableString(click.OS),
		nullableString(click.Browser),
		nullableString(click.Country),
		nullableString(click.City),
		click.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to insert click: %w", err)
	}

	return nil
}

// CountClicks returns the total click count for a link.
func (r *Repository) CountClicks(ctx context.Context, linkID string) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clicks WHERE link_id = $1`, linkID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}

// ListClicks retrieves a link's clicks within an optional time window,
// ordered ascending by created_at so aggregation sees insertion order.
// A nil bound leaves that side of the window open.
func (r *Repository) ListClicks(ctx context.Context, linkID string, start, end *time.Time) ([]*model.Click, error) {
	query := `SELECT ` + clickColumns + ` FROM clicks WHERE link_id = $1`
	args := []any{linkID}

	if start != nil {
		args = append(args, *start)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if end != nil {
		args = append(args, *end)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	query += " ORDER BY created_at ASC, id ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}
	defer rows.Close()

	var clicks []*model.Click
	for rows.Next() {
		click, err := scanClick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		clicks = append(clicks, click)
	}

	return clicks, rows.Err()
}

// ListRecentClicks retrieves the newest clicks for a link, newest first.
func (r *Repository) ListRecentClicks(ctx context.Context, linkID string, limit int) ([]*model.Click, error) {
	query := `SELECT ` + clickColumns + ` FROM clicks WHERE link_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent clicks: %w", err)
	}
	defer rows.Close()

	var clicks []*model.Click
	for rows.Next() {
		click, err := scanClick(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		clicks = append(clicks, click)
	}

	return clicks, rows.Err()
}

// scanClick scans a row into a Click model.
func scanClick(row pgx.Row) (*model.Click, error) {
	var click model.Click
	var userAgent, referer, os, browser, country, city *string
	var deviceType string

	err := row.Scan(
		&click.ID,
		&click.LinkID,
		&click.IP,
		&userAgent,
		&referer,
		&deviceType,
		&os,
		&browser,
		&country,
		&city,
		&click.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	click.UserAgent = derefString(userAgent)
	click.Referer = derefString(referer)
	click.DeviceType = model.DeviceType(deviceType)
	click.OS = derefString(os)
	click.Browser = derefString(browser)
	click.Country = derefString(country)
	click.City = derefString(city)

	return &click, nil
}
