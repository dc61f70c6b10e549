package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// ErrReportNotFound indicates the scheduled report does not exist.
var ErrReportNotFound = errors.New("scheduled report not found")

const reportColumns = `
	id, user_id, frequency, day_of_week, day_of_month, time_of_day,
	format, link_ids, next_send, is_active, created_at, updated_at
`

// CreateReport inserts a new scheduled report.
func (r *Repository) CreateReport(ctx context.Context, report *model.ScheduledReport) error {
	query := `
		INSERT INTO scheduled_reports (
			id, user_id, frequency, day_of_week, day_of_month, time_of_day,
			format, link_ids, next_send, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		report.ID,
		report.UserID,
		string(report.Frequency),
		report.DayOfWeek,
		report.DayOfMonth,
		report.Time,
		report.Format,
		report.LinkIDs,
		report.NextSend,
		report.IsActive,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scheduled report: %w", err)
	}
	return nil
}

// GetReport retrieves a scheduled report by ID.
func (r *Repository) GetReport(ctx context.Context, id string) (*model.ScheduledReport, error) {
	query := `SELECT ` + reportColumns + ` FROM scheduled_reports WHERE id = $1`

	report, err := scanReport(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("query scheduled report: %w", err)
	}
	return report, nil
}

// ListReportsByUser retrieves all scheduled reports owned by a user.
func (r *Repository) ListReportsByUser(ctx context.Context, userID string) ([]*model.ScheduledReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM scheduled_reports
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query reports by user: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScheduledReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scheduled report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// ListDueReports retrieves active reports whose next send time has passed.
func (r *Repository) ListDueReports(ctx context.Context, now time.Time) ([]*model.ScheduledReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM scheduled_reports
		WHERE is_active = TRUE AND next_send <= $1
		ORDER BY next_send
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("query due reports: %w", err)
	}
	defer rows.Close()

	var reports []*model.ScheduledReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scheduled report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// UpdateReport updates a scheduled report's configuration.
func (r *Repository) UpdateReport(ctx context.Context, report *model.ScheduledReport) error {
	query := `
		UPDATE scheduled_reports
		SET frequency = $2, day_of_week = $3, day_of_month = $4,
			time_of_day = $5, format = $6, link_ids = $7, next_send = $8,
			is_active = $9, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		report.ID,
		string(report.Frequency),
		report.DayOfWeek,
		report.DayOfMonth,
		report.Time,
		report.Format,
		report.LinkIDs,
		report.NextSend,
		report.IsActive,
	)
	if err != nil {
		return fmt.Errorf("update scheduled report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// UpdateNextSend advances a report's next delivery time after a run.
func (r *Repository) UpdateNextSend(ctx context.Context, id string, nextSend time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE scheduled_reports SET next_send = $2, updated_at = NOW() WHERE id = $1`,
		id, nextSend)
	if err != nil {
		return fmt.Errorf("update next send: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

// DeleteReport removes a scheduled report.
func (r *Repository) DeleteReport(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scheduled_reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete scheduled report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReportNotFound
	}
	return nil
}

func scanReport(row pgx.Row) (*model.ScheduledReport, error) {
	var report model.ScheduledReport
	var frequency string

	err := row.Scan(
		&report.ID,
		&report.UserID,
		&frequency,
		&report.DayOfWeek,
		&report.DayOfMonth,
		&report.Time,
		&report.Format,
		&report.LinkIDs,
		&report.NextSend,
		&report.IsActive,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	report.Frequency = model.ReportFrequency(frequency)
	return &report, nil
}
