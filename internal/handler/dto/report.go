package dto

import (
	"time"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// CreateReportRequest represents the request body for scheduling a report.
type CreateReportRequest struct {
	Frequency  string   `json:"frequency"`
	DayOfWeek  *int     `json:"day_of_week,omitempty"`
	DayOfMonth *int     `json:"day_of_month,omitempty"`
	Time       string   `json:"time,omitempty"`
	Format     string   `json:"format,omitempty"`
	LinkIDs    []string `json:"link_ids,omitempty"`
}

// UpdateReportRequest represents the request body for updating a schedule.
type UpdateReportRequest struct {
	Frequency  *string   `json:"frequency,omitempty"`
	DayOfWeek  *int      `json:"day_of_week,omitempty"`
	DayOfMonth *int      `json:"day_of_month,omitempty"`
	Time       *string   `json:"time,omitempty"`
	Format     *string   `json:"format,omitempty"`
	LinkIDs    *[]string `json:"link_ids,omitempty"`
	IsActive   *bool     `json:"is_active,omitempty"`
}

// ReportResponse represents a scheduled report in API responses.
type ReportResponse struct {
	ID         string    `json:"id"`
	Frequency  string    `json:"frequency"`
	DayOfWeek  *int      `json:"day_of_week,omitempty"`
	DayOfMonth *int      `json:"day_of_month,omitempty"`
	Time       string    `json:"time"`
	Format     string    `json:"format"`
	LinkIDs    []string  `json:"link_ids,omitempty"`
	NextSend   time.Time `json:"next_send"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ReportListResponse represents a list of scheduled reports.
type ReportListResponse struct {
	Data []*ReportResponse `json:"data"`
}

// ToReportResponse converts a ScheduledReport model to its DTO.
func ToReportResponse(report *model.ScheduledReport) *ReportResponse {
	return &ReportResponse{
		ID:         report.ID,
		Frequency:  string(report.Frequency),
		DayOfWeek:  report.DayOfWeek,
		DayOfMonth: report.DayOfMonth,
		Time:       report.Time,
		Format:     report.Format,
		LinkIDs:    report.LinkIDs,
		NextSend:   report.NextSend,
		IsActive:   report.IsActive,
		CreatedAt:  report.CreatedAt,
		UpdatedAt:  report.UpdatedAt,
	}
}
