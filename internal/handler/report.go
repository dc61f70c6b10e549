package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Alirezastar2/utmkit-sub000/internal/handler/dto"
	"github.com/Alirezastar2/utmkit-sub000/internal/middleware"
	"github.com/Alirezastar2/utmkit-sub000/internal/model"
	"github.com/Alirezastar2/utmkit-sub000/internal/report"
	"github.com/Alirezastar2/utmkit-sub000/internal/repository"
)

// ReportHandler handles scheduled report management endpoints.
type ReportHandler struct {
	repo   *repository.Repository
	logger *slog.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(repo *repository.Repository, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{repo: repo, logger: logger}
}

// Create handles POST /api/reports.
func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	frequency := model.ReportFrequency(req.Frequency)
	if err := validateReportInput(frequency, req.DayOfWeek, req.DayOfMonth, req.Time); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	format := req.Format
	if format == "" {
		format = "json"
	}

	sendTime := req.Time
	if sendTime == "" {
		sendTime = report.DefaultSendTime
	}

	now := time.Now().UTC()
	schedule := &model.ScheduledReport{
		ID:         uuid.NewString(),
		UserID:     middleware.GetUserID(r.Context()),
		Frequency:  frequency,
		DayOfWeek:  req.DayOfWeek,
		DayOfMonth: req.DayOfMonth,
		Time:       sendTime,
		Format:     format,
		LinkIDs:    req.LinkIDs,
		NextSend:   report.NextSend(now, frequency, req.DayOfWeek, req.DayOfMonth, sendTime),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.repo.CreateReport(r.Context(), schedule); err != nil {
		h.logger.Error("report create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToReportResponse(schedule))
}

// List handles GET /api/reports.
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.repo.ListReportsByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.logger.Error("report list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	resp := dto.ReportListResponse{Data: make([]*dto.ReportResponse, 0, len(schedules))}
	for _, schedule := range schedules {
		resp.Data = append(resp.Data, dto.ToReportResponse(schedule))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/reports/{id}.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	schedule, ok := h.ownedReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.ToReportResponse(schedule))
}

// Update handles PATCH /api/reports/{id}. Schedule changes recompute
// the next send time.
func (h *ReportHandler) Update(w http.ResponseWriter, r *http.Request) {
	schedule, ok := h.ownedReport(w, r)
	if !ok {
		return
	}

	var req dto.UpdateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.Frequency != nil {
		schedule.Frequency = model.ReportFrequency(*req.Frequency)
	}
	if req.DayOfWeek != nil {
		schedule.DayOfWeek = req.DayOfWeek
	}
	if req.DayOfMonth != nil {
		schedule.DayOfMonth = req.DayOfMonth
	}
	if req.Time != nil {
		schedule.Time = *req.Time
	}
	if req.Format != nil {
		schedule.Format = *req.Format
	}
	if req.LinkIDs != nil {
		schedule.LinkIDs = *req.LinkIDs
	}
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}

	if err := validateReportInput(schedule.Frequency, schedule.DayOfWeek, schedule.DayOfMonth, schedule.Time); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	schedule.NextSend = report.NextSend(time.Now().UTC(), schedule.Frequency,
		schedule.DayOfWeek, schedule.DayOfMonth, schedule.Time)

	if err := h.repo.UpdateReport(r.Context(), schedule); err != nil {
		h.logger.Error("report update failed", "report_id", schedule.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToReportResponse(schedule))
}

// Delete handles DELETE /api/reports/{id}.
func (h *ReportHandler) Delete(w http.ResponseWriter, r *http.Request) {
	schedule, ok := h.ownedReport(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteReport(r.Context(), schedule.ID); err != nil {
		h.logger.Error("report delete failed", "report_id", schedule.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ReportHandler) ownedReport(w http.ResponseWriter, r *http.Request) (*model.ScheduledReport, bool) {
	schedule, err := h.repo.GetReport(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, repository.ErrReportNotFound) {
			writeError(w, http.StatusNotFound, "REPORT_NOT_FOUND", "report not found")
			return nil, false
		}
		h.logger.Error("report lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return nil, false
	}

	if schedule.UserID != middleware.GetUserID(r.Context()) {
		writeError(w, http.StatusNotFound, "REPORT_NOT_FOUND", "report not found")
		return nil, false
	}

	return schedule, true
}

func validateReportInput(frequency model.ReportFrequency, dayOfWeek, dayOfMonth *int, sendTime string) error {
	if !model.IsValidFrequency(frequency) {
		return errors.New("frequency must be daily, weekly, or monthly")
	}
	if dayOfWeek != nil && (*dayOfWeek < 0 || *dayOfWeek > 6) {
		return errors.New("day_of_week must be between 0 (Sunday) and 6")
	}
	if dayOfMonth != nil && (*dayOfMonth < 1 || *dayOfMonth > 28) {
		return errors.New("day_of_month must be between 1 and 28")
	}
	if sendTime != "" {
		if _, err := time.Parse("15:04", sendTime); err != nil {
			return errors.New("time must be in HH:mm format")
		}
	}
	return nil
}
