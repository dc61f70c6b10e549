package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Alirezastar2/utmkit-sub000/internal/middleware"
	"github.com/Alirezastar2/utmkit-sub000/internal/repository"
	"github.com/Alirezastar2/utmkit-sub000/internal/service"
	"github.com/Alirezastar2/utmkit-sub000/internal/stats"
)

// StatsHandler serves per-link analytics.
type StatsHandler struct {
	svc    *service.LinkService
	repo   *repository.Repository
	logger *slog.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(svc *service.LinkService, repo *repository.Repository, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{svc: svc, repo: repo, logger: logger}
}

// Stats handles GET /api/links/{id}/stats.
// Query params: filter (all|today|7d|30d|custom), from, to (YYYY-MM-DD).
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.GetLink(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeOwnedLinkError(w, err)
		return
	}

	q := r.URL.Query()
	window, err := stats.ParseWindow(q.Get("filter"), q.Get("from"), q.Get("to"), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_WINDOW", err.Error())
		return
	}

	clicks, err := h.repo.ListClicks(r.Context(), link.ID, window.Start, window.End)
	if err != nil {
		h.logger.Error("stats query failed", "link_id", link.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, stats.Aggregate(link.ID, clicks, window))
}

// RecentClicks handles GET /api/links/{id}/clicks.
// Query params: limit (default 10, max 100).
func (h *StatsHandler) RecentClicks(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.GetLink(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeOwnedLinkError(w, err)
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer")
			return
		}
		if parsed > 100 {
			parsed = 100
		}
		limit = parsed
	}

	clicks, err := h.repo.ListRecentClicks(r.Context(), link.ID, limit)
	if err != nil {
		h.logger.Error("recent clicks query failed", "link_id", link.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"data": clicks})
}

func (h *StatsHandler) writeOwnedLinkError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrLinkNotFound) || errors.Is(err, service.ErrNotOwner) {
		writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "link not found")
		return
	}
	h.logger.Error("link lookup failed", "error", err)
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
}
