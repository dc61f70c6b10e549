package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Alirezastar2/utmkit-sub000/internal/export"
	"github.com/Alirezastar2/utmkit-sub000/internal/middleware"
	"github.com/Alirezastar2/utmkit-sub000/internal/repository"
	"github.com/Alirezastar2/utmkit-sub000/internal/service"
	"github.com/Alirezastar2/utmkit-sub000/internal/stats"
)

// ExportHandler serves click history downloads.
type ExportHandler struct {
	svc    *service.LinkService
	repo   *repository.Repository
	logger *slog.Logger
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc *service.LinkService, repo *repository.Repository, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{svc: svc, repo: repo, logger: logger}
}

// Export handles GET /api/links/{id}/export.
// Query params: format (csv|excel, default csv), filter, from, to.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.GetLink(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrLinkNotFound) || errors.Is(err, service.ErrNotOwner) {
			writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "link not found")
			return
		}
		h.logger.Error("link lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	q := r.URL.Query()

	format := q.Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "excel" {
		writeError(w, http.StatusBadRequest, "INVALID_FORMAT", "format must be csv or excel")
		return
	}

	window, err := stats.ParseWindow(q.Get("filter"), q.Get("from"), q.Get("to"), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_WINDOW", err.Error())
		return
	}

	clicks, err := h.repo.ListClicks(r.Context(), link.ID, window.Start, window.End)
	if err != nil {
		h.logger.Error("export query failed", "link_id", link.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	// Excel gets the same CSV body under a different content type,
	// which is enough for Excel to open it natively.
	contentType := export.ContentTypeCSV
	if format == "excel" {
		contentType = export.ContentTypeExcel
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename=%q`, export.Filename(link.ShortCode, format)))

	if err := export.WriteCSV(w, clicks); err != nil {
		h.logger.Error("export write failed", "link_id", link.ID, "error", err)
	}
}
