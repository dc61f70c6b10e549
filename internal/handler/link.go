package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Alirezastar2/utmkit-sub000/internal/handler/dto"
	"github.com/Alirezastar2/utmkit-sub000/internal/middleware"
	"github.com/Alirezastar2/utmkit-sub000/internal/service"
)

// LinkHandler handles link management endpoints.
type LinkHandler struct {
	svc    *service.LinkService
	logger *slog.Logger
}

// NewLinkHandler creates a new LinkHandler.
func NewLinkHandler(svc *service.LinkService, logger *slog.Logger) *LinkHandler {
	return &LinkHandler{svc: svc, logger: logger}
}

// Create handles POST /api/links.
func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	link, err := h.svc.CreateLink(r.Context(), service.CreateLinkInput{
		OriginalURL: req.OriginalURL,
		ShortCode:   req.ShortCode,
		UserID:      middleware.GetUserID(r.Context()),
		Title:       req.Title,
		Description: req.Description,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		UTMTerm:     req.UTMTerm,
		UTMContent:  req.UTMContent,
		Password:    req.Password,
		ExpiresAt:   req.ExpiresAt,
		MaxClicks:   req.MaxClicks,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToLinkResponse(link, h.svc.ShortURL(link.ShortCode)))
}

// List handles GET /api/links.
func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.svc.ListLinks(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	resp := dto.LinkListResponse{Data: make([]*dto.LinkResponse, 0, len(links))}
	for _, link := range links {
		resp.Data = append(resp.Data, dto.ToLinkResponse(link, h.svc.ShortURL(link.ShortCode)))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/links/{id}.
func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, err := h.svc.GetLink(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkResponse(link, h.svc.ShortURL(link.ShortCode)))
}

// Update handles PATCH /api/links/{id}.
func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	link, err := h.svc.UpdateLink(r.Context(), service.UpdateLinkInput{
		ID:          chi.URLParam(r, "id"),
		UserID:      middleware.GetUserID(r.Context()),
		OriginalURL: req.OriginalURL,
		Title:       req.Title,
		Description: req.Description,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		UTMCampaign: req.UTMCampaign,
		UTMTerm:     req.UTMTerm,
		UTMContent:  req.UTMContent,
		IsActive:    req.IsActive,
		Password:    req.Password,
		ExpiresAt:   req.ExpiresAt,
		ClearExpiry: req.ClearExpiry,
		MaxClicks:   req.MaxClicks,
		ClearCap:    req.ClearCap,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLinkResponse(link, h.svc.ShortURL(link.ShortCode)))
}

// Delete handles DELETE /api/links/{id}.
func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.DeleteLink(r.Context(), chi.URLParam(r, "id"), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LinkHandler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrLinkNotFound), errors.Is(err, service.ErrNotOwner):
		// Treat foreign links as absent, don't reveal existence
		writeError(w, http.StatusNotFound, "LINK_NOT_FOUND", "link not found")
	case errors.Is(err, service.ErrShortCodeExists):
		writeError(w, http.StatusConflict, "SHORT_CODE_EXISTS", "short code already exists")
	case errors.Is(err, service.ErrInvalidDestination),
		errors.Is(err, service.ErrInvalidShortCode),
		errors.Is(err, service.ErrExpiresInPast),
		errors.Is(err, service.ErrInvalidMaxClicks),
		errors.Is(err, service.ErrURLTooLong):
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		h.logger.Error("link request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
	}
}
