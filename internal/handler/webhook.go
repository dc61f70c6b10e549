package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Alirezastar2/utmkit-sub000/internal/handler/dto"
	"github.com/Alirezastar2/utmkit-sub000/internal/middleware"
	"github.com/Alirezastar2/utmkit-sub000/internal/model"
	"github.com/Alirezastar2/utmkit-sub000/internal/webhook"
)

// WebhookHandler handles webhook management endpoints.
type WebhookHandler struct {
	repo   *webhook.Repository
	logger *slog.Logger
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(repo *webhook.Repository, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{repo: repo, logger: logger}
}

// Create handles POST /api/webhooks. The signing secret is returned
// once in the response and never again.
func (h *WebhookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	events, err := validateWebhookInput(req.URL, req.Events)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	secret, err := webhook.GenerateSecret()
	if err != nil {
		h.logger.Error("secret generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	now := time.Now().UTC()
	hook := &model.Webhook{
		ID:        uuid.NewString(),
		UserID:    middleware.GetUserID(r.Context()),
		URL:       req.URL,
		Events:    events,
		Secret:    secret,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.repo.CreateWebhook(r.Context(), hook); err != nil {
		h.logger.Error("webhook create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	writeJSON(w, http.StatusCreated, dto.ToWebhookResponse(hook, true))
}

// List handles GET /api/webhooks.
func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	hooks, err := h.repo.ListWebhooksByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.logger.Error("webhook list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	resp := dto.WebhookListResponse{Data: make([]*dto.WebhookResponse, 0, len(hooks))}
	for _, hook := range hooks {
		resp.Data = append(resp.Data, dto.ToWebhookResponse(hook, false))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /api/webhooks/{id}.
func (h *WebhookHandler) Get(w http.ResponseWriter, r *http.Request) {
	hook, ok := h.ownedWebhook(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, dto.ToWebhookResponse(hook, false))
}

// Update handles PATCH /api/webhooks/{id}.
func (h *WebhookHandler) Update(w http.ResponseWriter, r *http.Request) {
	hook, ok := h.ownedWebhook(w, r)
	if !ok {
		return
	}

	var req dto.UpdateWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}

	if req.URL != nil {
		hook.URL = *req.URL
	}
	if req.Events != nil {
		events, err := validateWebhookInput(hook.URL, *req.Events)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
		hook.Events = events
	} else if req.URL != nil {
		if _, err := validateWebhookInput(hook.URL, eventNames(hook.Events)); err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			return
		}
	}
	if req.IsActive != nil {
		hook.IsActive = *req.IsActive
	}

	if err := h.repo.UpdateWebhook(r.Context(), hook); err != nil {
		h.logger.Error("webhook update failed", "webhook_id", hook.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToWebhookResponse(hook, false))
}

// Delete handles DELETE /api/webhooks/{id}.
func (h *WebhookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	hook, ok := h.ownedWebhook(w, r)
	if !ok {
		return
	}

	if err := h.repo.DeleteWebhook(r.Context(), hook.ID); err != nil {
		h.logger.Error("webhook delete failed", "webhook_id", hook.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ownedWebhook loads the webhook and enforces ownership. Foreign
// webhooks are reported as absent.
func (h *WebhookHandler) ownedWebhook(w http.ResponseWriter, r *http.Request) (*model.Webhook, bool) {
	hook, err := h.repo.GetWebhook(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, webhook.ErrWebhookNotFound) {
			writeError(w, http.StatusNotFound, "WEBHOOK_NOT_FOUND", "webhook not found")
			return nil, false
		}
		h.logger.Error("webhook lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred")
		return nil, false
	}

	if hook.UserID != middleware.GetUserID(r.Context()) {
		writeError(w, http.StatusNotFound, "WEBHOOK_NOT_FOUND", "webhook not found")
		return nil, false
	}

	return hook, true
}

func validateWebhookInput(rawURL string, eventNames []string) ([]model.EventType, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, errors.New("url must be a valid http or https URL")
	}

	if len(eventNames) == 0 {
		return nil, errors.New("at least one event is required")
	}

	events := make([]model.EventType, 0, len(eventNames))
	for _, name := range eventNames {
		et := model.EventType(name)
		if !model.IsValidEventType(et) {
			return nil, errors.New("unknown event type: " + name)
		}
		events = append(events, et)
	}
	return events, nil
}

func eventNames(events []model.EventType) []string {
	names := make([]string, len(events))
	for i, et := range events {
		names[i] = string(et)
	}
	return names
}
