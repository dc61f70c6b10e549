package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Alirezastar2/utmkit-sub000/internal/metrics"
	"github.com/Alirezastar2/utmkit-sub000/internal/middleware"
	"github.com/Alirezastar2/utmkit-sub000/internal/model"
	"github.com/Alirezastar2/utmkit-sub000/internal/realtime"
	"github.com/Alirezastar2/utmkit-sub000/internal/repository"
	"github.com/Alirezastar2/utmkit-sub000/internal/service"
)

// RealtimeHandler streams live click events as newline-delimited JSON.
type RealtimeHandler struct {
	svc       *service.LinkService
	repo      *repository.Repository
	hub       *realtime.Hub
	heartbeat time.Duration
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewRealtimeHandler creates a new RealtimeHandler.
func NewRealtimeHandler(svc *service.LinkService, repo *repository.Repository, hub *realtime.Hub, heartbeat time.Duration, logger *slog.Logger, recorder metrics.Recorder) *RealtimeHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &RealtimeHandler{
		svc:       svc,
		repo:      repo,
		hub:       hub,
		heartbeat: heartbeat,
		logger:    logger,
		metrics:   recorder,
	}
}

// frame is one NDJSON event on the stream.
type frame struct {
	Type      string       `json:"type"`
	Timestamp time.Time    `json:"timestamp"`
	Click     *model.Click `json:"click,omitempty"`
	Total     *int64       `json:"total_clicks,omitempty"`
	Message   string       `json:"message,omitempty"`
}

// Stream handles GET /api/links/{id}/realtime.
//
// The response is an unbounded NDJSON stream: a connected frame, an
// initial total, then new_clicks frames carrying the delta click and
// the running total, with heartbeats to keep intermediaries from
// closing the connection. The stream ends when the client disconnects.
func (h *RealtimeHandler) Stream(w http.ResponseWriter, r *http.Request) {
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

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "streaming not supported")
		return
	}

	ctx := r.Context()

	sub, err := h.hub.Subscribe(ctx, link.ID)
	if err != nil {
		h.logger.Error("realtime subscribe failed", "link_id", link.ID, "error", err)
		writeError(w, http.StatusServiceUnavailable, "REALTIME_UNAVAILABLE", "realtime feed unavailable")
		return
	}
	defer sub.Close()

	h.metrics.IncRealtimeSubscription()
	defer h.metrics.DecRealtimeSubscription()

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	rc := http.NewResponseController(w)

	writeFrame := func(f frame) bool {
		// The server's WriteTimeout measures from the start of the
		// request and would sever the stream; push the deadline ahead
		// of every frame so an active stream lives indefinitely.
		if err := extendWriteDeadline(rc, 2*h.heartbeat); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return false
		}
		f.Timestamp = time.Now().UTC()
		if err := enc.Encode(f); err != nil {
			return false
		}
		flusher.Flush()
		return true
	}

	if !writeFrame(frame{Type: "connected"}) {
		return
	}

	// Initial snapshot seeds the running total carried on every
	// new_clicks frame.
	var total *int64
	if n, err := h.repo.CountClicks(ctx, link.ID); err == nil {
		total = &n
		writeFrame(frame{Type: "stats", Total: &n})
	} else {
		writeFrame(frame{Type: "error", Message: "stats unavailable"})
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case click, ok := <-sub.Clicks():
			if !ok {
				writeFrame(frame{Type: "error", Message: "feed closed"})
				return
			}
			if !writeFrame(clickFrame(click, total)) {
				return
			}

		case <-ticker.C:
			if !writeFrame(frame{Type: "heartbeat"}) {
				return
			}
		}
	}
}

// clickFrame builds the new_clicks frame for one delivered click,
// advancing the running total when the initial snapshot succeeded.
func clickFrame(click *model.Click, total *int64) frame {
	f := frame{Type: "new_clicks", Click: click}
	if total != nil {
		*total++
		running := *total
		f.Total = &running
	}
	return f
}

// extendWriteDeadline moves the connection's write deadline d into the
// future. Long-lived streams would otherwise be cut off by the server's
// WriteTimeout, which counts from the start of the request.
func extendWriteDeadline(rc *http.ResponseController, d time.Duration) error {
	return rc.SetWriteDeadline(time.Now().Add(d))
}
