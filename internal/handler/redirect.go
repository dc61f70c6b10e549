package handler

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Alirezastar2/utmkit-sub000/internal/enrich"
	"github.com/Alirezastar2/utmkit-sub000/internal/metrics"
	"github.com/Alirezastar2/utmkit-sub000/internal/resolver"
)

// passwordParam is the query parameter carrying a visitor-supplied
// link password (the password form resubmits via GET).
const passwordParam = "p"

// enrichTimeout bounds the background click recording work.
const enrichTimeout = 10 * time.Second

// RedirectHandler handles redirect requests.
type RedirectHandler struct {
	resolver *resolver.Resolver
	enricher *enrich.Enricher
	homeURL  string
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewRedirectHandler creates a new RedirectHandler. homeURL is where
// visitors land when a short code cannot be served.
func NewRedirectHandler(res *resolver.Resolver, enricher *enrich.Enricher, homeURL string, logger *slog.Logger, recorder metrics.Recorder) *RedirectHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if homeURL == "" {
		homeURL = "/"
	}
	return &RedirectHandler{
		resolver: res,
		enricher: enricher,
		homeURL:  homeURL,
		logger:   logger,
		metrics:  recorder,
	}
}

// Redirect handles GET /l/{shortCode}.
//
// Unknown codes send the visitor to the home page rather than a bare
// 404: short links leak into emails and chats long after deletion, and
// a branded landing page beats an error for those visitors.
func (h *RedirectHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	shortCode := chi.URLParam(r, "shortCode")
	if shortCode == "" {
		http.Redirect(w, r, h.homeURL, http.StatusFound)
		return
	}

	start := time.Now()
	password := r.URL.Query().Get(passwordParam)

	res, err := h.resolver.Resolve(r.Context(), shortCode, password)
	duration := time.Since(start)

	if err != nil {
		// Never show visitors an error page for a broken short link
		h.logger.Error("redirect_error",
			"short_code", shortCode,
			"error", err,
			"duration_ms", float64(duration.Microseconds())/1000,
		)
		http.Redirect(w, r, h.homeURL, http.StatusFound)
		return
	}

	h.metrics.IncRedirect(res.Outcome.String())
	h.metrics.ObserveRedirectDuration(duration)

	switch res.Outcome {
	case resolver.OutcomeNotFound:
		h.logger.Info("redirect_not_found", "short_code", shortCode)
		http.Redirect(w, r, h.homeURL, http.StatusFound)

	case resolver.OutcomeInactive, resolver.OutcomeExpired, resolver.OutcomeCapReached:
		h.logger.Info("redirect_unavailable",
			"short_code", shortCode,
			"reason", res.Outcome.String(),
		)
		http.Redirect(w, r, "/link-expired", http.StatusFound)

	case resolver.OutcomePasswordRequired:
		h.renderPasswordForm(w, shortCode, false)

	case resolver.OutcomePasswordMismatch:
		h.logger.Info("redirect_password_mismatch", "short_code", shortCode)
		h.renderPasswordForm(w, shortCode, true)

	case resolver.OutcomeAuthorized:
		h.recordClickAsync(r, res)

		h.logger.Info("redirect_success",
			"short_code", shortCode,
			"link_id", res.Link.ID,
			"duration_ms", float64(duration.Microseconds())/1000,
		)

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Cache-Control", "private, max-age=0")

		http.Redirect(w, r, res.FinalURL, http.StatusFound)

	default:
		http.Redirect(w, r, h.homeURL, http.StatusFound)
	}
}

// LinkExpired handles GET /link-expired, the notice page for expired,
// disabled, and capped links.
func (h *RedirectHandler) LinkExpired(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusGone)
	fmt.Fprintf(w, linkExpiredPage, html.EscapeString(h.homeURL))
}

// recordClickAsync enriches and stores the click after the redirect
// response is on its way, detached from the request context.
func (h *RedirectHandler) recordClickAsync(r *http.Request, res *resolver.Resolution) {
	raw := enrich.RawClick{
		IP:        enrich.ClientIP(r),
		UserAgent: r.Header.Get("User-Agent"),
		Referer:   r.Header.Get("Referer"),
	}
	link := res.Link

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), enrichTimeout)
		defer cancel()
		h.enricher.Record(ctx, link, raw)
	}()
}

func (h *RedirectHandler) renderPasswordForm(w http.ResponseWriter, shortCode string, mismatch bool) {
	errorMsg := ""
	if mismatch {
		errorMsg = `<p class="error">Incorrect password, try again.</p>`
	}

	// The prompt is a normal page, not an auth challenge: browsers
	// must render it, and the form resubmits the same URL with ?p=.
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, passwordFormPage, html.EscapeString(shortCode), errorMsg)
}

const passwordFormPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Protected link</title>
<style>
body{font-family:system-ui,sans-serif;display:flex;justify-content:center;align-items:center;min-height:100vh;margin:0;background:#f5f5f5}
form{background:#fff;padding:2rem;border-radius:8px;box-shadow:0 1px 4px rgba(0,0,0,.1);max-width:320px;width:100%%}
input[type=password]{width:100%%;padding:.5rem;margin:.5rem 0;box-sizing:border-box}
button{width:100%%;padding:.5rem;background:#2563eb;color:#fff;border:0;border-radius:4px;cursor:pointer}
.error{color:#dc2626;font-size:.875rem}
</style>
</head>
<body>
<form method="GET" action="/l/%s">
<h1>This link is protected</h1>
%s
<input type="password" name="p" placeholder="Password" autofocus required>
<button type="submit">Continue</button>
</form>
</body>
</html>
`

const linkExpiredPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Link unavailable</title>
<style>
body{font-family:system-ui,sans-serif;display:flex;justify-content:center;align-items:center;min-height:100vh;margin:0;background:#f5f5f5;text-align:center}
main{background:#fff;padding:2rem;border-radius:8px;box-shadow:0 1px 4px rgba(0,0,0,.1)}
a{color:#2563eb}
</style>
</head>
<body>
<main>
<h1>This link is no longer available</h1>
<p>It may have expired, been disabled, or reached its click limit.</p>
<p><a href="%s">Go to home page</a></p>
</main>
</body>
</html>
`
