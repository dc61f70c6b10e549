package resolver

import (
	"net/url"
	"strings"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

// BuildFinalURL appends the link's UTM parameters to the destination URL.
// Parameters already present on the destination are overwritten by the
// link's values. The operation is idempotent: applying it twice yields
// the same URL.
func BuildFinalURL(link *model.Link) string {
	if !link.HasUTM() {
		return link.OriginalURL
	}

	params := utmParams(link)

	u, err := url.Parse(link.OriginalURL)
	if err != nil || u.Scheme == "" {
		// Unparseable destination: fall back to string concatenation,
		// preserving any existing query string.
		return concatParams(link.OriginalURL, params)
	}

	q := u.Query()
	for _, p := range params {
		q.Set(p.key, p.value)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

type utmParam struct {
	key   string
	value string
}

// utmParams returns the link's non-empty UTM fields in canonical order.
func utmParams(link *model.Link) []utmParam {
	var params []utmParam
	if link.UTMSource != "" {
		params = append(params, utmParam{"utm_source", link.UTMSource})
	}
	if link.UTMMedium != "" {
		params = append(params, utmParam{"utm_medium", link.UTMMedium})
	}
	if link.UTMCampaign != "" {
		params = append(params, utmParam{"utm_campaign", link.UTMCampaign})
	}
	if link.UTMTerm != "" {
		params = append(params, utmParam{"utm_term", link.UTMTerm})
	}
	if link.UTMContent != "" {
		params = append(params, utmParam{"utm_content", link.UTMContent})
	}
	return params
}

func concatParams(rawURL string, params []utmParam) string {
	var sb strings.Builder
	sb.WriteString(rawURL)

	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}

	for _, p := range params {
		sb.WriteString(sep)
		sb.WriteString(url.QueryEscape(p.key))
		sb.WriteString("=")
		sb.WriteString(url.QueryEscape(p.value))
		sep = "&"
	}

	return sb.String()
}
