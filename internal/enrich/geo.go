package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/netip"
	"time"
)

// GeoClient resolves IP addresses to a country code and city using an
// ip-api.com compatible endpoint.
type GeoClient struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// NewGeoClient creates a GeoClient against the given endpoint
// (e.g. http://ip-api.com/json).
func NewGeoClient(endpoint string, timeout time.Duration, logger *slog.Logger) *GeoClient {
	return &GeoClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With("component", "geoip"),
	}
}

type geoResponse struct {
	Status      string `json:"status"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
}

// Lookup resolves country and city for the given IP. Private, loopback,
// and unparseable addresses return empty values without a network call.
// Lookup failures are absorbed and logged, never surfaced to the caller.
func (g *GeoClient) Lookup(ctx context.Context, ip string) (country, city string) {
	if !isPublicIP(ip) {
		return "", ""
	}

	url := fmt.Sprintf("%s/%s?fields=status,countryCode,city", g.endpoint, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", ""
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Debug("geo lookup failed", "ip", ip, "error", err)
		return "", ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Debug("geo lookup non-ok status", "ip", ip, "status", resp.StatusCode)
		return "", ""
	}

	var body geoResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		g.logger.Debug("geo lookup decode failed", "ip", ip, "error", err)
		return "", ""
	}

	if body.Status != "success" {
		return "", ""
	}

	return body.CountryCode, body.City
}

// isPublicIP reports whether the address is worth sending to the geo
// service. Private ranges and loopback always resolve to nothing.
func isPublicIP(ip string) bool {
	if ip == "" || ip == "unknown" {
		return false
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}

	return !addr.IsLoopback() && !addr.IsPrivate() && !addr.IsLinkLocalUnicast() && !addr.IsUnspecified()
}
