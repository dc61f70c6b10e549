package enrich

import (
	"regexp"
	"strings"

	"github.com/Alirezastar2/utmkit-sub000/internal/model"
)

var (
	tabletRe = regexp.MustCompile(`tablet|ipad|playbook|silk`)
	mobileRe = regexp.MustCompile(`mobile|iphone|ipod|android|blackberry|opera|mini|windows\sce|palm|smartphone|iemobile`)
)

// ParseUserAgent extracts device type, operating system, and browser
// from a User-Agent header. Empty input yields unknowns.
func ParseUserAgent(userAgent string) (device model.DeviceType, os, browser string) {
	if userAgent == "" {
		return model.DeviceUnknown, "Unknown", "Unknown"
	}

	ua := strings.ToLower(userAgent)

	// Tablet patterns must be checked before mobile, since tablet
	// user agents often contain "mobile" as well.
	switch {
	case tabletRe.MatchString(ua):
		device = model.DeviceTablet
	case mobileRe.MatchString(ua):
		device = model.DeviceMobile
	default:
		device = model.DeviceDesktop
	}

	os = "Unknown"
	switch {
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "mac"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "ios"):
		os = "iOS"
	}

	browser = "Unknown"
	switch {
	case strings.Contains(ua, "chrome") && !strings.Contains(ua, "edg"):
		browser = "Chrome"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "safari") && !strings.Contains(ua, "chrome"):
		browser = "Safari"
	case strings.Contains(ua, "edg"):
		browser = "Edge"
	case strings.Contains(ua, "opera") || strings.Contains(ua, "opr"):
		browser = "Opera"
	}

	return device, os, browser
}
