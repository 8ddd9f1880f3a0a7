package utils

import "strings"

// Browser and device buckets used by the click metrics. Buckets are coarse
// on purpose: they feed low-cardinality Prometheus labels, not reporting.
const (
	BrowserChrome  = "chrome"
	BrowserFirefox = "firefox"
	BrowserSafari  = "safari"
	BrowserEdge    = "edge"
	BrowserOpera   = "opera"
	BrowserOther   = "other"

	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceDesktop = "desktop"
	DeviceUnknown = "unknown"
)

// ClassifyBrowser buckets a User-Agent header into a browser family.
// Order matters: Edge and Opera embed "Chrome", Chrome embeds "Safari".
func ClassifyBrowser(userAgent string) string {
	ua := strings.ToLower(userAgent)
	switch {
	case ua == "":
		return BrowserOther
	case strings.Contains(ua, "edg/") || strings.Contains(ua, "edge"):
		return BrowserEdge
	case strings.Contains(ua, "opr/") || strings.Contains(ua, "opera"):
		return BrowserOpera
	case strings.Contains(ua, "firefox"):
		return BrowserFirefox
	case strings.Contains(ua, "chrome") || strings.Contains(ua, "crios"):
		return BrowserChrome
	case strings.Contains(ua, "safari"):
		return BrowserSafari
	default:
		return BrowserOther
	}
}

// ClassifyDevice buckets a User-Agent header into a device category.
// Bots win over everything, tablets win over mobiles (an iPad UA also
// says "Mobile").
func ClassifyDevice(userAgent string) string {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return DeviceUnknown
	}
	switch {
	case strings.Contains(ua, "bot") ||
		strings.Contains(ua, "crawler") ||
		strings.Contains(ua, "spider") ||
		strings.Contains(ua, "curl") ||
		strings.Contains(ua, "wget"):
		return DeviceBot
	case strings.Contains(ua, "ipad") || strings.Contains(ua, "tablet"):
		return DeviceTablet
	case strings.Contains(ua, "mobile") ||
		strings.Contains(ua, "iphone") ||
		strings.Contains(ua, "android"):
		return DeviceMobile
	default:
		return DeviceDesktop
	}
}
