package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBrowser(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{"empty", "", BrowserOther},
		{"chrome desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36", BrowserChrome},
		{"chrome ios", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) CriOS/120.0.6099.119 Mobile/15E148 Safari/604.1", BrowserChrome},
		{"edge embeds chrome", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91", BrowserEdge},
		{"opera embeds chrome", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36 OPR/106.0.0.0", BrowserOpera},
		{"firefox", "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", BrowserFirefox},
		{"safari plain", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15", BrowserSafari},
		{"unrecognized", "SomeNewAgent/1.0", BrowserOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyBrowser(tt.userAgent))
		})
	}
}

func TestClassifyDevice(t *testing.T) {
	tests := []struct {
		name      string
		userAgent string
		expected  string
	}{
		{"empty", "", DeviceUnknown},
		{"googlebot", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", DeviceBot},
		{"curl", "curl/8.4.0", DeviceBot},
		{"ipad beats mobile", "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148 Safari/604.1", DeviceTablet},
		{"iphone", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148", DeviceMobile},
		{"android phone", "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 Chrome/120.0.0.0 Mobile Safari/537.36", DeviceMobile},
		{"windows desktop", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36", DeviceDesktop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyDevice(tt.userAgent))
		})
	}
}

func TestTruncateToUTCDay(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*3600)
	ts := time.Date(2026, 8, 30, 1, 30, 0, 0, loc) // 2026-08-29 22:30 UTC

	truncated := TruncateToUTCDay(ts)
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), truncated)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(-5, 1, 100))
	assert.Equal(t, 100, Clamp(500, 1, 100))
	assert.Equal(t, 42, Clamp(42, 1, 100))
}

func TestEmptyToNil(t *testing.T) {
	assert.Nil(t, EmptyToNil(""))
	assert.Nil(t, EmptyToNil("   "))
	if got := EmptyToNil("hello"); assert.NotNil(t, got) {
		assert.Equal(t, "hello", *got)
	}
}
