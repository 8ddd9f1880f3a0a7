package dto

import "time"

// TrackClickRequest is the ingestion payload sent by the URL registry (or
// any other trusted caller). Request fields are snake_case on the wire;
// responses are camelCase, matching the rest of the platform.
type TrackClickRequest struct {
	ShortCode   string `json:"short_code" validate:"required,max=64"`
	OriginalURL string `json:"original_url" validate:"required"`
}

// TrackClickResponse carries the identifier of the recorded click
type TrackClickResponse struct {
	ClickID string `json:"clickId"`
}

// ClickStatsResponse is the point-in-time counter view for one short code.
// An unknown short code yields zeros and a null lastClickAt, never a 404.
type ClickStatsResponse struct {
	ShortCode   string     `json:"shortCode"`
	TotalClicks int64      `json:"totalClicks"`
	Last24Hours int64      `json:"last24Hours"`
	Last7Days   int64      `json:"last7Days"`
	LastClickAt *time.Time `json:"lastClickAt"`
}

// ClickHistoryItem is one raw click projection in the paginated history
type ClickHistoryItem struct {
	Timestamp time.Time `json:"timestamp"`
	UserAgent *string   `json:"userAgent"`
	Referer   *string   `json:"referer"`
	Country   *string   `json:"country"`
	City      *string   `json:"city"`
}

// ClickHistoryResponse is a newest-first page of raw clicks. Limit echoes
// the clamped value actually applied, total is the unfiltered count.
type ClickHistoryResponse struct {
	ShortCode string             `json:"shortCode"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	Clicks    []ClickHistoryItem `json:"clicks"`
}

// DailyClickBucket is one UTC calendar-day aggregation bucket
type DailyClickBucket struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// DailyClicksResponse is a sparse ascending-by-date series: days without
// clicks are omitted, not zero-filled. Days echoes the clamped window.
type DailyClicksResponse struct {
	ShortCode string             `json:"shortCode"`
	Days      int                `json:"days"`
	Series    []DailyClickBucket `json:"series"`
}

// CountryClicks is one row of the per-country breakdown
type CountryClicks struct {
	Country string `json:"country"`
	Count   int64  `json:"count"`
}

// CityClicks is one row of the per-city breakdown
type CityClicks struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}

// GeoBreakdownResponse is the geographic view. totalClicks minus
// totalWithLocation gives the caller the "unknown location" remainder.
type GeoBreakdownResponse struct {
	ShortCode         string          `json:"shortCode"`
	TotalClicks       int64           `json:"totalClicks"`
	TotalWithLocation int64           `json:"totalWithLocation"`
	Countries         []CountryClicks `json:"countries"`
	Cities            []CityClicks    `json:"cities"`
}

// HealthResponse reports service liveness and per-component health
type HealthResponse struct {
	Status          string `json:"status"`
	Service         string `json:"service"`
	Version         string `json:"version"`
	DatabaseHealthy bool   `json:"databaseHealthy"`
	CacheHealthy    bool   `json:"cacheHealthy"`
	GeoIPEnabled    bool   `json:"geoipEnabled"`
}
