// Package models contains the persisted entities of the analytics service
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Click represents a single recorded click event against a short code.
// Rows are append-only: nothing updates a click after creation.
// ShortCode loosely references the external URL registry; no foreign key
// is enforced here. The geolocation tuple is set once at creation from the
// resolver output and is either fully present or fully null.
type Click struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ShortCode   string    `gorm:"size:64;not null;index:idx_clicks_short_code" json:"short_code"`
	OriginalURL string    `gorm:"type:text;not null" json:"original_url"`

	UserAgent *string `gorm:"type:text" json:"user_agent,omitempty"`
	Referer   *string `gorm:"type:text" json:"referer,omitempty"`
	IPAddress *string `gorm:"size:64" json:"ip_address,omitempty"`

	// Raw forwarded-for chain, every hop, for abuse forensics
	ForwardedFor pq.StringArray `gorm:"type:text[]" json:"forwarded_for,omitempty"`

	Country     *string  `gorm:"size:128;index:idx_clicks_country" json:"country,omitempty"`
	CountryCode *string  `gorm:"size:8" json:"country_code,omitempty"`
	City        *string  `gorm:"size:128" json:"city,omitempty"`
	Region      *string  `gorm:"size:128" json:"region,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Timezone    *string  `gorm:"size:64" json:"timezone,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_clicks_created_at" json:"created_at"`
}

// TableName returns the table name for Click
func (Click) TableName() string { return "clicks" }

// BeforeCreate assigns the opaque click identifier
func (c *Click) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ClickFilter provides filter fields for repository queries
type ClickFilter struct {
	ShortCode     *string
	Country       *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// DailyClickCount is one calendar-day aggregation bucket (UTC boundaries)
type DailyClickCount struct {
	Day   time.Time `json:"day"`
	Count int64     `json:"count"`
}

// LocationClickCount is one row of the geographic breakdown
type LocationClickCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
