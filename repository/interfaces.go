// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/Yatagarasu/models"
	"github.com/google/uuid"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uuid.UUID) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// ClickRepository defines operations for click events. Clicks are
// append-only: there are deliberately no update methods. The aggregation
// queries back the four read views of the stats API.
type ClickRepository interface {
	Repository[models.Click, models.ClickFilter]

	// LastClickAt returns the newest click timestamp for a short code,
	// or nil when the code has no clicks.
	LastClickAt(ctx context.Context, shortCode string) (*time.Time, error)

	// CountSince counts clicks for a short code with created_at >= since.
	CountSince(ctx context.Context, shortCode string, since time.Time) (int64, error)

	// DailyCounts groups clicks by UTC calendar day over [since, now],
	// ascending by day. Days without clicks are absent from the result.
	DailyCounts(ctx context.Context, shortCode string, since time.Time) ([]models.DailyClickCount, error)

	// TopCountries returns the most clicked countries, descending by count,
	// ties broken by name. Rows with a null country are excluded.
	TopCountries(ctx context.Context, shortCode string, limit int) ([]models.LocationClickCount, error)

	// TopCities returns the most clicked cities, same ordering rules.
	TopCities(ctx context.Context, shortCode string, limit int) ([]models.LocationClickCount, error)

	// CountWithLocation counts clicks whose country is non-null.
	CountWithLocation(ctx context.Context, shortCode string) (int64, error)
}
