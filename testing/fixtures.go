// Package testing provides test utilities and in-memory fakes for the analytics service
package testing

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/amirphl/Yatagarasu/models"
	"github.com/amirphl/Yatagarasu/utils"
	"github.com/google/uuid"
)

// InMemoryClickRepository is a threadsafe in-memory stand-in for the real
// Postgres-backed click repository. It mirrors the SQL semantics the flows
// rely on: newest-first ordering, UTC day buckets, count-then-name ordering
// for the geo breakdowns.
type InMemoryClickRepository struct {
	mu     sync.RWMutex
	clicks []*models.Click

	// FailWith, when set, makes every operation return this error
	FailWith error
}

// NewInMemoryClickRepository creates an empty in-memory click repository
func NewInMemoryClickRepository() *InMemoryClickRepository {
	return &InMemoryClickRepository{}
}

func (r *InMemoryClickRepository) ByID(ctx context.Context, id uuid.UUID) (*models.Click, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.clicks {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *InMemoryClickRepository) matches(c *models.Click, filter models.ClickFilter) bool {
	if filter.ShortCode != nil && c.ShortCode != *filter.ShortCode {
		return false
	}
	if filter.Country != nil && (c.Country == nil || *c.Country != *filter.Country) {
		return false
	}
	if filter.CreatedAfter != nil && c.CreatedAt.Before(*filter.CreatedAfter) {
		return false
	}
	if filter.CreatedBefore != nil && c.CreatedAt.After(*filter.CreatedBefore) {
		return false
	}
	return true
}

func (r *InMemoryClickRepository) ByFilter(ctx context.Context, filter models.ClickFilter, orderBy string, limit, offset int) ([]*models.Click, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*models.Click
	for _, c := range r.clicks {
		if r.matches(c, filter) {
			cp := *c
			matched = append(matched, &cp)
		}
	}

	newestFirst := strings.Contains(strings.ToLower(orderBy), "desc")
	sort.SliceStable(matched, func(i, j int) bool {
		if newestFirst {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if offset > 0 {
		if offset >= len(matched) {
			return nil, nil
		}
		matched = matched[offset:]
	}
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *InMemoryClickRepository) Save(ctx context.Context, click *models.Click) error {
	if r.FailWith != nil {
		return r.FailWith
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if click.ID == uuid.Nil {
		click.ID = uuid.New()
	}
	if click.CreatedAt.IsZero() {
		click.CreatedAt = utils.UTCNow()
	}
	cp := *click
	r.clicks = append(r.clicks, &cp)
	return nil
}

func (r *InMemoryClickRepository) SaveBatch(ctx context.Context, clicks []*models.Click) error {
	for _, c := range clicks {
		if err := r.Save(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (r *InMemoryClickRepository) Count(ctx context.Context, filter models.ClickFilter) (int64, error) {
	if r.FailWith != nil {
		return 0, r.FailWith
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, c := range r.clicks {
		if r.matches(c, filter) {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryClickRepository) Exists(ctx context.Context, filter models.ClickFilter) (bool, error) {
	n, err := r.Count(ctx, filter)
	return n > 0, err
}

func (r *InMemoryClickRepository) LastClickAt(ctx context.Context, shortCode string) (*time.Time, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var last *time.Time
	for _, c := range r.clicks {
		if c.ShortCode != shortCode {
			continue
		}
		if last == nil || c.CreatedAt.After(*last) {
			t := c.CreatedAt
			last = &t
		}
	}
	return last, nil
}

func (r *InMemoryClickRepository) CountSince(ctx context.Context, shortCode string, since time.Time) (int64, error) {
	if r.FailWith != nil {
		return 0, r.FailWith
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, c := range r.clicks {
		if c.ShortCode == shortCode && !c.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (r *InMemoryClickRepository) DailyCounts(ctx context.Context, shortCode string, since time.Time) ([]models.DailyClickCount, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	byDay := make(map[time.Time]int64)
	for _, c := range r.clicks {
		if c.ShortCode != shortCode || c.CreatedAt.Before(since) {
			continue
		}
		byDay[utils.TruncateToUTCDay(c.CreatedAt)]++
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	result := make([]models.DailyClickCount, 0, len(days))
	for _, day := range days {
		result = append(result, models.DailyClickCount{Day: day, Count: byDay[day]})
	}
	return result, nil
}

func (r *InMemoryClickRepository) topLocations(shortCode string, limit int, field func(*models.Click) *string) []models.LocationClickCount {
	counts := make(map[string]int64)
	r.mu.RLock()
	for _, c := range r.clicks {
		if c.ShortCode != shortCode {
			continue
		}
		if name := field(c); name != nil {
			counts[*name]++
		}
	}
	r.mu.RUnlock()

	rows := make([]models.LocationClickCount, 0, len(counts))
	for name, count := range counts {
		rows = append(rows, models.LocationClickCount{Name: name, Count: count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Count != rows[j].Count {
			return rows[i].Count > rows[j].Count
		}
		return rows[i].Name < rows[j].Name
	})
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}

func (r *InMemoryClickRepository) TopCountries(ctx context.Context, shortCode string, limit int) ([]models.LocationClickCount, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	return r.topLocations(shortCode, limit, func(c *models.Click) *string { return c.Country }), nil
}

func (r *InMemoryClickRepository) TopCities(ctx context.Context, shortCode string, limit int) ([]models.LocationClickCount, error) {
	if r.FailWith != nil {
		return nil, r.FailWith
	}
	return r.topLocations(shortCode, limit, func(c *models.Click) *string { return c.City }), nil
}

func (r *InMemoryClickRepository) CountWithLocation(ctx context.Context, shortCode string) (int64, error) {
	if r.FailWith != nil {
		return 0, r.FailWith
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, c := range r.clicks {
		if c.ShortCode == shortCode && c.Country != nil {
			n++
		}
	}
	return n, nil
}

// NewTestClick builds a click for the given short code at the given time.
// Optional mutators adjust fields.
func NewTestClick(shortCode string, createdAt time.Time, mutators ...func(*models.Click)) *models.Click {
	click := &models.Click{
		ID:          uuid.New(),
		ShortCode:   shortCode,
		OriginalURL: "https://example.com/landing",
		UserAgent:   utils.ToPtr("Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0"),
		IPAddress:   utils.ToPtr("203.0.113.7"),
		CreatedAt:   createdAt.UTC(),
	}
	for _, m := range mutators {
		m(click)
	}
	return click
}

// WithLocation sets the geolocation tuple on a test click
func WithLocation(country, city string) func(*models.Click) {
	return func(c *models.Click) {
		c.Country = &country
		c.City = &city
	}
}
