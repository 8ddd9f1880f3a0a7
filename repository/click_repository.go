package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/amirphl/Yatagarasu/models"
	"gorm.io/gorm"
)

// ClickRepositoryImpl implements ClickRepository
type ClickRepositoryImpl struct {
	*BaseRepository[models.Click, models.ClickFilter]
}

func NewClickRepository(db *gorm.DB) ClickRepository {
	return &ClickRepositoryImpl{BaseRepository: NewBaseRepository[models.Click, models.ClickFilter](db)}
}

// applyFilter applies ClickFilter conditions to the query
func (r *ClickRepositoryImpl) applyFilter(db *gorm.DB, filter models.ClickFilter) *gorm.DB {
	if filter.ShortCode != nil {
		db = db.Where("short_code = ?", *filter.ShortCode)
	}
	if filter.Country != nil {
		db = db.Where("country = ?", *filter.Country)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("created_at < ?", *filter.CreatedBefore)
	}
	return db
}

func (r *ClickRepositoryImpl) ByFilter(ctx context.Context, filter models.ClickFilter, orderBy string, limit, offset int) ([]*models.Click, error) {
	db := r.getDB(ctx)
	query := r.applyFilter(db.Model(&models.Click{}), filter)
	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	var rows []*models.Click
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}
	return rows, nil
}

func (r *ClickRepositoryImpl) Count(ctx context.Context, filter models.ClickFilter) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	query := r.applyFilter(db.Model(&models.Click{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks: %w", err)
	}
	return count, nil
}

func (r *ClickRepositoryImpl) Exists(ctx context.Context, filter models.ClickFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}

func (r *ClickRepositoryImpl) LastClickAt(ctx context.Context, shortCode string) (*time.Time, error) {
	db := r.getDB(ctx)
	var last sql.NullTime
	err := db.Model(&models.Click{}).
		Where("short_code = ?", shortCode).
		Select("MAX(created_at)").
		Row().Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("failed to query last click: %w", err)
	}
	if !last.Valid {
		return nil, nil
	}
	utc := last.Time.UTC()
	return &utc, nil
}

func (r *ClickRepositoryImpl) CountSince(ctx context.Context, shortCode string, since time.Time) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.Click{}).
		Where("short_code = ? AND created_at >= ?", shortCode, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count clicks since %s: %w", since, err)
	}
	return count, nil
}

func (r *ClickRepositoryImpl) DailyCounts(ctx context.Context, shortCode string, since time.Time) ([]models.DailyClickCount, error) {
	db := r.getDB(ctx)
	var rows []models.DailyClickCount
	err := db.Model(&models.Click{}).
		Select("date_trunc('day', created_at) AS day, COUNT(*) AS count").
		Where("short_code = ? AND created_at >= ?", shortCode, since).
		Group("day").
		Order("day ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily clicks: %w", err)
	}
	return rows, nil
}

func (r *ClickRepositoryImpl) TopCountries(ctx context.Context, shortCode string, limit int) ([]models.LocationClickCount, error) {
	db := r.getDB(ctx)
	var rows []models.LocationClickCount
	err := db.Model(&models.Click{}).
		Select("country AS name, COUNT(*) AS count").
		Where("short_code = ? AND country IS NOT NULL", shortCode).
		Group("country").
		Order("count DESC, country ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate clicks by country: %w", err)
	}
	return rows, nil
}

func (r *ClickRepositoryImpl) TopCities(ctx context.Context, shortCode string, limit int) ([]models.LocationClickCount, error) {
	db := r.getDB(ctx)
	var rows []models.LocationClickCount
	err := db.Model(&models.Click{}).
		Select("city AS name, COUNT(*) AS count").
		Where("short_code = ? AND city IS NOT NULL", shortCode).
		Group("city").
		Order("count DESC, city ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate clicks by city: %w", err)
	}
	return rows, nil
}

func (r *ClickRepositoryImpl) CountWithLocation(ctx context.Context, shortCode string) (int64, error) {
	db := r.getDB(ctx)
	var count int64
	err := db.Model(&models.Click{}).
		Where("short_code = ? AND country IS NOT NULL", shortCode).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count located clicks: %w", err)
	}
	return count, nil
}
