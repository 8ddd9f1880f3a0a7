package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/amirphl/Yatagarasu/app/dto"
	"github.com/amirphl/Yatagarasu/app/services"
	"github.com/amirphl/Yatagarasu/models"
	"github.com/amirphl/Yatagarasu/repository"
	"github.com/amirphl/Yatagarasu/utils"
)

// Hard caps keeping every aggregation query structurally bounded
const (
	MaxHistoryLimit = 100
	MaxDailyDays    = 90
	TopCountryCount = 20
	TopCityCount    = 10
)

// ClickStatsFlow computes the four read views over recorded clicks. All
// operations are read-only and treat an unknown short code as an empty
// dataset, never as an error.
type ClickStatsFlow interface {
	Stats(ctx context.Context, shortCode string) (*dto.ClickStatsResponse, error)
	History(ctx context.Context, shortCode string, limit, offset int) (*dto.ClickHistoryResponse, error)
	Daily(ctx context.Context, shortCode string, days int) (*dto.DailyClicksResponse, error)
	Geo(ctx context.Context, shortCode string) (*dto.GeoBreakdownResponse, error)
}

type ClickStatsFlowImpl struct {
	clickRepo repository.ClickRepository
	cache     services.StatsCache
}

func NewClickStatsFlow(clickRepo repository.ClickRepository, cache services.StatsCache) ClickStatsFlow {
	return &ClickStatsFlowImpl{
		clickRepo: clickRepo,
		cache:     cache,
	}
}

func (f *ClickStatsFlowImpl) Stats(ctx context.Context, shortCode string) (*dto.ClickStatsResponse, error) {
	statsQueriesTotal.WithLabelValues("stats").Inc()

	if payload, ok := f.cache.Get(ctx, shortCode); ok {
		var cached dto.ClickStatsResponse
		if err := json.Unmarshal(payload, &cached); err == nil {
			return &cached, nil
		}
	}

	now := utils.UTCNow()

	total, err := f.clickRepo.Count(ctx, models.ClickFilter{ShortCode: &shortCode})
	if err != nil {
		return nil, NewBusinessError("STATS_QUERY_FAILED", "Failed to count clicks", err)
	}
	last24h, err := f.clickRepo.CountSince(ctx, shortCode, now.Add(-24*time.Hour))
	if err != nil {
		return nil, NewBusinessError("STATS_QUERY_FAILED", "Failed to count last 24h clicks", err)
	}
	last7d, err := f.clickRepo.CountSince(ctx, shortCode, now.Add(-7*24*time.Hour))
	if err != nil {
		return nil, NewBusinessError("STATS_QUERY_FAILED", "Failed to count last 7d clicks", err)
	}
	lastClickAt, err := f.clickRepo.LastClickAt(ctx, shortCode)
	if err != nil {
		return nil, NewBusinessError("STATS_QUERY_FAILED", "Failed to resolve last click", err)
	}

	stats := &dto.ClickStatsResponse{
		ShortCode:   shortCode,
		TotalClicks: total,
		Last24Hours: last24h,
		Last7Days:   last7d,
		LastClickAt: lastClickAt,
	}

	if payload, err := json.Marshal(stats); err == nil {
		f.cache.Set(ctx, shortCode, payload)
	}

	return stats, nil
}

func (f *ClickStatsFlowImpl) History(ctx context.Context, shortCode string, limit, offset int) (*dto.ClickHistoryResponse, error) {
	statsQueriesTotal.WithLabelValues("history").Inc()

	// Limit is clamped silently; offset passes through as requested
	limit = utils.Clamp(limit, 1, MaxHistoryLimit)

	filter := models.ClickFilter{ShortCode: &shortCode}

	total, err := f.clickRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("HISTORY_QUERY_FAILED", "Failed to count clicks", err)
	}

	rows, err := f.clickRepo.ByFilter(ctx, filter, "created_at DESC", limit, offset)
	if err != nil {
		return nil, NewBusinessError("HISTORY_QUERY_FAILED", "Failed to list clicks", err)
	}

	items := make([]dto.ClickHistoryItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, dto.ClickHistoryItem{
			Timestamp: row.CreatedAt,
			UserAgent: row.UserAgent,
			Referer:   row.Referer,
			Country:   row.Country,
			City:      row.City,
		})
	}

	return &dto.ClickHistoryResponse{
		ShortCode: shortCode,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
		Clicks:    items,
	}, nil
}

func (f *ClickStatsFlowImpl) Daily(ctx context.Context, shortCode string, days int) (*dto.DailyClicksResponse, error) {
	statsQueriesTotal.WithLabelValues("daily").Inc()

	days = utils.Clamp(days, 1, MaxDailyDays)
	since := utils.UTCNow().AddDate(0, 0, -days)

	buckets, err := f.clickRepo.DailyCounts(ctx, shortCode, since)
	if err != nil {
		return nil, NewBusinessError("DAILY_QUERY_FAILED", "Failed to aggregate daily clicks", err)
	}

	series := make([]dto.DailyClickBucket, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, dto.DailyClickBucket{
			Date:  b.Day.UTC().Format("2006-01-02"),
			Count: b.Count,
		})
	}

	return &dto.DailyClicksResponse{
		ShortCode: shortCode,
		Days:      days,
		Series:    series,
	}, nil
}

func (f *ClickStatsFlowImpl) Geo(ctx context.Context, shortCode string) (*dto.GeoBreakdownResponse, error) {
	statsQueriesTotal.WithLabelValues("geo").Inc()

	total, err := f.clickRepo.Count(ctx, models.ClickFilter{ShortCode: &shortCode})
	if err != nil {
		return nil, NewBusinessError("GEO_QUERY_FAILED", "Failed to count clicks", err)
	}
	located, err := f.clickRepo.CountWithLocation(ctx, shortCode)
	if err != nil {
		return nil, NewBusinessError("GEO_QUERY_FAILED", "Failed to count located clicks", err)
	}
	countryRows, err := f.clickRepo.TopCountries(ctx, shortCode, TopCountryCount)
	if err != nil {
		return nil, NewBusinessError("GEO_QUERY_FAILED", "Failed to aggregate countries", err)
	}
	cityRows, err := f.clickRepo.TopCities(ctx, shortCode, TopCityCount)
	if err != nil {
		return nil, NewBusinessError("GEO_QUERY_FAILED", "Failed to aggregate cities", err)
	}

	countries := make([]dto.CountryClicks, 0, len(countryRows))
	for _, row := range countryRows {
		countries = append(countries, dto.CountryClicks{Country: row.Name, Count: row.Count})
	}
	cities := make([]dto.CityClicks, 0, len(cityRows))
	for _, row := range cityRows {
		cities = append(cities, dto.CityClicks{City: row.Name, Count: row.Count})
	}

	return &dto.GeoBreakdownResponse{
		ShortCode:         shortCode,
		TotalClicks:       total,
		TotalWithLocation: located,
		Countries:         countries,
		Cities:            cities,
	}, nil
}
