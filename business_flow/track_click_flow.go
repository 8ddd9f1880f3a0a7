package businessflow

import (
	"context"
	"time"

	"github.com/amirphl/Yatagarasu/app/dto"
	"github.com/amirphl/Yatagarasu/app/services"
	"github.com/amirphl/Yatagarasu/models"
	"github.com/amirphl/Yatagarasu/repository"
	"github.com/amirphl/Yatagarasu/utils"
)

// TrackClickFlow records one click event against a short code. Ingestion is
// at-most-once: a failed store write loses the event, there is no retry or
// outbox. Geolocation and user-agent enrichment are best-effort and never
// fail the request.
type TrackClickFlow interface {
	Track(ctx context.Context, req *dto.TrackClickRequest, metadata *ClientMetadata) (*dto.TrackClickResponse, error)
}

type TrackClickFlowImpl struct {
	clickRepo repository.ClickRepository
	geoip     services.GeoIPService
	cache     services.StatsCache
}

func NewTrackClickFlow(
	clickRepo repository.ClickRepository,
	geoip services.GeoIPService,
	cache services.StatsCache,
) TrackClickFlow {
	return &TrackClickFlowImpl{
		clickRepo: clickRepo,
		geoip:     geoip,
		cache:     cache,
	}
}

func (f *TrackClickFlowImpl) Track(ctx context.Context, req *dto.TrackClickRequest, metadata *ClientMetadata) (*dto.TrackClickResponse, error) {
	start := time.Now()

	if req == nil || req.ShortCode == "" {
		return nil, ErrShortCodeRequired
	}
	if req.OriginalURL == "" {
		return nil, ErrOriginalURLRequired
	}
	if metadata == nil {
		metadata = &ClientMetadata{}
	}

	clientIP := metadata.ClientIP()

	click := &models.Click{
		ShortCode:   req.ShortCode,
		OriginalURL: req.OriginalURL,
		UserAgent:   utils.EmptyToNil(metadata.UserAgent),
		Referer:     utils.EmptyToNil(metadata.Referer),
		IPAddress:   clientIP,
		CreatedAt:   utils.UTCNow(),
	}
	if len(metadata.ForwardedFor) > 0 {
		click.ForwardedFor = metadata.ForwardedFor
	}

	country := "unknown"
	if clientIP != nil {
		if loc := f.geoip.Lookup(*clientIP); loc != nil {
			click.Country = loc.Country
			click.CountryCode = loc.CountryCode
			click.City = loc.City
			click.Region = loc.Region
			click.Latitude = loc.Latitude
			click.Longitude = loc.Longitude
			click.Timezone = loc.Timezone
			if loc.CountryCode != nil {
				country = *loc.CountryCode
			}
		}
	}

	if err := f.clickRepo.Save(ctx, click); err != nil {
		return nil, NewBusinessError("CLICK_SAVE_FAILED", "Failed to record click", err)
	}

	clicksTrackedTotal.Inc()
	clicksByCountry.WithLabelValues(country).Inc()
	clicksByBrowser.WithLabelValues(utils.ClassifyBrowser(metadata.UserAgent)).Inc()
	clicksByDevice.WithLabelValues(utils.ClassifyDevice(metadata.UserAgent)).Inc()
	clickProcessingDuration.Observe(time.Since(start).Seconds())

	// The cached point-stats for this code are stale now
	f.cache.Invalidate(ctx, req.ShortCode)

	return &dto.TrackClickResponse{ClickID: click.ID.String()}, nil
}
