package businessflow_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/amirphl/Yatagarasu/app/dto"
	businessflow "github.com/amirphl/Yatagarasu/business_flow"
	apptesting "github.com/amirphl/Yatagarasu/testing"
	"github.com/amirphl/Yatagarasu/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedClicks(t *testing.T, repo *apptesting.InMemoryClickRepository, shortCode string, ages ...time.Duration) {
	t.Helper()
	now := utils.UTCNow()
	for _, age := range ages {
		require.NoError(t, repo.Save(context.Background(), apptesting.NewTestClick(shortCode, now.Add(-age))))
	}
}

func TestStats_UnknownCodeYieldsZeros(t *testing.T) {
	repo := apptesting.NewInMemoryClickRepository()
	flow := businessflow.NewClickStatsFlow(repo, noopCache())

	stats, err := flow.Stats(context.Background(), "nothing-here")
	require.NoError(t, err)

	assert.Equal(t, "nothing-here", stats.ShortCode)
	assert.Zero(t, stats.TotalClicks)
	assert.Zero(t, stats.Last24Hours)
	assert.Zero(t, stats.Last7Days)
	assert.Nil(t, stats.LastClickAt)
}

func TestStats_WindowedCounts(t *testing.T) {
	repo := apptesting.NewInMemoryClickRepository()
	flow := businessflow.NewClickStatsFlow(repo, noopCache())

	// 2 clicks inside 24h, 2 more inside 7d, 1 older than 7d
	seedClicks(t, repo, "abc123",
		1*time.Hour,
		20*time.Hour,
		3*24*time.Hour,
		6*24*time.Hour,
		10*24*time.Hour,
	)
	// Another code must not bleed in
	seedClicks(t, repo, "other", 1*time.Hour)

	stats, err := flow.Stats(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, int64(5), stats.TotalClicks)
	assert.Equal(t, int64(2), stats.Last24Hours)
	assert.Equal(t, int64(4), stats.Last7Days)
	require.NotNil(t, stats.LastClickAt)
	assert.WithinDuration(t, utils.UTCNow().Add(-1*time.Hour), *stats.LastClickAt, time.Minute)
}

func TestStats_CacheShortCircuit(t *testing.T) {
	repo := apptesting.NewInMemoryClickRepository()
	repo.FailWith = assert.AnError // a cache hit must never reach the repository

	cached := dto.ClickStatsResponse{ShortCode: "abc123", TotalClicks: 7, Last24Hours: 3, Last7Days: 5}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)
	cache := &spyCache{payload: payload}

	flow := businessflow.NewClickStatsFlow(repo, cache)

	stats, err := flow.Stats(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), stats.TotalClicks)
	assert.Equal(t, int64(3), stats.Last24Hours)
}

func TestStats_PopulatesCacheOnMiss(t *testing.T) {
	repo := apptesting.NewInMemoryClickRepository()
	seedClicks(t, repo, "abc123", time.Hour)
	cache := &spyCache{}

	flow := businessflow.NewClickStatsFlow(repo, cache)

	_, err := flow.Stats(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)
}

func TestHistory_PaginationAndOrdering(t *testing.T) {
	repo := apptesting.NewInMemoryClickRepository()
	flow := businessflow.NewClickStatsFlow(repo, noopCache())
	ctx := context.Background()

	now := utils.UTCNow()
	for i := 0; i < 15; i++ {
		require.NoError(t, repo.Save(ctx, apptesting.NewTestClick("abc123", now.Add(-time.Duration(i)*time.Minute))))
	}

	page, err := flow.History(ctx, "abc123", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(15), page.Total)
	assert.Equal(t, 10, page.Limit)
	assert.Equal(t, 0, page.Offset)
	require.Len(t, page.Clicks, 10)

	// Newest first
	for i := 1; i < len(page.Clicks); i++ {
		assert.False(t, page.Clicks[i].Timestamp.After(page.Clicks[i-1].Timestamp))
	}

	rest, err := flow.History(ctx, "abc123", 10, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), rest.Total)
	require.Len(t, rest.Clicks, 5)

	// The second page continues exactly where the first ended
	assert.True(t, rest.Clicks[0].Timestamp.Before(page.Clicks[9].Timestamp))
}

func TestHistory_LimitClamping(t *testing.T) {
	repo := apptesting.NewInMemoryClickRepository()
	flow := businessflow.NewClickStatsFlow(repo, noopCache())
	ctx := context.Background()

	seedClicks(t, repo, "abc123", time.Minute)

	page, err := flow.History(ctx, "abc123", 5000, 0)
	require.NoError(t, err)
	assert.Equal(t, businessflow.MaxHistoryLimit, page.Limit)

	page, err = flow.History(ctx, "abc123", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Limit)

	page, err = flow.History(ctx, "abc123", -3, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Limit)
}

func TestHistory_OffsetPastEnd(t *testing.T) {
	repo := apptesting.NewInMemoryClickRepository()
	flow := businessflow.NewClickStatsFlow(repo, noopCache())

	seedClicks(t, repo, "abc123", time.Minute, 2*time.Minute)

	page, err := flow.History(context.Background(), "abc123", 10, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	assert.Empty(t, page.Clicks)
}

func TestDaily_SparseSeries(t *testing.T) {
	repo := apptesting.NewInMemoryClickRepository()
	flow := businessflow.NewClickStatsFlow(repo, noopCache())
	ctx := context.Background()

	today := utils.TruncateToUTCDay(utils.UTCNow())
	// Two clicks today, one click three days ago, nothing in between
	require.NoError(t, repo.Save(ctx, apptesting.NewTestClick("abc123", today.Add(2*time.Hour))))
	require.NoError(t, repo.Save(ctx, apptesting.NewTestClick("abc123", today.Add(5*time.Hour))))
	require.NoError(t, repo.Save(ctx, apptesting.NewTestClick("abc123", today.AddDate(0, 0, -3).Add(time.Hour))))

	resp, err := flow.Daily(ctx, "abc123", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, resp.Days)

	// Sparse: only the two days that actually had clicks, ascending
	require.Len(t, resp.Series, 2)
	assert.Equal(t, today.AddDate(0, 0, -3).Format("2006-01-02"), resp.Series[0].Date)
	assert.Equal(t, int64(1), resp.Series[0].Count)
	assert.Equal(t, today.Format("2006-01-02"), resp.Series[1].Date)
	assert.Equal(t, int64(2), resp.Series[1].Count)
}

func TestDaily_DaysClamping(t *testing.T) {
	repo := apptesting.NewInMemoryClickRepository()
	flow := businessflow.NewClickStatsFlow(repo, noopCache())
	ctx := context.Background()

	resp, err := flow.Daily(ctx, "abc123", 5000)
	require.NoError(t, err)
	assert.Equal(t, businessflow.MaxDailyDays, resp.Days)

	resp, err = flow.Daily(ctx, "abc123", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Days)
}

func TestGeo_Breakdown(t *testing.T) {
	repo := apptesting.NewInMemoryClickRepository()
	flow := businessflow.NewClickStatsFlow(repo, noopCache())
	ctx := context.Background()

	now := utils.UTCNow()
	require.NoError(t, repo.Save(ctx, apptesting.NewTestClick("abc123", now, apptesting.WithLocation("Germany", "Berlin"))))
	require.NoError(t, repo.Save(ctx, apptesting.NewTestClick("abc123", now, apptesting.WithLocation("Germany", "Munich"))))
	require.NoError(t, repo.Save(ctx, apptesting.NewTestClick("abc123", now, apptesting.WithLocation("France", "Paris"))))
	// One click the resolver could not place
	require.NoError(t, repo.Save(ctx, apptesting.NewTestClick("abc123", now)))

	resp, err := flow.Geo(ctx, "abc123")
	require.NoError(t, err)

	assert.Equal(t, int64(4), resp.TotalClicks)
	assert.Equal(t, int64(3), resp.TotalWithLocation)

	require.Len(t, resp.Countries, 2)
	assert.Equal(t, "Germany", resp.Countries[0].Country)
	assert.Equal(t, int64(2), resp.Countries[0].Count)
	assert.Equal(t, "France", resp.Countries[1].Country)

	require.Len(t, resp.Cities, 3)
	// Equal counts tie-break alphabetically
	assert.Equal(t, "Berlin", resp.Cities[0].City)
}

func TestGeo_EmptyCode(t *testing.T) {
	repo := apptesting.NewInMemoryClickRepository()
	flow := businessflow.NewClickStatsFlow(repo, noopCache())

	resp, err := flow.Geo(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Zero(t, resp.TotalClicks)
	assert.Zero(t, resp.TotalWithLocation)
	assert.Empty(t, resp.Countries)
	assert.Empty(t, resp.Cities)
}
