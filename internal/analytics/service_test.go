package analytics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnb-billing/mnb-pos/internal/shared"
)

type mockRepo struct {
	mu          sync.Mutex
	calls       map[string]int
	windows     []Window
	since       []time.Time
	revenue     float64
	bills       int
	hours       []HourBucket
	top         []TopProduct
	lowStockArg int
}

func newMockRepo() *mockRepo {
	return &mockRepo{calls: map[string]int{}, revenue: 540, bills: 3}
}

func (m *mockRepo) hit(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[name]++
}

func (m *mockRepo) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockRepo) Totals(context.Context) (float64, int, error) {
	m.hit("totals")
	return m.revenue, m.bills, nil
}

func (m *mockRepo) ProductCounts(_ context.Context, threshold int) (int, int, error) {
	m.hit("products")
	return 12, threshold / 5, nil
}

func (m *mockRepo) Revenue(_ context.Context, w Window) (float64, error) {
	m.hit("revenue")
	m.mu.Lock()
	m.windows = append(m.windows, w)
	m.mu.Unlock()
	return 100, nil
}

func (m *mockRepo) Profit(context.Context, Window) (float64, error) {
	m.hit("profit")
	return 25, nil
}

func (m *mockRepo) DailySales(_ context.Context, since time.Time) ([]SalesPoint, error) {
	m.hit("daily")
	m.since = append(m.since, since)
	return []SalesPoint{{Label: "2024-03-14", Revenue: 54, BillCount: 1}}, nil
}

func (m *mockRepo) MonthlySales(_ context.Context, since time.Time) ([]SalesPoint, error) {
	m.hit("monthly")
	m.since = append(m.since, since)
	return nil, nil
}

func (m *mockRepo) TopProducts(_ context.Context, w Window, _ int) ([]TopProduct, error) {
	m.hit("top")
	m.windows = append(m.windows, w)
	return m.top, nil
}

func (m *mockRepo) SalesByHour(_ context.Context, since time.Time) ([]HourBucket, error) {
	m.hit("hours")
	m.since = append(m.since, since)
	return append([]HourBucket(nil), m.hours...), nil
}

func (m *mockRepo) LowStock(_ context.Context, threshold int) ([]LowStockProduct, error) {
	m.hit("low")
	m.lowStockArg = threshold
	return []LowStockProduct{{ID: 1, Name: "Milk", Stocks: 2}}, nil
}

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, repo Repository) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(repo, NewCache(client, time.Minute, nil), 10)
	svc.now = func() time.Time { return fixedNow }
	return svc, mr
}

func TestDashboardStatsAggregatesAndCaches(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	stats, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, DashboardStats{
		TotalRevenue:  540,
		BillCount:     3,
		ProductCount:  12,
		LowStockCount: 2,
		TodayRevenue:  100,
		MonthRevenue:  100,
		TodayProfit:   25,
		MonthProfit:   25,
	}, stats)

	_, err = svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.count("totals"))

	require.Len(t, repo.windows, 2)
	want := map[Window]bool{
		{From: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)}: true,
		{From: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}:   true,
	}
	for _, w := range repo.windows {
		assert.True(t, want[w], "unexpected window %v", w)
	}
}

func TestInvalidateForcesReload(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(ctx))
	repo.revenue = 600

	stats, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.count("totals"))
	assert.InDelta(t, 600.0, stats.TotalRevenue, 0.001)
}

func TestServiceWithoutCacheAlwaysLoads(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, nil, 0)
	svc.now = func() time.Time { return fixedNow }

	for i := 0; i < 2; i++ {
		_, err := svc.DashboardStats(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, repo.count("totals"))
	assert.Equal(t, DefaultLowStockThreshold, svc.Threshold())
}

func TestSalesReportPeriods(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	daily, err := svc.SalesReport(ctx, "")
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "2024-03-14", daily[0].Label)

	monthly, err := svc.SalesReport(ctx, PeriodMonthly)
	require.NoError(t, err)
	assert.NotNil(t, monthly)
	assert.Empty(t, monthly)

	require.Len(t, repo.since, 2)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), repo.since[0])
	assert.Equal(t, time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC), repo.since[1])

	_, err = svc.SalesReport(ctx, PeriodYearly)
	require.ErrorIs(t, err, shared.ErrValidation)
	_, err = svc.SalesReport(ctx, "weekly")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestTopProductsWindows(t *testing.T) {
	repo := newMockRepo()
	repo.top = []TopProduct{{ProductID: 1, Name: "Rice", TotalQuantity: 4, TotalSales: 120}}
	svc, _ := newTestService(t, repo)

	top, err := svc.TopProducts(context.Background(), PeriodYearly)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "Rice", top[0].Name)
	require.Len(t, repo.windows, 1)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), repo.windows[0].From)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), repo.windows[0].To)
}

func TestSalesByTimeLabelsHours(t *testing.T) {
	repo := newMockRepo()
	repo.hours = []HourBucket{{Hour: 0, BillCount: 1}, {Hour: 12, BillCount: 2}, {Hour: 23, BillCount: 3}}
	svc, _ := newTestService(t, repo)

	buckets, err := svc.SalesByTime(context.Background())
	require.NoError(t, err)
	require.Len(t, buckets, 3)
	assert.Equal(t, "12am", buckets[0].Name)
	assert.Equal(t, "12pm", buckets[1].Name)
	assert.Equal(t, "11pm", buckets[2].Name)
	assert.Equal(t, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), repo.since[0])
	assert.Equal(t, "25:00", HourLabel(25))
}

func TestLowStockUsesConfiguredThreshold(t *testing.T) {
	repo := newMockRepo()
	svc, _ := newTestService(t, repo)

	products, err := svc.LowStock(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, 10, repo.lowStockArg)
}

func TestCacheVersionBumps(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute, nil)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "dashboard")
	require.NoError(t, err)
	assert.Equal(t, "mnb:stats:dashboard:v1", key)

	ver, err := cache.Bump(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver)

	key, err = cache.BuildKey(ctx, "dashboard")
	require.NoError(t, err)
	assert.Equal(t, "mnb:stats:dashboard:v2", key)
}

func TestHandlerRejectsUnknownPeriod(t *testing.T) {
	svc, _ := newTestService(t, newMockRepo())
	h := NewHandler(nil, svc)
	r := chi.NewRouter()
	passthrough := func(next http.Handler) http.Handler { return next }
	h.MountRoutes(r, passthrough)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/reports?period=hourly", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total_revenue":540`)
}

func TestReportsLoadWhenRedisGoesAway(t *testing.T) {
	repo := newMockRepo()
	svc, mr := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	mr.Close()

	stats, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 540.0, stats.TotalRevenue, 0.001)
	assert.Equal(t, 3, stats.BillCount)
	assert.Equal(t, 2, repo.count("totals"))

	points, err := svc.SalesReport(ctx, PeriodDaily)
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestFetchJSONServesLoaderOnRedisFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := NewCache(client, time.Minute, nil)
	mr.Close()

	var got map[string]int
	err := cache.FetchJSON(context.Background(), "mnb:stats:dashboard:v1", &got, func(context.Context) (any, error) {
		return map[string]int{"bills": 4}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"bills": 4}, got)
}
