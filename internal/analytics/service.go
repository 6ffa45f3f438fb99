package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/mnb-billing/mnb-pos/internal/shared"
)

// Lookback windows for the time based reports.
const (
	dailyReportDays   = 7
	monthlyReportSpan = 12
	salesByTimeDays   = 30
)

var hourLabels = [24]string{
	"12am", "1am", "2am", "3am", "4am", "5am", "6am", "7am", "8am", "9am", "10am", "11am",
	"12pm", "1pm", "2pm", "3pm", "4pm", "5pm", "6pm", "7pm", "8pm", "9pm", "10pm", "11pm",
}

// Service coordinates report queries with the cache layer.
type Service struct {
	repo      Repository
	cache     *Cache
	threshold int
	group     singleflight.Group
	now       func() time.Time
}

// NewService wires a Repository with a Cache helper. cache may be nil.
func NewService(repo Repository, cache *Cache, lowStockThreshold int) *Service {
	if lowStockThreshold <= 0 {
		lowStockThreshold = DefaultLowStockThreshold
	}
	return &Service{repo: repo, cache: cache, threshold: lowStockThreshold, now: time.Now}
}

// Threshold reports the configured low-stock threshold.
func (s *Service) Threshold() int { return s.threshold }

// Invalidate drops every cached report.
func (s *Service) Invalidate(ctx context.Context) error {
	_, err := s.cache.Bump(ctx)
	return err
}

// DashboardStats returns the headline cards. The underlying queries run concurrently.
func (s *Service) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var stats DashboardStats
	err := s.cached(ctx, &stats, func(ctx context.Context) (any, error) {
		return s.loadStats(ctx)
	}, "dashboard", strconv.Itoa(s.threshold), s.dayKey())
	return stats, err
}

func (s *Service) loadStats(ctx context.Context) (DashboardStats, error) {
	var out DashboardStats
	today, month := s.today(), s.month()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.TotalRevenue, out.BillCount, err = s.repo.Totals(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		out.ProductCount, out.LowStockCount, err = s.repo.ProductCounts(ctx, s.threshold)
		return err
	})
	g.Go(func() error {
		var err error
		out.TodayRevenue, err = s.repo.Revenue(ctx, today)
		return err
	})
	g.Go(func() error {
		var err error
		out.MonthRevenue, err = s.repo.Revenue(ctx, month)
		return err
	})
	g.Go(func() error {
		var err error
		out.TodayProfit, err = s.repo.Profit(ctx, today)
		return err
	})
	g.Go(func() error {
		var err error
		out.MonthProfit, err = s.repo.Profit(ctx, month)
		return err
	})
	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}
	return out, nil
}

// SalesReport returns revenue per day for the last week or per month for the last year.
func (s *Service) SalesReport(ctx context.Context, period Period) ([]SalesPoint, error) {
	period, err := parsePeriod(period, PeriodDaily, PeriodMonthly)
	if err != nil {
		return nil, err
	}
	var points []SalesPoint
	err = s.cached(ctx, &points, func(ctx context.Context) (any, error) {
		start := s.today().From
		if period == PeriodMonthly {
			return s.repo.MonthlySales(ctx, start.AddDate(0, -monthlyReportSpan, 0))
		}
		return s.repo.DailySales(ctx, start.AddDate(0, 0, -dailyReportDays))
	}, "sales", string(period), s.dayKey())
	return nonNil(points), err
}

// TopProducts ranks products by sales value for today, this month or this year.
func (s *Service) TopProducts(ctx context.Context, period Period) ([]TopProduct, error) {
	period, err := parsePeriod(period, PeriodDaily, PeriodMonthly, PeriodYearly)
	if err != nil {
		return nil, err
	}
	var window Window
	switch period {
	case PeriodMonthly:
		window = s.month()
	case PeriodYearly:
		window = s.year()
	default:
		window = s.today()
	}
	var top []TopProduct
	err = s.cached(ctx, &top, func(ctx context.Context) (any, error) {
		return s.repo.TopProducts(ctx, window, TopProductsLimit)
	}, "top", string(period), s.dayKey())
	return nonNil(top), err
}

// SalesByTime groups the last 30 days of bills by hour of day.
func (s *Service) SalesByTime(ctx context.Context) ([]HourBucket, error) {
	var buckets []HourBucket
	err := s.cached(ctx, &buckets, func(ctx context.Context) (any, error) {
		rows, err := s.repo.SalesByHour(ctx, s.today().From.AddDate(0, 0, -salesByTimeDays))
		if err != nil {
			return nil, err
		}
		for i := range rows {
			rows[i].Name = HourLabel(rows[i].Hour)
		}
		return rows, nil
	}, "by-hour", s.dayKey())
	return nonNil(buckets), err
}

// LowStock lists products under threshold, or under the configured one when threshold <= 0.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]LowStockProduct, error) {
	if threshold <= 0 {
		threshold = s.threshold
	}
	products, err := s.repo.LowStock(ctx, threshold)
	return nonNil(products), err
}

// HourLabel renders 0..23 as 12am..11pm.
func HourLabel(hour int) string {
	if hour < 0 || hour >= len(hourLabels) {
		return fmt.Sprintf("%d:00", hour)
	}
	return hourLabels[hour]
}

// cached resolves key through singleflight and the versioned cache.
func (s *Service) cached(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	key, err := s.cache.BuildKey(ctx, parts...)
	cacheable := err == nil
	if !cacheable {
		s.cache.warn("stats cache version unavailable", strings.Join(parts, ":"), err)
		key = "uncached:" + strings.Join(parts, ":")
	}
	ch := s.group.DoChan(key, func() (any, error) {
		if !cacheable {
			value, err := loader(ctx)
			if err != nil {
				return nil, err
			}
			raw, err := json.Marshal(value)
			return json.RawMessage(raw), err
		}
		var raw json.RawMessage
		err := s.cache.FetchJSON(ctx, key, &raw, loader)
		return raw, err
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		raw, _ := res.Val.(json.RawMessage)
		if len(raw) == 0 {
			return nil
		}
		return json.Unmarshal(raw, dest)
	}
}

func (s *Service) dayKey() string {
	return s.now().Format(time.DateOnly)
}

func (s *Service) today() Window {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{From: start, To: start.AddDate(0, 0, 1)}
}

func (s *Service) month() Window {
	now := s.now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return Window{From: start, To: start.AddDate(0, 1, 0)}
}

func (s *Service) year() Window {
	now := s.now()
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	return Window{From: start, To: start.AddDate(1, 0, 0)}
}

func parsePeriod(p Period, allowed ...Period) (Period, error) {
	p = Period(strings.ToLower(strings.TrimSpace(string(p))))
	if p == "" {
		return PeriodDaily, nil
	}
	for _, a := range allowed {
		if p == a {
			return p, nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return "", shared.NewValidationError("Invalid period %q, expected one of: %s", p, strings.Join(names, ", "))
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
