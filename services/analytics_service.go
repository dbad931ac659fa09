package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/seowliyuan/nutriadmin/models"

	"gorm.io/gorm"
)

// AnalyticsService computes the dashboard metric bundle. Every metric is
// independent and carries its own sample-data fallback, so a missing or
// empty table never takes the whole endpoint down.
type AnalyticsService struct{ db *gorm.DB }

func NewAnalyticsService(db *gorm.DB) *AnalyticsService { return &AnalyticsService{db: db} }

type GrowthPoint struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

type FoodCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type Analytics struct {
	UserGrowth        []GrowthPoint `json:"userGrowth"`
	MostEatenFoods    []FoodCount   `json:"mostEatenFoods"`
	AvgCaloriesPerDay int           `json:"avgCaloriesPerDay"`
	AIAccuracy        float64       `json:"aiAccuracy"`
	PointsOverview    struct {
		Total int64 `json:"total"`
	} `json:"pointsOverview"`
	HydrationStats struct {
		Total int64 `json:"total"`
		Avg   int64 `json:"avg"`
	} `json:"hydrationStats"`
	CheckInStats struct {
		Avg float64 `json:"avg"`
	} `json:"checkInStats"`
}

const analyticsWindowDays = 30

// Overview assembles the bundle. mock forces every metric onto its sample
// fallback, which the dashboard uses for demos.
func (s *AnalyticsService) Overview(ctx context.Context, mock bool) *Analytics {
	out := &Analytics{}

	out.UserGrowth = s.userGrowth(ctx, mock)
	out.MostEatenFoods = s.mostEatenFoods(ctx, mock)
	out.AvgCaloriesPerDay = s.avgCaloriesPerDay(ctx, mock)
	out.AIAccuracy = s.aiAccuracy(ctx, mock)
	out.PointsOverview.Total = s.totalPoints(ctx, mock)
	out.HydrationStats.Total, out.HydrationStats.Avg = s.hydration(ctx, mock)
	out.CheckInStats.Avg = s.avgCheckInStreak(ctx, mock)
	return out
}

// userGrowth is a cumulative count per day for the last 30 days. One count
// query per day; acceptable for a low-frequency admin dashboard.
func (s *AnalyticsService) userGrowth(ctx context.Context, mock bool) []GrowthPoint {
	points := make([]GrowthPoint, 0, analyticsWindowDays)
	hasData := false
	if !mock {
		for i := analyticsWindowDays - 1; i >= 0; i-- {
			day := time.Now().AddDate(0, 0, -i)
			end := time.Date(day.Year(), day.Month(), day.Day(), 23, 59, 59, 0, day.Location())
			var n int64
			if err := s.db.WithContext(ctx).Model(&models.Profile{}).
				Where("created_at <= ?", end).Count(&n).Error; err != nil {
				n = 0
			}
			if n > 0 {
				hasData = true
			}
			points = append(points, GrowthPoint{Date: day.Format("2006-01-02"), Total: n})
		}
	}
	if mock || !hasData {
		points = points[:0]
		base := int64(5)
		for i := analyticsWindowDays - 1; i >= 0; i-- {
			day := time.Now().AddDate(0, 0, -i)
			base += rand.Int63n(3)
			points = append(points, GrowthPoint{Date: day.Format("2006-01-02"), Total: base})
		}
	}
	return points
}

// sampleFoods mirrors the seed data shown before any logs exist.
var sampleFoods = []FoodCount{
	{"Nasi Lemak", 145}, {"Chicken Rice", 132}, {"Roti Canai", 98},
	{"Char Kway Teow", 87}, {"Laksa", 76}, {"Nasi Goreng", 65},
	{"Satay", 54}, {"Mee Goreng", 43}, {"Rendang", 38}, {"Teh Tarik", 32},
}

func (s *AnalyticsService) mostEatenFoods(ctx context.Context, mock bool) []FoodCount {
	if !mock {
		var rows []models.FoodLog
		if err := s.db.WithContext(ctx).
			Select("item_name").Limit(1000).
			Find(&rows).Error; err == nil && len(rows) > 0 {
			counts := map[string]int{}
			for _, r := range rows {
				if r.ItemName != "" {
					counts[r.ItemName]++
				}
			}
			if len(counts) > 0 {
				top := make([]FoodCount, 0, len(counts))
				for name, n := range counts {
					top = append(top, FoodCount{Name: name, Count: n})
				}
				sort.SliceStable(top, func(i, j int) bool { return top[i].Count > top[j].Count })
				if len(top) > 10 {
					top = top[:10]
				}
				return top
			}
		}
	}
	out := make([]FoodCount, len(sampleFoods))
	copy(out, sampleFoods)
	return out
}

func (s *AnalyticsService) avgCaloriesPerDay(ctx context.Context, mock bool) int {
	if !mock {
		since := time.Now().AddDate(0, 0, -analyticsWindowDays)
		var rows []models.FoodLog
		if err := s.db.WithContext(ctx).
			Where("COALESCE(eaten_at, created_at) >= ?", since).
			Find(&rows).Error; err == nil && len(rows) > 0 {
			total := 0.0
			days := map[string]struct{}{}
			for _, r := range rows {
				if r.Kcal != nil {
					total += *r.Kcal
				}
				at := r.CreatedAt
				if r.EatenAt != nil {
					at = *r.EatenAt
				}
				days[at.Format("2006-01-02")] = struct{}{}
			}
			if len(days) > 0 {
				return int(math.Round(total / float64(len(days))))
			}
		}
	}
	return 1850
}

func (s *AnalyticsService) aiAccuracy(ctx context.Context, mock bool) float64 {
	if !mock {
		var rows []models.Recognition
		if err := s.db.WithContext(ctx).
			Select("confidence").Where("confidence IS NOT NULL").Limit(1000).
			Find(&rows).Error; err == nil && len(rows) > 0 {
			sum := 0.0
			for _, r := range rows {
				if r.Confidence != nil {
					sum += *r.Confidence
				}
			}
			return round2(sum / float64(len(rows)) * 100)
		}
	}
	return 87.5
}

func (s *AnalyticsService) totalPoints(ctx context.Context, mock bool) int64 {
	if !mock {
		var total *int64
		if err := s.db.WithContext(ctx).Model(&models.Profile{}).
			Select("SUM(points)").Scan(&total).Error; err == nil && total != nil {
			return *total
		}
	}
	return 12450
}

func (s *AnalyticsService) hydration(ctx context.Context, mock bool) (total, avg int64) {
	if !mock {
		since := time.Now().AddDate(0, 0, -analyticsWindowDays)
		var rows []models.WaterLog
		if err := s.db.WithContext(ctx).
			Where("created_at >= ?", since).
			Find(&rows).Error; err == nil && len(rows) > 0 {
			sum := 0.0
			users := map[string]struct{}{}
			for _, r := range rows {
				sum += r.AmountML
				if r.UserID != "" {
					users[r.UserID] = struct{}{}
				}
			}
			n := len(users)
			if n == 0 {
				n = 1
			}
			return int64(math.Round(sum)), int64(math.Round(sum / float64(n)))
		}
	}
	return 48000, 2400
}

func (s *AnalyticsService) avgCheckInStreak(ctx context.Context, mock bool) float64 {
	if !mock {
		var rows []models.Profile
		if err := s.db.WithContext(ctx).
			Select("check_in_streak").
			Find(&rows).Error; err == nil && len(rows) > 0 {
			sum := 0
			for _, p := range rows {
				sum += p.CheckInStreak
			}
			return math.Round(float64(sum)/float64(len(rows))*10) / 10
		}
	}
	return 0.8
}

// ExportCSV writes the sectioned analytics report the dashboard downloads.
func (s *AnalyticsService) ExportCSV(ctx context.Context, w io.Writer) error {
	a := s.Overview(ctx, false)

	var totalUsers int64
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).Count(&totalUsers).Error; err != nil {
		totalUsers = 0
	}

	cw := csv.NewWriter(w)
	rows := [][]string{
		{"ANALYTICS SUMMARY"},
		{},
		{"Total Users", fmt.Sprintf("%d", totalUsers)},
		{"Total Points", fmt.Sprintf("%d", a.PointsOverview.Total)},
		{"Avg Check-In Streak", fmt.Sprintf("%.1f", a.CheckInStats.Avg)},
		{"Avg Calories Per Day", fmt.Sprintf("%d kcal", a.AvgCaloriesPerDay)},
		{"Total Water Intake (30d)", fmt.Sprintf("%.1fL", float64(a.HydrationStats.Total)/1000)},
		{"Avg Water Per User", fmt.Sprintf("%dml", a.HydrationStats.Avg)},
		{},
		{"USER GROWTH (LAST 30 DAYS)"},
		{"Date", "Total Users"},
	}
	for _, p := range a.UserGrowth {
		rows = append(rows, []string{p.Date, fmt.Sprintf("%d", p.Total)})
	}
	rows = append(rows, []string{}, []string{"MOST EATEN FOODS"}, []string{"Food Name", "Count"})
	for _, f := range a.MostEatenFoods {
		rows = append(rows, []string{f.Name, fmt.Sprintf("%d", f.Count)})
	}

	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
