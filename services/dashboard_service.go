package services

import (
	"context"
	"math"
	"os"
	"time"

	"github.com/seowliyuan/nutriadmin/models"

	"gorm.io/gorm"
)

// DashboardService backs the landing-page widgets: counters, the last-7-days
// chart, goal distribution and health checks. All reads are best-effort.
type DashboardService struct {
	db      *gorm.DB
	catalog *CatalogService
}

func NewDashboardService(db *gorm.DB, catalog *CatalogService) *DashboardService {
	return &DashboardService{db: db, catalog: catalog}
}

type Summary struct {
	TotalUsers        int64 `json:"total_users"`
	TotalFoods        int64 `json:"total_foods"`
	DailyCheckins     int64 `json:"daily_checkins"`
	RecognitionsToday int64 `json:"recognitions_today"`
}

func (s *DashboardService) Summary(ctx context.Context) *Summary {
	out := &Summary{}
	if err := s.db.WithContext(ctx).Model(&models.Profile{}).
		Count(&out.TotalUsers).Error; err != nil {
		out.TotalUsers = 0
	}
	out.TotalFoods = s.catalog.Count(ctx)

	start := dayStart(time.Now())
	if err := s.db.WithContext(ctx).Model(&models.FoodLog{}).
		Where("created_at >= ?", start).
		Distinct("user_id").Count(&out.DailyCheckins).Error; err != nil {
		out.DailyCheckins = 0
	}
	if err := s.db.WithContext(ctx).Model(&models.Recognition{}).
		Where("created_at >= ?", start).
		Count(&out.RecognitionsToday).Error; err != nil {
		out.RecognitionsToday = 0
	}
	return out
}

type DayMetric struct {
	Date  string `json:"date"`
	Users int64  `json:"users"`
	Foods int64  `json:"foods"`
}

// MetricsLast7 counts signups and catalog additions per day for the last
// seven days, today included.
func (s *DashboardService) MetricsLast7(ctx context.Context) []DayMetric {
	out := make([]DayMetric, 0, 7)
	for i := 6; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i)
		from := dayStart(day)
		to := dayEnd(day)

		var users int64
		if err := s.db.WithContext(ctx).Model(&models.Profile{}).
			Where("created_at BETWEEN ? AND ?", from, to).
			Count(&users).Error; err != nil {
			users = 0
		}
		out = append(out, DayMetric{
			Date:  day.Format("2006-01-02"),
			Users: users,
			Foods: s.catalog.CountCreatedBetween(ctx, from, to),
		})
	}
	return out
}

type Stats struct {
	Total       int64          `json:"total"`
	Onboarded   int64          `json:"onboarded"`
	Goals       map[string]int `json:"goals"`
	SignupTrend []DayMetric    `json:"signup_trend"`
	AvgBMI      *float64       `json:"avgBmi"`
}

func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	var profiles []models.Profile
	if err := s.db.WithContext(ctx).
		Select("user_id", "created_at", "completed_onboarding", "goal", "bmi").
		Find(&profiles).Error; err != nil {
		return nil, err
	}

	out := &Stats{Total: int64(len(profiles)), Goals: map[string]int{}}
	var bmiSum float64
	var bmiCount int
	for _, p := range profiles {
		if p.CompletedOnboarding {
			out.Onboarded++
		}
		goal := p.Goal
		if goal == "" {
			goal = "unknown"
		}
		out.Goals[goal]++
		if p.BMI != nil {
			bmiSum += *p.BMI
			bmiCount++
		}
	}
	if bmiCount > 0 {
		avg := math.Round(bmiSum/float64(bmiCount)*10) / 10
		out.AvgBMI = &avg
	}

	for i := 6; i >= 0; i-- {
		day := time.Now().AddDate(0, 0, -i)
		key := day.Format("2006-01-02")
		var n int64
		for _, p := range profiles {
			if p.CreatedAt.Format("2006-01-02") == key {
				n++
			}
		}
		out.SignupTrend = append(out.SignupTrend, DayMetric{Date: key, Users: n})
	}
	return out, nil
}

type HealthCheck struct {
	Status      string `json:"status"`
	LastChecked string `json:"lastChecked"`
}

type SystemHealth struct {
	Server HealthCheck `json:"server"`
	AI     HealthCheck `json:"ai"`
	Model  HealthCheck `json:"model"`
}

// Health reports coarse OK/down states for the pieces the dashboard shows.
// The server check is trivially OK when this code runs; the AI check honors
// an operator override.
func (s *DashboardService) Health() *SystemHealth {
	now := time.Now().UTC().Format(time.RFC3339)
	ai := "ok"
	if os.Getenv("AI_PROVIDER_OK") == "false" {
		ai = "down"
	}
	return &SystemHealth{
		Server: HealthCheck{Status: "ok", LastChecked: now},
		AI:     HealthCheck{Status: ai, LastChecked: now},
		Model:  HealthCheck{Status: "ok", LastChecked: now},
	}
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func dayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
