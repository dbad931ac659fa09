package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/seowliyuan/nutriadmin/models"
	"github.com/seowliyuan/nutriadmin/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrNoUpdatableFields = errors.New("no updatable fields provided")
)

// validSortColumns is the allow-list for the sort clause; anything else maps
// to created_at.
var validSortColumns = map[string]bool{
	"created_at": true,
	"full_name":  true,
	"bmi":        true,
}

// DirectoryService manages profile rows. The identity provider owns
// email/password; this service only ever touches the application-level
// profile fields.
type DirectoryService struct {
	db      *gorm.DB
	catalog *CatalogService
}

func NewDirectoryService(db *gorm.DB, catalog *CatalogService) *DirectoryService {
	return &DirectoryService{db: db, catalog: catalog}
}

type ProfileQuery struct {
	Page    int
	PerPage int
	Text    string
	Goal    string
	SortBy  string
	Desc    bool
}

func (s *DirectoryService) scope(ctx context.Context, text, goal string) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.Profile{})
	if text = strings.TrimSpace(text); text != "" {
		needle := "%" + strings.ToLower(text) + "%"
		if _, err := uuid.Parse(text); err == nil {
			tx = tx.Where("lower(full_name) LIKE ? OR user_id = ?", needle, text)
		} else {
			tx = tx.Where("lower(full_name) LIKE ?", needle)
		}
	}
	if goal = strings.TrimSpace(goal); goal != "" {
		tx = tx.Where("goal = ?", goal)
	}
	return tx
}

func (s *DirectoryService) List(ctx context.Context, q ProfileQuery) ([]models.Profile, Pagination, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 1
	}
	sortBy := q.SortBy
	if !validSortColumns[sortBy] {
		sortBy = "created_at"
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}

	tx := s.scope(ctx, q.Text, q.Goal)
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, Pagination{}, err
	}
	var rows []models.Profile
	if err := tx.Order(sortBy + " " + dir).
		Offset((q.Page - 1) * q.PerPage).Limit(q.PerPage).
		Find(&rows).Error; err != nil {
		return nil, Pagination{}, err
	}
	return rows, NewPagination(total, q.Page, q.PerPage), nil
}

func (s *DirectoryService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

type CreateProfileInput struct {
	UserID              string   `json:"user_id" binding:"required"`
	Email               string   `json:"email" binding:"required"`
	FullName            string   `json:"full_name" binding:"required"`
	Goal                string   `json:"goal"`
	HeightCM            *float64 `json:"height_cm"`
	WeightKG            *float64 `json:"weight_kg"`
	BMI                 *float64 `json:"bmi"`
	IsAdmin             bool     `json:"is_admin"`
	Disabled            bool     `json:"disabled"`
	CompletedOnboarding bool     `json:"completed_onboarding"`
}

func (s *DirectoryService) Create(ctx context.Context, in CreateProfileInput) (*models.Profile, error) {
	p := models.Profile{
		UserID:              in.UserID,
		Email:               in.Email,
		FullName:            in.FullName,
		Goal:                in.Goal,
		HeightCM:            in.HeightCM,
		WeightKG:            in.WeightKG,
		BMI:                 in.BMI,
		IsAdmin:             in.IsAdmin,
		Disabled:            in.Disabled,
		CompletedOnboarding: in.CompletedOnboarding,
	}
	if p.BMI == nil && p.HeightCM != nil && p.WeightKG != nil {
		if bmi, ok := utils.CalculateBMI(*p.HeightCM, *p.WeightKG); ok {
			p.BMI = &bmi
		}
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfileInput is the explicit allow-list of admin-editable fields.
// Identity and email are immutable through this path: they belong to the
// external identity provider. Unknown JSON fields are dropped at decode time.
type UpdateProfileInput struct {
	FullName *string  `json:"full_name"`
	Goal     *string  `json:"goal"`
	HeightCM *float64 `json:"height_cm"`
	WeightKG *float64 `json:"weight_kg"`
	BMI      *float64 `json:"bmi"`
}

func (in UpdateProfileInput) fields() map[string]any {
	updates := map[string]any{}
	putString(updates, "full_name", in.FullName)
	putString(updates, "goal", in.Goal)
	putFloat(updates, "height_cm", in.HeightCM)
	putFloat(updates, "weight_kg", in.WeightKG)
	putFloat(updates, "bmi", in.BMI)
	return updates
}

// UpdatedFields reports which allow-listed fields the payload carries, for
// the activity log.
func (in UpdateProfileInput) UpdatedFields() []string {
	keys := make([]string, 0, 5)
	for k := range in.fields() {
		keys = append(keys, k)
	}
	return keys
}

func (s *DirectoryService) Update(ctx context.Context, userID string, in UpdateProfileInput) (*models.Profile, error) {
	updates := in.fields()
	if len(updates) == 0 {
		return nil, ErrNoUpdatableFields
	}
	res := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrProfileNotFound
	}
	return s.Get(ctx, userID)
}

func (s *DirectoryService) SetDisabled(ctx context.Context, userID string, disabled bool) (*models.Profile, error) {
	res := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).Update("disabled", disabled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrProfileNotFound
	}
	return s.Get(ctx, userID)
}

// RequestPasswordReset flags the profile; the identity provider performs the
// actual credential reset out of band.
func (s *DirectoryService) RequestPasswordReset(ctx context.Context, userID string) (*models.Profile, error) {
	now := time.Now().UTC()
	res := s.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"force_password_reset": true, "reset_requested_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrProfileNotFound
	}
	return s.Get(ctx, userID)
}

func (s *DirectoryService) Delete(ctx context.Context, userID string) error {
	res := s.db.WithContext(ctx).Unscoped().
		Where("user_id = ?", userID).Delete(&models.Profile{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// UserActivity summarizes one user's engagement. Counts are best-effort:
// a missing table reads as zero.
type UserActivity struct {
	Streak           int   `json:"streak"`
	Points           int   `json:"points"`
	TotalScans       int64 `json:"total_scans"`
	TotalFoodsLogged int64 `json:"total_foods_logged"`
}

func (s *DirectoryService) Activity(ctx context.Context, userID string) *UserActivity {
	out := &UserActivity{}
	if p, err := s.Get(ctx, userID); err == nil {
		out.Streak = p.CheckInStreak
		out.Points = p.Points
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Recognition{}).
		Where("user_id = ?", userID).Count(&n).Error; err == nil {
		out.TotalScans = n
	}
	if err := s.db.WithContext(ctx).Model(&models.FoodLog{}).
		Where("user_id = ?", userID).Count(&n).Error; err == nil {
		out.TotalFoodsLogged = n
	}
	return out
}

// maxReasonableKcal flags per-entry calorie values that are almost certainly
// data errors (wrong unit, typo); such entries are corrected from the catalog
// when a match exists.
const maxReasonableKcal = 2000

type EnrichedFoodLog struct {
	ID        uint      `json:"id"`
	UserID    string    `json:"user_id"`
	FoodName  string    `json:"food_name"`
	Calories  *float64  `json:"calories"`
	LoggedAt  time.Time `json:"logged_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RecentLogs returns the user's latest food logs, each enriched from the
// food catalog (name resolution plus calorie correction), and their latest
// AI recognitions. Both lists degrade to empty.
func (s *DirectoryService) RecentLogs(ctx context.Context, userID string) ([]EnrichedFoodLog, []models.Recognition) {
	logs := []EnrichedFoodLog{}
	var rows []models.FoodLog
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Limit(10).
		Find(&rows).Error; err == nil {
		for _, r := range rows {
			logs = append(logs, s.enrich(ctx, r))
		}
	}

	recognitions := []models.Recognition{}
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Limit(10).
		Find(&recognitions).Error; err != nil {
		recognitions = []models.Recognition{}
	}
	return logs, recognitions
}

func (s *DirectoryService) enrich(ctx context.Context, r models.FoodLog) EnrichedFoodLog {
	name := r.ItemName
	if name == "" {
		name = "Unknown Food"
	}
	calories := r.Kcal

	if r.ItemName != "" {
		if rec, ok := s.catalog.LookupByName(ctx, r.ItemName); ok {
			if rec.Name != "" {
				name = rec.Name
			}
			if rec.Kcal != nil && (calories == nil || *calories > maxReasonableKcal) {
				corrected := *rec.Kcal
				calories = &corrected
			}
		}
	}

	loggedAt := r.CreatedAt
	if r.EatenAt != nil {
		loggedAt = *r.EatenAt
	}
	return EnrichedFoodLog{
		ID:        r.ID,
		UserID:    r.UserID,
		FoodName:  name,
		Calories:  calories,
		LoggedAt:  loggedAt,
		CreatedAt: r.CreatedAt,
	}
}

// exportLimit caps CSV exports.
const exportLimit = 10000

var exportHeader = []string{
	"User ID", "Full Name", "Email", "Goal",
	"Height (cm)", "Weight (kg)", "BMI", "Created At", "Status",
}

// ExportCSV streams the filtered directory as CSV. Zero matches still emit
// the header row.
func (s *DirectoryService) ExportCSV(ctx context.Context, w io.Writer, text, goal string) error {
	var rows []models.Profile
	if err := s.scope(ctx, text, goal).
		Order("created_at DESC").Limit(exportLimit).
		Find(&rows).Error; err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, p := range rows {
		status := "Active"
		if p.Disabled {
			status = "Disabled"
		}
		rec := []string{
			p.UserID,
			p.FullName,
			p.Email,
			p.Goal,
			formatFloat(p.HeightCM),
			formatFloat(p.WeightKG),
			formatFloat(p.BMI),
			p.CreatedAt.UTC().Format(time.RFC3339),
			status,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", *v), "0"), ".")
}
