package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/seowliyuan/nutriadmin/models"

	"gorm.io/gorm"
)

// FoodRecord is the one canonical shape foods are reported in, regardless of
// which table they came from.
type FoodRecord struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	AltNames  []string  `json:"alt_names"`
	Kcal      *float64  `json:"kcal_per_100g"`
	Protein   *float64  `json:"protein_g_per_100g"`
	Carbs     *float64  `json:"carbs_g_per_100g"`
	Fat       *float64  `json:"fat_g_per_100g"`
	Sugar     *float64  `json:"sugar_g_per_100g"`
	Sodium    *float64  `json:"sodium_mg_per_100g"`
	CreatedAt time.Time `json:"created_at"`
}

// FoodQuery carries list parameters after sanitization.
type FoodQuery struct {
	Page     int
	PerPage  int
	Text     string
	Category string
	SortBy   string // name | calories | category
	Desc     bool
}

func (q FoodQuery) sanitized() FoodQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 1
	}
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)
	switch q.SortBy {
	case "name", "calories", "category":
	default:
		q.SortBy = "name"
	}
	return q
}

// FoodPage is a raw page from one source: normalized rows plus the
// source-reported match count.
type FoodPage struct {
	Foods []FoodRecord
	Total int64
}

// FoodInput is a create/update payload. Nil fields are left untouched on
// update; AltNames replaces the whole set when non-nil.
type FoodInput struct {
	Name     *string   `json:"name"`
	Category *string   `json:"category"`
	AltNames []string  `json:"alt_names"`
	Kcal     *float64  `json:"kcal_per_100g"`
	Protein  *float64  `json:"protein_g_per_100g"`
	Carbs    *float64  `json:"carbs_g_per_100g"`
	Fat      *float64  `json:"fat_g_per_100g"`
	Sugar    *float64  `json:"sugar_g_per_100g"`
	Sodium   *float64  `json:"sodium_mg_per_100g"`
}

// Empty reports a payload with no settable field at all.
func (in FoodInput) Empty() bool {
	return in.Name == nil && in.Category == nil && in.AltNames == nil &&
		in.Kcal == nil && in.Protein == nil && in.Carbs == nil &&
		in.Fat == nil && in.Sugar == nil && in.Sodium == nil
}

// FoodSource is one named catalog table. Sources differ in schema; each one
// reshapes its rows into FoodRecord.
type FoodSource interface {
	Name() string
	Available() bool
	List(ctx context.Context, q FoodQuery) (*FoodPage, error)
	Get(ctx context.Context, id uint) (*FoodRecord, error)
	LookupByName(ctx context.Context, name string) (*FoodRecord, error)
	Insert(ctx context.Context, in FoodInput) (*FoodRecord, error)
	Update(ctx context.Context, id uint, in FoodInput) (*FoodRecord, error)
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
	CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error)
}

var ErrFoodNotFound = errors.New("food not found")

// ---------- malaysia_food_database ----------

type malaysiaSource struct{ db *gorm.DB }

func newMalaysiaSource(db *gorm.DB) *malaysiaSource { return &malaysiaSource{db: db} }

func (s *malaysiaSource) Name() string { return "malaysia_food_database" }

func (s *malaysiaSource) Available() bool {
	return s.db.Migrator().HasTable(&models.MalaysiaFood{})
}

func (s *malaysiaSource) scope(ctx context.Context, q FoodQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.MalaysiaFood{})
	if q.Text != "" {
		needle := "%" + strings.ToLower(q.Text) + "%"
		tx = tx.Where("lower(name) LIKE ? OR lower(category) LIKE ? OR lower(alt_names) LIKE ?",
			needle, needle, needle)
	}
	return tx
}

func (s *malaysiaSource) List(ctx context.Context, q FoodQuery) (*FoodPage, error) {
	tx := s.scope(ctx, q)
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}
	var rows []models.MalaysiaFood
	if err := tx.Order("name ASC").
		Offset((q.Page - 1) * q.PerPage).Limit(q.PerPage).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	foods := make([]FoodRecord, 0, len(rows))
	for _, r := range rows {
		foods = append(foods, malaysiaRecord(r))
	}
	return &FoodPage{Foods: foods, Total: total}, nil
}

func (s *malaysiaSource) Get(ctx context.Context, id uint) (*FoodRecord, error) {
	var row models.MalaysiaFood
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}
	rec := malaysiaRecord(row)
	return &rec, nil
}

func (s *malaysiaSource) LookupByName(ctx context.Context, name string) (*FoodRecord, error) {
	var row models.MalaysiaFood
	needle := "%" + strings.ToLower(name) + "%"
	if err := s.db.WithContext(ctx).
		Where("lower(name) LIKE ?", needle).
		Order("name ASC").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}
	rec := malaysiaRecord(row)
	return &rec, nil
}

func (s *malaysiaSource) Insert(ctx context.Context, in FoodInput) (*FoodRecord, error) {
	row := models.MalaysiaFood{
		Name:     derefString(in.Name),
		Category: categoryOrDefault(in.Category),
		AltNames: joinAltNames(in.AltNames),
		Kcal:     in.Kcal,
		Protein:  in.Protein,
		Carbs:    in.Carbs,
		Fat:      in.Fat,
		Sugar:    in.Sugar,
		Sodium:   in.Sodium,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	rec := malaysiaRecord(row)
	return &rec, nil
}

func (s *malaysiaSource) Update(ctx context.Context, id uint, in FoodInput) (*FoodRecord, error) {
	updates := map[string]any{}
	putString(updates, "name", in.Name)
	putString(updates, "category", in.Category)
	if in.AltNames != nil {
		updates["alt_names"] = joinAltNames(in.AltNames)
	}
	putFloat(updates, "kcal_per_100g", in.Kcal)
	putFloat(updates, "protein_g_per_100g", in.Protein)
	putFloat(updates, "carbs_g_per_100g", in.Carbs)
	putFloat(updates, "fat_g_per_100g", in.Fat)
	putFloat(updates, "sugar_g_per_100g", in.Sugar)
	putFloat(updates, "sodium_mg_per_100g", in.Sodium)

	res := s.db.WithContext(ctx).Model(&models.MalaysiaFood{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrFoodNotFound
	}
	return s.Get(ctx, id)
}

func (s *malaysiaSource) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Unscoped().Delete(&models.MalaysiaFood{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFoodNotFound
	}
	return nil
}

func (s *malaysiaSource) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.MalaysiaFood{}).Count(&n).Error
	return n, err
}

func (s *malaysiaSource) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.MalaysiaFood{}).
		Where("created_at BETWEEN ? AND ?", from, to).Count(&n).Error
	return n, err
}

func malaysiaRecord(r models.MalaysiaFood) FoodRecord {
	return FoodRecord{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		AltNames:  splitAltNames(r.AltNames),
		Kcal:      r.Kcal,
		Protein:   r.Protein,
		Carbs:     r.Carbs,
		Fat:       r.Fat,
		Sugar:     r.Sugar,
		Sodium:    r.Sodium,
		CreatedAt: r.CreatedAt,
	}
}

// ---------- foods (canonical) ----------

type canonicalSource struct{ db *gorm.DB }

func newCanonicalSource(db *gorm.DB) *canonicalSource { return &canonicalSource{db: db} }

func (s *canonicalSource) Name() string { return "foods" }

func (s *canonicalSource) Available() bool {
	return s.db.Migrator().HasTable(&models.Food{})
}

func (s *canonicalSource) scope(ctx context.Context, q FoodQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.Food{})
	if q.Text != "" {
		needle := "%" + strings.ToLower(q.Text) + "%"
		tx = tx.Where("lower(name) LIKE ? OR lower(category) LIKE ? OR lower(alt_names) LIKE ?",
			needle, needle, needle)
	}
	return tx
}

func (s *canonicalSource) List(ctx context.Context, q FoodQuery) (*FoodPage, error) {
	tx := s.scope(ctx, q)
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}
	var rows []models.Food
	if err := tx.Order("name ASC").
		Offset((q.Page - 1) * q.PerPage).Limit(q.PerPage).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	foods := make([]FoodRecord, 0, len(rows))
	for _, r := range rows {
		foods = append(foods, canonicalRecord(r))
	}
	return &FoodPage{Foods: foods, Total: total}, nil
}

func (s *canonicalSource) Get(ctx context.Context, id uint) (*FoodRecord, error) {
	var row models.Food
	if err := s.db.WithContext(ctx).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}
	rec := canonicalRecord(row)
	return &rec, nil
}

func (s *canonicalSource) LookupByName(ctx context.Context, name string) (*FoodRecord, error) {
	var row models.Food
	needle := "%" + strings.ToLower(name) + "%"
	if err := s.db.WithContext(ctx).
		Where("lower(name) LIKE ?", needle).
		Order("name ASC").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, err
	}
	rec := canonicalRecord(row)
	return &rec, nil
}

func (s *canonicalSource) Insert(ctx context.Context, in FoodInput) (*FoodRecord, error) {
	row := models.Food{
		Name:     derefString(in.Name),
		Category: categoryOrDefault(in.Category),
		AltNames: joinAltNames(in.AltNames),
		Kcal:     in.Kcal,
		Protein:  in.Protein,
		Carbs:    in.Carbs,
		Fat:      in.Fat,
		Sugar:    in.Sugar,
		Sodium:   in.Sodium,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, err
	}
	rec := canonicalRecord(row)
	return &rec, nil
}

func (s *canonicalSource) Update(ctx context.Context, id uint, in FoodInput) (*FoodRecord, error) {
	updates := map[string]any{}
	putString(updates, "name", in.Name)
	putString(updates, "category", in.Category)
	if in.AltNames != nil {
		updates["alt_names"] = joinAltNames(in.AltNames)
	}
	putFloat(updates, "kcal", in.Kcal)
	putFloat(updates, "protein_g", in.Protein)
	putFloat(updates, "carbs_g", in.Carbs)
	putFloat(updates, "fat_g", in.Fat)
	putFloat(updates, "sugar_g", in.Sugar)
	putFloat(updates, "sodium_mg", in.Sodium)

	res := s.db.WithContext(ctx).Model(&models.Food{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrFoodNotFound
	}
	return s.Get(ctx, id)
}

func (s *canonicalSource) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Unscoped().Delete(&models.Food{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrFoodNotFound
	}
	return nil
}

func (s *canonicalSource) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Food{}).Count(&n).Error
	return n, err
}

func (s *canonicalSource) CountCreatedBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Food{}).
		Where("created_at BETWEEN ? AND ?", from, to).Count(&n).Error
	return n, err
}

func canonicalRecord(r models.Food) FoodRecord {
	return FoodRecord{
		ID:        r.ID,
		Name:      r.Name,
		Category:  r.Category,
		AltNames:  splitAltNames(r.AltNames),
		Kcal:      r.Kcal,
		Protein:   r.Protein,
		Carbs:     r.Carbs,
		Fat:       r.Fat,
		Sugar:     r.Sugar,
		Sodium:    r.Sodium,
		CreatedAt: r.CreatedAt,
	}
}

// ---------- shared helpers ----------

func splitAltNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinAltNames(names []string) string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, ",")
}

func categoryOrDefault(c *string) string {
	if c == nil || strings.TrimSpace(*c) == "" {
		return "uncategorized"
	}
	return strings.TrimSpace(*c)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func putString(m map[string]any, col string, v *string) {
	if v != nil {
		m[col] = strings.TrimSpace(*v)
	}
}

func putFloat(m map[string]any, col string, v *float64) {
	if v != nil {
		m[col] = *v
	}
}
