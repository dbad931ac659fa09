package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/seowliyuan/nutriadmin/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrAvatarNotFound  = errors.New("avatar not found")
	ErrShopUnavailable = errors.New("avatars table not found")
)

// AvatarService manages the avatar shop. The writable `avatars` table is
// optional; reads fall back to the unlock records the mobile app keeps, while
// writes require the real table.
type AvatarService struct{ db *gorm.DB }

func NewAvatarService(db *gorm.DB) *AvatarService { return &AvatarService{db: db} }

func (s *AvatarService) available() bool {
	return s.db.Migrator().HasTable(&models.Avatar{})
}

// AvatarRecord is the one shape avatars are reported in. The ID is a string
// because fallback records are keyed by name, not a numeric id.
type AvatarRecord struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	PricePoints *int64         `json:"price_points"`
	ImageURL    string         `json:"image_url"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	IsActive    bool           `json:"is_active"`
	CreatedAt   *time.Time     `json:"created_at,omitempty"`
}

type AvatarPage struct {
	Avatars    []AvatarRecord `json:"avatars"`
	Source     string         `json:"source"`
	Pagination Pagination     `json:"pagination"`
}

// List pages through the shop newest-first. A missing avatars table degrades
// to distinct unlock names as lightweight records; no table at all degrades
// to an empty page with source "none".
func (s *AvatarService) List(ctx context.Context, page, perPage int) *AvatarPage {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	empty := &AvatarPage{
		Avatars:    []AvatarRecord{},
		Source:     "none",
		Pagination: NewPagination(0, page, perPage),
	}

	if s.available() {
		tx := s.db.WithContext(ctx).Model(&models.Avatar{})
		var total int64
		if err := tx.Count(&total).Error; err != nil {
			return empty
		}
		var rows []models.Avatar
		if err := tx.Order("created_at DESC").
			Offset((page - 1) * perPage).Limit(perPage).
			Find(&rows).Error; err != nil {
			return empty
		}
		out := make([]AvatarRecord, 0, len(rows))
		for _, r := range rows {
			out = append(out, avatarRecord(r))
		}
		return &AvatarPage{
			Avatars:    out,
			Source:     "avatars",
			Pagination: NewPagination(total, page, perPage),
		}
	}

	names := s.unlockNames(ctx)
	if names == nil {
		return empty
	}
	total := int64(len(names))
	start := (page - 1) * perPage
	if start > len(names) {
		start = len(names)
	}
	end := start + perPage
	if end > len(names) {
		end = len(names)
	}
	out := make([]AvatarRecord, 0, end-start)
	for _, n := range names[start:end] {
		out = append(out, AvatarRecord{ID: n, Name: n, IsActive: true})
	}
	return &AvatarPage{
		Avatars:    out,
		Source:     "avatar_unlocks",
		Pagination: NewPagination(total, page, perPage),
	}
}

// unlockNames reads distinct avatar names from the unlock log, in first-seen
// order. Nil when the table is missing.
func (s *AvatarService) unlockNames(ctx context.Context) []string {
	var rows []models.AvatarUnlock
	if err := s.db.WithContext(ctx).
		Select("avatar_name").Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil
	}
	seen := map[string]bool{}
	names := []string{}
	for _, r := range rows {
		if r.AvatarName == "" || seen[r.AvatarName] {
			continue
		}
		seen[r.AvatarName] = true
		names = append(names, r.AvatarName)
	}
	return names
}

type CreateAvatarInput struct {
	Name        string         `json:"name" binding:"required"`
	PricePoints *int64         `json:"price_points"`
	ImageURL    string         `json:"image_url"`
	Metadata    datatypes.JSON `json:"metadata"`
	IsActive    *bool          `json:"is_active"`
}

func (s *AvatarService) Create(ctx context.Context, in CreateAvatarInput) (*models.Avatar, error) {
	if !s.available() {
		return nil, ErrShopUnavailable
	}
	avatar := models.Avatar{
		Name:        in.Name,
		PricePoints: in.PricePoints,
		ImageURL:    in.ImageURL,
		Metadata:    in.Metadata,
		IsActive:    true,
	}
	if in.IsActive != nil {
		avatar.IsActive = *in.IsActive
	}
	if err := s.db.WithContext(ctx).Create(&avatar).Error; err != nil {
		return nil, err
	}
	return &avatar, nil
}

// UpdateAvatarInput is the allow-list of editable shop fields.
type UpdateAvatarInput struct {
	Name        *string        `json:"name"`
	PricePoints *int64         `json:"price_points"`
	ImageURL    *string        `json:"image_url"`
	Metadata    datatypes.JSON `json:"metadata"`
	IsActive    *bool          `json:"is_active"`
}

func (in UpdateAvatarInput) fields() map[string]any {
	updates := map[string]any{}
	putString(updates, "name", in.Name)
	putString(updates, "image_url", in.ImageURL)
	if in.PricePoints != nil {
		updates["price_points"] = *in.PricePoints
	}
	if in.Metadata != nil {
		updates["metadata"] = in.Metadata
	}
	if in.IsActive != nil {
		updates["is_active"] = *in.IsActive
	}
	return updates
}

func (s *AvatarService) Update(ctx context.Context, id uint, in UpdateAvatarInput) (*models.Avatar, error) {
	if !s.available() {
		return nil, ErrShopUnavailable
	}
	updates := in.fields()
	if len(updates) == 0 {
		return nil, ErrNoUpdatableFields
	}
	res := s.db.WithContext(ctx).Model(&models.Avatar{}).
		Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrAvatarNotFound
	}
	return s.Get(ctx, id)
}

func (s *AvatarService) Get(ctx context.Context, id uint) (*models.Avatar, error) {
	if !s.available() {
		return nil, ErrShopUnavailable
	}
	var avatar models.Avatar
	if err := s.db.WithContext(ctx).First(&avatar, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAvatarNotFound
		}
		return nil, err
	}
	return &avatar, nil
}

func (s *AvatarService) Delete(ctx context.Context, id uint) error {
	if !s.available() {
		return ErrShopUnavailable
	}
	res := s.db.WithContext(ctx).Unscoped().Delete(&models.Avatar{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAvatarNotFound
	}
	return nil
}

// PurchaseRecord reconciles shop transactions and legacy unlocks into one
// listing shape.
type PurchaseRecord struct {
	ID          uint      `json:"id"`
	UserID      string    `json:"user_id"`
	AvatarName  string    `json:"avatar_name,omitempty"`
	PricePoints *int64    `json:"price_points,omitempty"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// Purchases lists who bought one avatar, newest-first. The reference is a
// numeric id against the purchases table when it exists; otherwise it resolves
// to an avatar name and reads the unlock log. Both absent reads as empty with
// source "none".
func (s *AvatarService) Purchases(ctx context.Context, ref string) ([]PurchaseRecord, string) {
	if id, err := strconv.ParseUint(ref, 10, 32); err == nil &&
		s.db.Migrator().HasTable(&models.AvatarPurchase{}) {
		var rows []models.AvatarPurchase
		if err := s.db.WithContext(ctx).
			Where("avatar_id = ?", uint(id)).
			Order("purchased_at DESC").
			Find(&rows).Error; err == nil {
			out := make([]PurchaseRecord, 0, len(rows))
			for _, r := range rows {
				out = append(out, PurchaseRecord{
					ID:          r.ID,
					UserID:      r.UserID,
					PricePoints: r.PricePoints,
					PurchasedAt: r.PurchasedAt,
				})
			}
			return out, "avatar_purchases"
		}
	}

	// Without a purchases table the reference may be a shop id or a raw
	// avatar name; resolve ids through the shop when possible.
	name := ref
	if id, err := strconv.ParseUint(ref, 10, 32); err == nil {
		if avatar, err := s.Get(ctx, uint(id)); err == nil {
			name = avatar.Name
		}
	}
	var rows []models.AvatarUnlock
	if err := s.db.WithContext(ctx).
		Where("avatar_name = ?", name).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return []PurchaseRecord{}, "none"
	}
	out := make([]PurchaseRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, PurchaseRecord{
			ID:          r.ID,
			UserID:      r.UserID,
			AvatarName:  r.AvatarName,
			PurchasedAt: r.CreatedAt,
		})
	}
	return out, "avatar_unlocks"
}

func avatarRecord(r models.Avatar) AvatarRecord {
	created := r.CreatedAt
	return AvatarRecord{
		ID:          strconv.FormatUint(uint64(r.ID), 10),
		Name:        r.Name,
		PricePoints: r.PricePoints,
		ImageURL:    r.ImageURL,
		Metadata:    r.Metadata,
		IsActive:    r.IsActive,
		CreatedAt:   &created,
	}
}
