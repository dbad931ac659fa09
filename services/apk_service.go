package services

import (
	"context"
	"errors"

	"github.com/seowliyuan/nutriadmin/models"

	"gorm.io/gorm"
)

var ErrAPKNotFound = errors.New("apk version not found")

// APKService manages release records; the binaries themselves live on GitHub.
type APKService struct{ db *gorm.DB }

func NewAPKService(db *gorm.DB) *APKService { return &APKService{db: db} }

// List returns releases newest-first. A store error degrades to an empty
// page: the releases screen should render even when the table is missing.
func (s *APKService) List(ctx context.Context, page, perPage int) ([]models.APKVersion, Pagination) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}
	tx := s.db.WithContext(ctx).Model(&models.APKVersion{})
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []models.APKVersion{}, NewPagination(0, page, perPage)
	}
	var rows []models.APKVersion
	if err := tx.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&rows).Error; err != nil {
		return []models.APKVersion{}, NewPagination(0, page, perPage)
	}
	return rows, NewPagination(total, page, perPage)
}

type CreateAPKInput struct {
	Version      string `json:"version" binding:"required"`
	GithubURL    string `json:"github_url" binding:"required"`
	FileSize     *int64 `json:"file_size"`
	ReleaseNotes string `json:"release_notes"`
}

func (s *APKService) Create(ctx context.Context, in CreateAPKInput) (*models.APKVersion, error) {
	apk := models.APKVersion{
		Version:      in.Version,
		GithubURL:    in.GithubURL,
		FileSize:     in.FileSize,
		ReleaseNotes: in.ReleaseNotes,
		Downloads:    0,
	}
	if err := s.db.WithContext(ctx).Create(&apk).Error; err != nil {
		return nil, err
	}
	return &apk, nil
}

func (s *APKService) Get(ctx context.Context, id uint) (*models.APKVersion, error) {
	var apk models.APKVersion
	if err := s.db.WithContext(ctx).First(&apk, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAPKNotFound
		}
		return nil, err
	}
	return &apk, nil
}

func (s *APKService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Unscoped().Delete(&models.APKVersion{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAPKNotFound
	}
	return nil
}

// TrackDownload bumps the counter and hands back the download link.
func (s *APKService) TrackDownload(ctx context.Context, id uint) (string, error) {
	apk, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.db.WithContext(ctx).Model(&models.APKVersion{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + ?", 1)).Error; err != nil {
		return "", err
	}
	return apk.GithubURL, nil
}
