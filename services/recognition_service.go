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

	"gorm.io/gorm"
)

var ErrRecognitionNotFound = errors.New("recognition not found")

// RecognitionService lists the AI recognition log. A missing table degrades
// to an empty page with source "none".
type RecognitionService struct{ db *gorm.DB }

func NewRecognitionService(db *gorm.DB) *RecognitionService {
	return &RecognitionService{db: db}
}

type RecognitionQuery struct {
	Page          int
	PerPage       int
	Text          string // matches label or user email
	UserID        string
	Source        string
	StartDate     string // YYYY-MM-DD
	EndDate       string
	MinConfidence *float64
}

type RecognitionPage struct {
	Logs       []models.Recognition `json:"logs"`
	Source     string               `json:"source"`
	Pagination Pagination           `json:"pagination"`
}

func (s *RecognitionService) scope(ctx context.Context, q RecognitionQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.Recognition{})
	if t := strings.TrimSpace(q.Text); t != "" {
		needle := "%" + strings.ToLower(t) + "%"
		tx = tx.Where("lower(label) LIKE ? OR lower(user_email) LIKE ?", needle, needle)
	}
	if q.UserID != "" {
		tx = tx.Where("user_id = ?", q.UserID)
	}
	if q.Source != "" {
		tx = tx.Where("lower(source) LIKE ?", "%"+strings.ToLower(q.Source)+"%")
	}
	if q.StartDate != "" {
		tx = tx.Where("created_at >= ?", q.StartDate+"T00:00:00Z")
	}
	if q.EndDate != "" {
		tx = tx.Where("created_at <= ?", q.EndDate+"T23:59:59Z")
	}
	if q.MinConfidence != nil {
		tx = tx.Where("confidence >= ?", *q.MinConfidence)
	}
	return tx
}

func (s *RecognitionService) List(ctx context.Context, q RecognitionQuery) *RecognitionPage {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 1
	}
	empty := &RecognitionPage{
		Logs:       []models.Recognition{},
		Source:     "none",
		Pagination: NewPagination(0, q.Page, q.PerPage),
	}

	tx := s.scope(ctx, q)
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return empty
	}
	var rows []models.Recognition
	if err := tx.Order("created_at DESC").
		Offset((q.Page - 1) * q.PerPage).Limit(q.PerPage).
		Find(&rows).Error; err != nil {
		return empty
	}
	return &RecognitionPage{
		Logs:       rows,
		Source:     models.Recognition{}.TableName(),
		Pagination: NewPagination(total, q.Page, q.PerPage),
	}
}

func (s *RecognitionService) Get(ctx context.Context, id uint) (*models.Recognition, error) {
	var rec models.Recognition
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecognitionNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ExportCSV honors the same filters as List, capped to keep exports sane.
func (s *RecognitionService) ExportCSV(ctx context.Context, w io.Writer, q RecognitionQuery, limit int) error {
	if limit < 100 {
		limit = 100
	}
	if limit > exportLimit {
		limit = exportLimit
	}
	var rows []models.Recognition
	if err := s.scope(ctx, q).
		Order("created_at DESC").Limit(limit).
		Find(&rows).Error; err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{"ID", "User ID", "User Email", "Detected Label", "Confidence Score", "Source", "Image URL", "Timestamp"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		conf := ""
		if r.Confidence != nil {
			conf = fmt.Sprintf("%.4f", *r.Confidence)
		}
		rec := []string{
			fmt.Sprintf("%d", r.ID),
			r.UserID,
			r.UserEmail,
			r.Label,
			conf,
			r.Source,
			r.ImageURL,
			r.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
