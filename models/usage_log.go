package models

import (
	"time"

	"gorm.io/gorm"
)

// FoodLog is one logged eating event from the mobile app.
type FoodLog struct {
	gorm.Model
	UserID   string     `gorm:"index" json:"user_id"`
	ItemName string     `json:"item_name"`
	Kcal     *float64   `json:"kcal"`
	EatenAt  *time.Time `json:"eaten_at"`
}

func (FoodLog) TableName() string { return "food_logs" }

// WaterLog is one hydration entry, in millilitres.
type WaterLog struct {
	gorm.Model
	UserID   string  `gorm:"index" json:"user_id"`
	AmountML float64 `gorm:"column:amount_ml" json:"amount_ml"`
}

func (WaterLog) TableName() string { return "water_logs" }

// Recognition is one AI food-recognition result.
type Recognition struct {
	gorm.Model
	UserID     string   `gorm:"index" json:"user_id"`
	UserEmail  string   `json:"user_email"`
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence"` // 0..1
	Source     string   `json:"source"`     // e.g. "gemini", "tflite"
	ImageURL   string   `json:"image_url"`
}

func (Recognition) TableName() string { return "recognitions" }
