package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the application-level user record. The identity provider owns
// the account (email/password); the email column here is a read-only copy
// kept for display and export.
type Profile struct {
	gorm.Model
	UserID              string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"user_id"`
	Email               string     `json:"email"`
	FullName            string     `json:"full_name"`
	Goal                string     `json:"goal"` // e.g. "Lose Weight", "Gain Muscle", "Maintain", "Get Fit"
	HeightCM            *float64   `gorm:"column:height_cm" json:"height_cm"`
	WeightKG            *float64   `gorm:"column:weight_kg" json:"weight_kg"`
	BMI                 *float64   `gorm:"column:bmi" json:"bmi"`
	IsAdmin             bool       `json:"is_admin"`
	Disabled            bool       `json:"disabled"`
	CompletedOnboarding bool       `json:"completed_onboarding"`
	CheckInStreak       int        `json:"check_in_streak"`
	Points              int        `json:"points"`
	ForcePasswordReset  bool       `json:"force_password_reset"`
	ResetRequestedAt    *time.Time `json:"reset_requested_at,omitempty"`
}

func (Profile) TableName() string { return "profiles" }
