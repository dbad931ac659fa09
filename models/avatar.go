package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Avatar is one shop item users unlock with points.
type Avatar struct {
	gorm.Model
	Name        string         `gorm:"not null" json:"name"`
	PricePoints *int64         `gorm:"column:price_points" json:"price_points"`
	ImageURL    string         `gorm:"column:image_url" json:"image_url"`
	Metadata    datatypes.JSON `json:"metadata"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
}

func (Avatar) TableName() string { return "avatars" }

// AvatarPurchase is a shop transaction record.
type AvatarPurchase struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	AvatarID    uint      `gorm:"index" json:"avatar_id"`
	UserID      string    `gorm:"index" json:"user_id"`
	PricePoints *int64    `gorm:"column:price_points" json:"price_points"`
	PurchasedAt time.Time `json:"purchased_at"`
}

func (AvatarPurchase) TableName() string { return "avatar_purchases" }

// AvatarUnlock is the legacy unlock record the mobile app writes. It is the
// fallback when the shop tables are absent.
type AvatarUnlock struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     string    `gorm:"index" json:"user_id"`
	AvatarName string    `gorm:"column:avatar_name" json:"avatar_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AvatarUnlock) TableName() string { return "avatar_unlocks" }
