package models

import "gorm.io/gorm"

// Food is the canonical, fully-writable catalog schema.
type Food struct {
	gorm.Model
	Name     string   `gorm:"not null" json:"name"`
	Category string   `json:"category"`
	AltNames string   `gorm:"column:alt_names" json:"alt_names"` // comma-separated
	Kcal     *float64 `gorm:"column:kcal" json:"kcal"`
	Protein  *float64 `gorm:"column:protein_g" json:"protein_g"`
	Carbs    *float64 `gorm:"column:carbs_g" json:"carbs_g"`
	Fat      *float64 `gorm:"column:fat_g" json:"fat_g"`
	Sugar    *float64 `gorm:"column:sugar_g" json:"sugar_g"`
	Sodium   *float64 `gorm:"column:sodium_mg" json:"sodium_mg"`
}

func (Food) TableName() string { return "foods" }

// MalaysiaFood mirrors the locale-specific table inherited from an earlier
// data import. Read-mostly; column names differ from the canonical table and
// are reconciled by the catalog layer.
type MalaysiaFood struct {
	gorm.Model
	Name     string   `gorm:"not null" json:"name"`
	Category string   `json:"category"`
	AltNames string   `gorm:"column:alt_names" json:"alt_names"`
	Kcal     *float64 `gorm:"column:kcal_per_100g" json:"kcal_per_100g"`
	Protein  *float64 `gorm:"column:protein_g_per_100g" json:"protein_g_per_100g"`
	Carbs    *float64 `gorm:"column:carbs_g_per_100g" json:"carbs_g_per_100g"`
	Fat      *float64 `gorm:"column:fat_g_per_100g" json:"fat_g_per_100g"`
	Sugar    *float64 `gorm:"column:sugar_g_per_100g" json:"sugar_g_per_100g"`
	Sodium   *float64 `gorm:"column:sodium_mg_per_100g" json:"sodium_mg_per_100g"`
}

func (MalaysiaFood) TableName() string { return "malaysia_food_database" }
