package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is the preferred shape for admin audit entries. The logger
// writes to whichever candidate table accepts the row, so this struct carries
// no fixed table binding.
type ActivityLog struct {
	ID          uint           `gorm:"primarykey" json:"id"`
	Type        string         `gorm:"not null" json:"type"` // e.g. "user_created", "food_deleted"
	Description string         `json:"description"`
	AdminID     string         `json:"admin_id"`
	AdminName   string         `json:"admin_name"`
	Details     datatypes.JSON `json:"details"`
	CreatedAt   time.Time      `json:"created_at"`
}
