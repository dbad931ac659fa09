package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// activityTables is the ordered list of tables the logger will accept. The
// first one that takes the insert wins; none existing degrades to a no-op.
var activityTables = []string{
	"admin_activity_logs",
	"activity_logs",
	"admin_logs",
	"audit_logs",
}

// ActivityLogger is a fire-and-forget recorder for mutating admin actions.
// It never returns an error and never blocks the primary operation: callers
// check the boolean only if they care.
type ActivityLogger struct {
	db     *gorm.DB
	tables []string
	hub    *FeedHub // optional live feed
}

func NewActivityLogger(db *gorm.DB, hub *FeedHub) *ActivityLogger {
	return &ActivityLogger{db: db, tables: activityTables, hub: hub}
}

// Log records one admin action. Returns false when no candidate table
// accepted the row.
func (l *ActivityLogger) Log(ctx context.Context, typ, description, adminID, adminName string, details map[string]any) bool {
	if typ == "" {
		return false
	}
	if adminName == "" {
		adminName = "System"
	}
	if description == "" {
		description = fmt.Sprintf("%s performed", typ)
	}
	if details == nil {
		details = map[string]any{}
	}
	raw, err := json.Marshal(details)
	if err != nil {
		raw = []byte("{}")
	}

	row := map[string]any{
		"type":        typ,
		"description": description,
		"admin_id":    adminID,
		"admin_name":  adminName,
		"details":     datatypes.JSON(raw),
		"created_at":  time.Now().UTC(),
	}

	for _, table := range l.tables {
		if err := l.db.WithContext(ctx).Table(table).Create(row).Error; err != nil {
			continue
		}
		if l.hub != nil {
			l.hub.Broadcast(ActivityEvent{
				Type:        typ,
				Description: description,
				AdminName:   adminName,
				Details:     details,
				CreatedAt:   time.Now().UTC(),
			})
		}
		return true
	}
	log.Printf("activity logger: no candidate table accepted %q", typ)
	return false
}

// ActivityEntry is the reconciled shape for listings; source tables disagree
// on column names, so fields are coalesced best-effort.
type ActivityEntry struct {
	ID          any            `json:"id"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	AdminID     string         `json:"admin_id,omitempty"`
	AdminName   string         `json:"admin_name"`
	CreatedAt   any            `json:"created_at"`
	Details     map[string]any `json:"details"`
}

// ActivityPage marks which table answered; Source is "none" when no table
// exists (a soft outcome, not an error).
type ActivityPage struct {
	Entries    []ActivityEntry `json:"activities"`
	Source     string          `json:"source"`
	Pagination Pagination      `json:"pagination"`
	Message    string          `json:"message,omitempty"`
}

// List pages through whichever activity table exists, with an optional
// category filter (users | foods | system) mapped to type prefixes.
func (l *ActivityLogger) List(ctx context.Context, page, perPage int, category string) *ActivityPage {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 1
	}

	for _, table := range l.tables {
		tx := l.db.WithContext(ctx).Table(table)
		switch strings.ToLower(strings.TrimSpace(category)) {
		case "", "all":
		case "users":
			tx = tx.Where("lower(type) LIKE ?", "user_%")
		case "foods":
			tx = tx.Where("lower(type) LIKE ?", "food_%")
		case "system":
			tx = tx.Where("lower(type) LIKE ? OR lower(type) LIKE ? OR lower(type) LIKE ?",
				"%login%", "%logout%", "system_%")
		}

		var total int64
		if err := tx.Count(&total).Error; err != nil {
			continue
		}
		var rows []map[string]any
		if err := tx.Order("created_at DESC").
			Offset((page - 1) * perPage).Limit(perPage).
			Find(&rows).Error; err != nil {
			continue
		}

		entries := make([]ActivityEntry, 0, len(rows))
		for _, r := range rows {
			entries = append(entries, reconcileActivity(r))
		}
		return &ActivityPage{
			Entries:    entries,
			Source:     table,
			Pagination: NewPagination(total, page, perPage),
		}
	}

	return &ActivityPage{
		Entries:    []ActivityEntry{},
		Source:     "none",
		Pagination: NewPagination(0, page, perPage),
		Message:    "Activity logs table not found. Create \"admin_activity_logs\" to enable this feature.",
	}
}

func reconcileActivity(row map[string]any) ActivityEntry {
	e := ActivityEntry{
		ID:          coalesce(row, "id", "activity_id"),
		Type:        asString(coalesce(row, "type", "action_type")),
		Description: asString(coalesce(row, "description", "message", "action")),
		AdminID:     asString(coalesce(row, "admin_id", "user_id")),
		AdminName:   asString(coalesce(row, "admin_name", "admin_email", "user_name")),
		CreatedAt:   coalesce(row, "created_at", "timestamp"),
		Details:     map[string]any{},
	}
	if e.Type == "" {
		e.Type = "unknown"
	}
	if e.Description == "" {
		e.Description = fmt.Sprintf("%s performed", e.Type)
	}
	if e.AdminName == "" {
		e.AdminName = "System"
	}
	if v := coalesce(row, "details", "metadata", "extra_data"); v != nil {
		switch d := v.(type) {
		case []byte:
			_ = json.Unmarshal(d, &e.Details)
		case string:
			_ = json.Unmarshal([]byte(d), &e.Details)
		case map[string]any:
			e.Details = d
		}
	}
	return e
}

func coalesce(row map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := row[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return fmt.Sprintf("%v", s)
	}
}
