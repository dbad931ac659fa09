package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newActivityRouter(t *testing.T, withTable bool) (*gin.Engine, *services.ActivityLogger, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	if withTable {
		require.NoError(t, db.Exec(`CREATE TABLE admin_activity_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			type TEXT NOT NULL,
			description TEXT,
			admin_id TEXT,
			admin_name TEXT,
			details TEXT,
			created_at DATETIME
		)`).Error)
	}
	hub := services.NewFeedHub()
	logger := services.NewActivityLogger(db, hub)
	h := NewActivityController(logger, hub)

	r := gin.New()
	r.GET("/admin/activity", h.List)
	r.POST("/admin/activity", h.Create)
	r.GET("/admin/activity/feed", h.Feed)
	return r, logger, db
}

func TestActivityCreateAndList(t *testing.T) {
	r, _, _ := newActivityRouter(t, true)

	w := doJSON(t, r, http.MethodPost, "/admin/activity",
		`{"type":"user_created","description":"User Zul created","details":{"user_id":"u-1"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"recorded":true`)

	w = doJSON(t, r, http.MethodGet, "/admin/activity?category=users", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"source":"admin_activity_logs"`)
	require.Contains(t, w.Body.String(), "User Zul created")
}

func TestActivityCreateRequiresType(t *testing.T) {
	r, _, _ := newActivityRouter(t, true)
	w := doJSON(t, r, http.MethodPost, "/admin/activity", `{"description":"no type"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestActivityListWithoutTableIsSoft(t *testing.T) {
	r, _, _ := newActivityRouter(t, false)

	w := doJSON(t, r, http.MethodGet, "/admin/activity", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"source":"none"`)

	w = doJSON(t, r, http.MethodPost, "/admin/activity", `{"type":"user_created"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"recorded":false`)
}

func TestActivityFeedStreamsEvents(t *testing.T) {
	r, logger, _ := newActivityRouter(t, true)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/admin/activity/feed"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	// The write lands after Register; give the upgrade goroutine a beat.
	time.Sleep(50 * time.Millisecond)
	require.True(t, logger.Log(context.Background(), "food_created", `Food "Laksa" created`, "a-1", "admin", nil))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev services.ActivityEvent
	require.NoError(t, json.Unmarshal(msg, &ev))
	require.Equal(t, "food_created", ev.Type)
	require.Equal(t, "admin", ev.AdminName)
}

func TestActivityFeedConcurrentBroadcasts(t *testing.T) {
	r, logger, _ := newActivityRouter(t, true)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/admin/activity/feed"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		defer resp.Body.Close()
	}
	defer conn.Close()

	time.Sleep(50 * time.Millisecond)

	// Many admins acting at once must not interleave frames on the shared
	// connection; every event should still arrive intact.
	const events = 20
	var wg sync.WaitGroup
	for i := 0; i < events; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Log(context.Background(), "user_updated", "User u-1 updated", "a-1", "admin", nil)
		}()
	}
	wg.Wait()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for i := 0; i < events; i++ {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var ev services.ActivityEvent
		require.NoError(t, json.Unmarshal(msg, &ev))
		require.Equal(t, "user_updated", ev.Type)
	}
}
