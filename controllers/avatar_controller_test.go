package controllers

import (
	"net/http"
	"testing"

	"github.com/seowliyuan/nutriadmin/models"
	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAvatarRouter(t *testing.T, tables ...any) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t, tables...)
	h := NewAvatarController(services.NewAvatarService(db), services.NewActivityLogger(db, nil))

	r := gin.New()
	r.GET("/admin/avatars", h.List)
	r.POST("/admin/avatars", h.Create)
	r.PUT("/admin/avatars/:id", h.Update)
	r.DELETE("/admin/avatars/:id", h.Delete)
	r.GET("/admin/avatars/:id/purchases", h.Purchases)
	return r, db
}

func TestAvatarLifecycleOverHTTP(t *testing.T) {
	r, _ := newAvatarRouter(t, &models.Avatar{})

	w := doJSON(t, r, http.MethodPost, "/admin/avatars",
		`{"name":"Orang Utan","price_points":500,"image_url":"https://cdn.example.com/orang-utan.png"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"is_active":true`)

	w = doJSON(t, r, http.MethodPut, "/admin/avatars/1", `{"price_points":250,"is_active":false}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"price_points":250`)
	require.Contains(t, w.Body.String(), `"is_active":false`)

	w = doJSON(t, r, http.MethodGet, "/admin/avatars", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"source":"avatars"`)
	require.Contains(t, w.Body.String(), "Orang Utan")

	w = doJSON(t, r, http.MethodDelete, "/admin/avatars/1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/admin/avatars/1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvatarCreateRequiresName(t *testing.T) {
	r, _ := newAvatarRouter(t, &models.Avatar{})
	w := doJSON(t, r, http.MethodPost, "/admin/avatars", `{"price_points":100}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "Missing avatar name")
}

func TestAvatarUpdateWithoutFieldsGets400(t *testing.T) {
	r, db := newAvatarRouter(t, &models.Avatar{})
	require.NoError(t, db.Create(&models.Avatar{Name: "Kancil", IsActive: true}).Error)

	w := doJSON(t, r, http.MethodPut, "/admin/avatars/1", `{"unknown":"field"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "No updatable fields")
}

func TestAvatarWritesWithoutTableGet501(t *testing.T) {
	r, _ := newAvatarRouter(t)

	w := doJSON(t, r, http.MethodPost, "/admin/avatars", `{"name":"Kancil"}`)
	require.Equal(t, http.StatusNotImplemented, w.Code)
	require.Contains(t, w.Body.String(), "avatars table not found")

	w = doJSON(t, r, http.MethodPut, "/admin/avatars/1", `{"name":"Kancil"}`)
	require.Equal(t, http.StatusNotImplemented, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/admin/avatars/1", "")
	require.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestAvatarListFallsBackWithoutShopTable(t *testing.T) {
	r, db := newAvatarRouter(t, &models.AvatarUnlock{})
	require.NoError(t, db.Create(&models.AvatarUnlock{UserID: "u-1", AvatarName: "Harimau"}).Error)

	w := doJSON(t, r, http.MethodGet, "/admin/avatars", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"source":"avatar_unlocks"`)
	require.Contains(t, w.Body.String(), "Harimau")
}

func TestAvatarPurchasesOverHTTP(t *testing.T) {
	r, db := newAvatarRouter(t, &models.Avatar{}, &models.AvatarUnlock{})
	require.NoError(t, db.Create(&models.Avatar{Name: "Harimau", IsActive: true}).Error)
	require.NoError(t, db.Create(&models.AvatarUnlock{UserID: "u-1", AvatarName: "Harimau"}).Error)

	w := doJSON(t, r, http.MethodGet, "/admin/avatars/1/purchases", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"source":"avatar_unlocks"`)
	require.Contains(t, w.Body.String(), `"u-1"`)
}

func TestAvatarInvalidIDGets400(t *testing.T) {
	r, _ := newAvatarRouter(t, &models.Avatar{})
	w := doJSON(t, r, http.MethodPut, "/admin/avatars/abc", `{"name":"x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
