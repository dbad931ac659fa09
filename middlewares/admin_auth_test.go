package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/seowliyuan/nutriadmin/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newAuthRig(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Profile{}))

	r := gin.New()
	r.GET("/admin/summary", AdminAuth(db, testSecret), func(c *gin.Context) {
		id, name := AdminIdentity(c)
		c.JSON(http.StatusOK, gin.H{"adminID": id, "adminName": name})
	})
	return r, db
}

func signToken(t *testing.T, sub, email string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func seedAdmin(t *testing.T, db *gorm.DB, userID string, isAdmin, disabled bool) {
	t.Helper()
	require.NoError(t, db.Create(&models.Profile{
		UserID:   userID,
		Email:    userID + "@example.com",
		FullName: "Admin " + userID,
		IsAdmin:  isAdmin,
		Disabled: disabled,
	}).Error)
}

func TestMissingCredentialBrowserRedirectsToLogin(t *testing.T) {
	r, _ := newAuthRig(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/summary", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
}

func TestMissingCredentialAPIGets401(t *testing.T) {
	r, _ := newAuthRig(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/summary", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestInvalidTokenGets401(t *testing.T) {
	r, _ := newAuthRig(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/summary", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNonAdminProfileGets403(t *testing.T) {
	r, db := newAuthRig(t)
	seedAdmin(t, db, "u-1", false, false)

	req := httptest.NewRequest(http.MethodGet, "/admin/summary", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, "u-1", "u-1@example.com")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestDisabledAdminGets403(t *testing.T) {
	r, db := newAuthRig(t)
	seedAdmin(t, db, "u-1", true, true)

	req := httptest.NewRequest(http.MethodGet, "/admin/summary", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, "u-1", "u-1@example.com")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUnknownProfileGets401(t *testing.T) {
	r, _ := newAuthRig(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/summary", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: signToken(t, "ghost", "ghost@example.com")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminPassesViaCookieAndBearer(t *testing.T) {
	r, db := newAuthRig(t)
	seedAdmin(t, db, "u-1", true, false)
	token := signToken(t, "u-1", "u-1@example.com")

	req := httptest.NewRequest(http.MethodGet, "/admin/summary", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "u-1@example.com")

	req = httptest.NewRequest(http.MethodGet, "/admin/summary", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
