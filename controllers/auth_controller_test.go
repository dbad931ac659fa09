package controllers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/seowliyuan/nutriadmin/middlewares"
	"github.com/seowliyuan/nutriadmin/models"
	"github.com/seowliyuan/nutriadmin/services"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret"

func newTestDB(t *testing.T, tables ...any) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	if len(tables) > 0 {
		require.NoError(t, db.AutoMigrate(tables...))
	}
	return db
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

func newAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t, &models.Profile{})
	auth := NewAuthController(db, testSecret, services.NewActivityLogger(db, nil))

	r := gin.New()
	r.POST("/admin/login", auth.Login)
	r.POST("/admin/logout", auth.Logout)
	return r, db
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.SessionCookie {
			return c
		}
	}
	return nil
}

func TestLoginMissingTokenGets400(t *testing.T) {
	r, _ := newAuthRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginInvalidTokenGets401(t *testing.T) {
	r, _ := newAuthRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"token":"garbage"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginNonAdminGets403AndNoCookie(t *testing.T) {
	r, db := newAuthRouter(t)
	require.NoError(t, db.Create(&models.Profile{
		UserID: "u-1", Email: "u-1@example.com", FullName: "Zul", IsAdmin: false,
	}).Error)

	token := signToken(t, "u-1", "u-1@example.com")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/login",
		strings.NewReader(`{"token":"`+token+`"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Nil(t, sessionCookie(w), "a rejected login must not set the session cookie")
}

func TestLoginDisabledAdminGets403AndNoCookie(t *testing.T) {
	r, db := newAuthRouter(t)
	require.NoError(t, db.Create(&models.Profile{
		UserID: "u-1", Email: "u-1@example.com", FullName: "Zul",
		IsAdmin: true, Disabled: true,
	}).Error)

	token := signToken(t, "u-1", "u-1@example.com")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/login",
		strings.NewReader(`{"token":"`+token+`"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	require.Nil(t, sessionCookie(w), "a disabled admin must not get a session")
}

func TestLoginAdminSetsHTTPOnlyCookie(t *testing.T) {
	r, db := newAuthRouter(t)
	require.NoError(t, db.Create(&models.Profile{
		UserID: "u-1", Email: "u-1@example.com", FullName: "Zul", IsAdmin: true,
	}).Error)

	token := signToken(t, "u-1", "u-1@example.com")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/login",
		strings.NewReader(`{"token":"`+token+`"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	require.Equal(t, token, cookie.Value)
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, cookieMaxAge, cookie.MaxAge)
	require.False(t, cookie.Secure, "plain HTTP test request stays non-secure")
}

func TestLogoutExpiresCookie(t *testing.T) {
	r, _ := newAuthRouter(t)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/logout", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(w)
	require.NotNil(t, cookie)
	require.Empty(t, cookie.Value)
	require.Less(t, cookie.MaxAge, 0)
}
