package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"spendlog/config"
	"spendlog/database"
	"spendlog/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func initAuthTestConfig() {
	config.GlobalConfig = &config.Config{
		Server:  config.ServerConfig{Mode: "debug"},
		Session: config.SessionConfig{Secret: "test-session-secret", ExpireTime: 24 * time.Hour},
	}
}

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	oldDB := database.DB
	database.DB = gormDB
	return mock, func() {
		database.DB = oldDB
		sqlDB.Close()
	}
}

func TestGenerateToken(t *testing.T) {
	initAuthTestConfig()
	defer func() { config.GlobalConfig = nil }()

	InitAuth(config.GlobalConfig)

	token, err := GenerateToken(1, "alice", "aabbccdd", 24*time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Greater(t, len(token), 20)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "aabbccdd", claims.TokenID)
}

func TestParseToken(t *testing.T) {
	initAuthTestConfig()
	defer func() { config.GlobalConfig = nil }()

	InitAuth(config.GlobalConfig)

	token, _ := GenerateToken(100, "bob", "ffee0011", time.Hour)
	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(100), claims.UserID)
	assert.Equal(t, "ffee0011", claims.TokenID)

	// empty string
	_, err = ParseToken("")
	assert.Error(t, err)

	// garbage
	_, err = ParseToken("not.a.valid.jwt")
	assert.Error(t, err)

	// expired token
	expired, _ := GenerateToken(100, "bob", "ffee0011", -time.Minute)
	_, err = ParseToken(expired)
	assert.Error(t, err)
}

func TestAuthMiddleware(t *testing.T) {
	initAuthTestConfig()
	defer func() { config.GlobalConfig = nil }()

	InitAuth(config.GlobalConfig)
	gin.SetMode(gin.TestMode)

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(Auth())
		router.GET("/protected", func(c *gin.Context) {
			c.String(200, "id:%d", GetCurrentUserID(c))
		})
		return router
	}

	// no token
	router := newRouter()
	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "authentication")

	// wrong scheme
	req2 := httptest.NewRequest("GET", "/protected", nil)
	req2.Header.Set("Authorization", "Basic xyz")
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)
	assert.Equal(t, http.StatusUnauthorized, w2.Code)

	// bearer with no token
	req3 := httptest.NewRequest("GET", "/protected", nil)
	req3.Header.Set("Authorization", "Bearer ")
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, req3)
	assert.Equal(t, http.StatusUnauthorized, w3.Code)

	// valid token backed by an active session
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	tokenID, err := models.NewSessionTokenID()
	require.NoError(t, err)
	token, err := GenerateToken(42, "user42", tokenID, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM `sessions`").
		WithArgs(tokenID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_id", "expires_at", "revoked_at", "created_at"}).
			AddRow(1, 42, tokenID, time.Now().Add(time.Hour), nil, time.Now()))
	// sliding expiry update
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sessions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	req4 := httptest.NewRequest("GET", "/protected", nil)
	req4.Header.Set("Authorization", "Bearer "+token)
	w4 := httptest.NewRecorder()
	router.ServeHTTP(w4, req4)
	assert.Equal(t, 200, w4.Code)
	assert.Equal(t, "id:42", w4.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthMiddleware_ExtendSessionFails(t *testing.T) {
	initAuthTestConfig()
	defer func() { config.GlobalConfig = nil }()

	InitAuth(config.GlobalConfig)
	gin.SetMode(gin.TestMode)

	mock, cleanup := setupMockDB(t)
	defer cleanup()

	tokenID, err := models.NewSessionTokenID()
	require.NoError(t, err)
	token, err := GenerateToken(42, "user42", tokenID, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM `sessions`").
		WithArgs(tokenID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_id", "expires_at", "revoked_at", "created_at"}).
			AddRow(1, 42, tokenID, time.Now().Add(time.Hour), nil, time.Now()))
	// sliding expiry update fails; the request must still go through
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sessions`").
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	router := gin.New()
	router.Use(Auth())
	router.GET("/protected", func(c *gin.Context) {
		c.String(200, "id:%d", GetCurrentUserID(c))
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, "id:42", w.Body.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthMiddleware_RevokedSession(t *testing.T) {
	initAuthTestConfig()
	defer func() { config.GlobalConfig = nil }()

	InitAuth(config.GlobalConfig)
	gin.SetMode(gin.TestMode)

	mock, cleanup := setupMockDB(t)
	defer cleanup()

	tokenID, err := models.NewSessionTokenID()
	require.NoError(t, err)
	token, err := GenerateToken(7, "carol", tokenID, time.Hour)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .* FROM `sessions`").
		WithArgs(tokenID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "token_id", "expires_at", "revoked_at", "created_at"}).
			AddRow(1, 7, tokenID, time.Now().Add(time.Hour), time.Now(), time.Now()))

	router := gin.New()
	router.Use(Auth())
	router.GET("/protected", func(c *gin.Context) {
		c.String(200, "ok")
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "revoked")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCurrentUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uint(0), GetCurrentUserID(c))
	assert.Equal(t, "", GetCurrentTokenID(c))

	c.Set("userID", uint(99))
	c.Set("tokenID", "deadbeef")
	assert.Equal(t, uint(99), GetCurrentUserID(c))
	assert.Equal(t, "deadbeef", GetCurrentTokenID(c))
}
