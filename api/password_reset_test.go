package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"spendlog/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetColumns() []string {
	return []string{"id", "user_id", "token", "email", "expires_at", "used", "created_at"}
}

func TestPasswordResetHandler_RequestReset_UnknownEmail(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := testConfig()
	cfg.Email.Enabled = true
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	// unknown address: same answer as a known one, no mail sent
	mock.ExpectQuery("SELECT .* FROM `users`").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{}))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/password/request-reset", NewPasswordResetHandler(cfg).RequestReset)

	body := `{"email":"ghost@example.com"}`
	req := httptest.NewRequest("POST", "/password/request-reset", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 202, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetHandler_ResetPassword(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := testConfig()
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	token := "a-valid-reset-token"
	mock.ExpectQuery("SELECT .* FROM `password_resets`").
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows(resetColumns()).
			AddRow(1, 4, token, "a@example.com", time.Now().Add(10*time.Minute), false, time.Now()))

	// new password hash
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// token marked used
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `password_resets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// all open sessions revoked
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `sessions`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/password/reset", NewPasswordResetHandler(cfg).ResetPassword)

	body := `{"token":"a-valid-reset-token","new_password":"brandnewsecret"}`
	req := httptest.NewRequest("POST", "/password/reset", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 204, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPasswordResetHandler_ResetPassword_ExpiredToken(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	cfg := testConfig()
	config.GlobalConfig = cfg
	defer func() { config.GlobalConfig = nil }()

	token := "an-expired-token"
	mock.ExpectQuery("SELECT .* FROM `password_resets`").
		WithArgs(token).
		WillReturnRows(sqlmock.NewRows(resetColumns()).
			AddRow(1, 4, token, "a@example.com", time.Now().Add(-time.Minute), false, time.Now()))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/password/reset", NewPasswordResetHandler(cfg).ResetPassword)

	body := `{"token":"an-expired-token","new_password":"brandnewsecret"}`
	req := httptest.NewRequest("POST", "/password/reset", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, KindValidation, resp.Error)
	assert.Contains(t, resp.Message, "expired")
	require.NoError(t, mock.ExpectationsWereMet())
}
