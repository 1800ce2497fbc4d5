package api

import (
	"errors"
	"log"
	"strings"
	"time"

	"spendlog/config"
	"spendlog/database"
	"spendlog/middleware"
	"spendlog/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength is the minimal accepted password length.
const MinPasswordLength = 8

// AuthHandler serves registration, login and session management.
type AuthHandler struct {
	cfg *config.Config
}

// NewAuthHandler creates the auth handler.
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// RegisterRequest registration payload.
type RegisterRequest struct {
	Login    string `json:"login" binding:"required,max=50"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email,max=100"`
}

// LoginRequest login payload.
type LoginRequest struct {
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account. The password is stored as a bcrypt
// hash; a duplicate login is a conflict, not a validation error.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}

	req.Login = strings.TrimSpace(req.Login)
	if req.Login == "" {
		BadRequest(c, "login must not be empty")
		return
	}
	if len(req.Password) < MinPasswordLength {
		WeakPassword(c, "password must be at least 8 characters")
		return
	}

	var existing models.User
	if err := database.DB.Where("username = ?", req.Login).First(&existing).Error; err == nil {
		Conflict(c, "login already taken")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "password hashing failed")
		return
	}

	user := models.User{
		Username: req.Login,
		Password: string(hashed),
		Email:    req.Email,
	}

	if err := database.DB.Create(&user).Error; err != nil {
		// A concurrent registration can slip past the lookup above and
		// hit the unique index instead.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			Conflict(c, "login already taken")
			return
		}
		log.Printf("create user failed: %v", err)
		InternalError(c, SafeErrorMessage(err, "could not create user"))
		return
	}

	Created(c, gin.H{"user_id": user.ID})
}

// Login verifies credentials and issues a bearer token backed by a
// fresh session row.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}

	var user models.User
	if err := database.DB.Where("username = ?", req.Login).First(&user).Error; err != nil {
		Unauthorized(c, "invalid login or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "invalid login or password")
		return
	}

	tokenID, err := models.NewSessionTokenID()
	if err != nil {
		InternalError(c, "could not create session")
		return
	}

	session := models.Session{
		UserID:    user.ID,
		TokenID:   tokenID,
		ExpiresAt: time.Now().Add(h.cfg.Session.ExpireTime),
	}
	if err := database.DB.Create(&session).Error; err != nil {
		log.Printf("create session failed: %v", err)
		InternalError(c, SafeErrorMessage(err, "could not create session"))
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, tokenID, h.cfg.Session.ExpireTime)
	if err != nil {
		InternalError(c, "could not sign token")
		return
	}

	OK(c, gin.H{"token": token})
}

// Logout revokes the calling session. Idempotent: revoking an already
// revoked or unknown session still answers 204.
func (h *AuthHandler) Logout(c *gin.Context) {
	tokenID := middleware.GetCurrentTokenID(c)
	if tokenID != "" {
		now := time.Now()
		_ = database.DB.Model(&models.Session{}).
			Where("token_id = ? AND revoked_at IS NULL", tokenID).
			Update("revoked_at", now).Error
	}
	NoContent(c)
}

// Profile returns the authenticated user.
func (h *AuthHandler) Profile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "user not found")
		return
	}

	OK(c, user)
}

// ChangePasswordRequest password change payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePassword updates the password after re-verifying the old one.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}
	if len(req.NewPassword) < MinPasswordLength {
		WeakPassword(c, "password must be at least 8 characters")
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "user not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		Unauthorized(c, "old password is incorrect")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "password hashing failed")
		return
	}

	if err := database.DB.Model(&user).Update("password", string(hashed)).Error; err != nil {
		log.Printf("update password failed: %v", err)
		InternalError(c, SafeErrorMessage(err, "could not update password"))
		return
	}

	NoContent(c)
}
