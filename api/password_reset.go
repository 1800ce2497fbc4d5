package api

import (
	"log"
	"net/http"
	"time"

	"spendlog/config"
	"spendlog/database"
	"spendlog/models"
	"spendlog/service"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// PasswordResetHandler serves the emailed password-reset flow. Only
// routed when email is enabled in the configuration.
type PasswordResetHandler struct {
	cfg          *config.Config
	emailService *service.EmailService
}

// NewPasswordResetHandler creates the password reset handler.
func NewPasswordResetHandler(cfg *config.Config) *PasswordResetHandler {
	return &PasswordResetHandler{
		cfg:          cfg,
		emailService: service.NewEmailService(&cfg.Email),
	}
}

// RequestResetRequest reset request payload.
type RequestResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest reset redemption payload.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// RequestReset mails a single-use reset token. Answers 202 whether or
// not the address is registered, so accounts cannot be enumerated.
func (h *PasswordResetHandler) RequestReset(c *gin.Context) {
	var req RequestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "a valid email address is required")
		return
	}

	accepted := func() {
		c.JSON(http.StatusAccepted, gin.H{
			"message": "if that address is registered, a reset mail is on its way",
		})
	}

	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		accepted()
		return
	}

	// Throttle: an unused token younger than a minute blocks resending.
	var existing models.PasswordReset
	if err := database.DB.Where("user_id = ? AND used = ? AND expires_at > ?",
		user.ID, false, time.Now()).First(&existing).Error; err == nil {
		if time.Since(existing.CreatedAt) < time.Minute {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{
				Error:   "rate_limited",
				Message: "reset already requested, try again later",
			})
			return
		}
		database.DB.Model(&existing).Update("used", true)
	}

	token, err := models.GenerateResetToken()
	if err != nil {
		InternalError(c, "could not generate reset token")
		return
	}

	reset := models.PasswordReset{
		UserID:    user.ID,
		Token:     token,
		Email:     req.Email,
		ExpiresAt: time.Now().Add(30 * time.Minute),
	}
	if err := database.DB.Create(&reset).Error; err != nil {
		log.Printf("create password reset failed: %v", err)
		InternalError(c, SafeErrorMessage(err, "could not create reset token"))
		return
	}

	resetLink := h.cfg.Server.BaseURL + "/reset?token=" + token
	if err := h.emailService.SendPasswordResetEmail(req.Email, user.Username, resetLink); err != nil {
		database.DB.Delete(&reset)
		log.Printf("send reset mail failed: %v", err)
		InternalError(c, SafeErrorMessage(err, "could not send reset mail"))
		return
	}

	accepted()
}

// ResetPassword redeems a reset token and revokes every open session
// of the account.
func (h *PasswordResetHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "invalid request body"))
		return
	}
	if len(req.NewPassword) < MinPasswordLength {
		WeakPassword(c, "password must be at least 8 characters")
		return
	}

	var reset models.PasswordReset
	if err := database.DB.Where("token = ?", req.Token).First(&reset).Error; err != nil {
		BadRequest(c, "invalid reset token")
		return
	}
	if !reset.IsValid() {
		if reset.Used {
			BadRequest(c, "reset token already used")
		} else {
			BadRequest(c, "reset token expired")
		}
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "password hashing failed")
		return
	}

	if err := database.DB.Model(&models.User{}).
		Where("id = ?", reset.UserID).
		Update("password", string(hashed)).Error; err != nil {
		log.Printf("reset password failed: %v", err)
		InternalError(c, SafeErrorMessage(err, "could not update password"))
		return
	}

	database.DB.Model(&reset).Update("used", true)

	// A stolen session must not survive a password reset.
	now := time.Now()
	database.DB.Model(&models.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", reset.UserID).
		Update("revoked_at", now)

	NoContent(c)
}
