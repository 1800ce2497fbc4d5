package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"spendlog/config"
	"spendlog/database"
	"spendlog/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtSecret  []byte
	sessionTTL time.Duration
)

// Claims carried inside a bearer token. TokenID ties the token to its
// sessions row, which holds the expiry and revocation state.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	TokenID  string `json:"tid"`
	jwt.RegisteredClaims
}

// InitAuth sets the signing secret and session lifetime.
func InitAuth(cfg *config.Config) {
	jwtSecret = []byte(cfg.Session.Secret)
	sessionTTL = cfg.Session.ExpireTime
}

// GenerateToken signs a bearer token for the given user and session id.
func GenerateToken(userID uint, username, tokenID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		TokenID:  tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken verifies the signature and returns the claims.
func ParseToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Auth authenticates requests from the Authorization header. The token
// signature alone is not enough: the backing session row must exist and
// be neither revoked nor past its deadline. Successful requests push
// the deadline forward (sliding expiry).
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abortUnauthorized(c, "missing or malformed bearer token")
			return
		}

		claims, err := ParseToken(strings.TrimSpace(tokenString))
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		var session models.Session
		if err := database.DB.Where("token_id = ?", claims.TokenID).First(&session).Error; err != nil {
			abortUnauthorized(c, "session not found")
			return
		}
		if session.UserID != claims.UserID || !session.IsActive() {
			abortUnauthorized(c, "session expired or revoked")
			return
		}

		// Sliding expiry. The request itself is already authenticated,
		// so a failing extension is logged, not fatal.
		if err := database.DB.Model(&models.Session{}).
			Where("token_id = ?", claims.TokenID).
			Update("expires_at", time.Now().Add(sessionTTL)).Error; err != nil {
			log.Printf("extend session failed: %v", err)
		}

		c.Set("userID", session.UserID)
		c.Set("tokenID", session.TokenID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "authentication",
		"message": message,
	})
}

// GetCurrentUserID returns the authenticated user id, 0 if absent.
func GetCurrentUserID(c *gin.Context) uint {
	if v, exists := c.Get("userID"); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetCurrentTokenID returns the session token id for this request.
func GetCurrentTokenID(c *gin.Context) string {
	if v, exists := c.Get("tokenID"); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
