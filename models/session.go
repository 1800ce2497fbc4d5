package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Session is the server-side record backing a bearer token. The token
// itself carries the session's token_id; this row is the authority for
// expiry and revocation, so a signed token is useless after logout.
type Session struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	UserID    uint       `json:"user_id" gorm:"index;not null"`
	TokenID   string     `json:"-" gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	RevokedAt *time.Time `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	User      User       `json:"-" gorm:"foreignKey:UserID"`
}

// TableName sets the table name.
func (Session) TableName() string {
	return "sessions"
}

// NewSessionTokenID returns a random 128-bit identifier, hex encoded.
func NewSessionTokenID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// IsExpired reports whether the session deadline has passed.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// IsActive reports whether the session can still authenticate requests.
func (s *Session) IsActive() bool {
	return s.RevokedAt == nil && !s.IsExpired()
}
