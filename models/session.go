package models

import "time"

// Session binds an opaque access token to the user who logged in.
// Rows are removed explicitly on logout and together with their user.
type Session struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	AccessToken string     `gorm:"size:64;not null;uniqueIndex" json:"access_token"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	ExpiresAt   *time.Time `gorm:"index" json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Expired reports whether the session is past its expiry at now. Sessions without expiry never expire.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
