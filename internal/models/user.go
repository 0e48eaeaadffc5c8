package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User is a post author or viewer. Credentials live with the external auth
// service; this table only carries the public profile.
type User struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	DisplayName string    `json:"display_name"`
	Handle      string    `json:"handle" gorm:"uniqueIndex"`
	Email       string    `json:"-" gorm:"uniqueIndex"`
	AvatarURL   string    `json:"avatar_url"`
	FirebaseUID *string   `json:"-" gorm:"uniqueIndex"` // Link to Firebase User UID
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserCompact is the author shape embedded in feed items
type UserCompact struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"displayName"`
	Handle      string `json:"handle"`
	AvatarURL   string `json:"avatarUrl"`
}

// ToCompact reduces the user to its public author fields.
func (u *User) ToCompact() UserCompact {
	return UserCompact{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Handle:      u.Handle,
		AvatarURL:   u.AvatarURL,
	}
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
