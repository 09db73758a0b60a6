package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"size:120;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:256;not null"`
	FirstName    string    `json:"first_name,omitempty" gorm:"size:64"`
	LastName     string    `json:"last_name,omitempty" gorm:"size:64"`
	DeviceToken  string    `json:"-" gorm:"size:255"` // FCM registration token for push reminders
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// FullName returns the user's display name, falling back to the username.
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	}
	return u.Username
}

type SignupRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=64"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"omitempty,max=64"`
	LastName  string `json:"last_name" validate:"omitempty,max=64"`
}

type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateUserRequest struct {
	FirstName string `json:"first_name,omitempty" validate:"omitempty,max=64"`
	LastName  string `json:"last_name,omitempty" validate:"omitempty,max=64"`
	Email     string `json:"email,omitempty" validate:"omitempty,email"`
}

type DeviceTokenRequest struct {
	Token string `json:"token" validate:"max=255"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
