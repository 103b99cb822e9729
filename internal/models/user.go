package models

import "time"

type User struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"unique;not null" json:"username"`
	Email       string `gorm:"unique;not null" json:"email"`
	Password    string `gorm:"not null" json:"-"`
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`

	// Reputation is only changed by vote transitions and answer acceptance
	Reputation int `gorm:"not null;default:0" json:"reputation"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserBrief is the author block embedded in question and answer responses
type UserBrief struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Reputation  int    `json:"reputation"`
	AvatarURL   string `json:"avatar_url"`
}

func (u User) Brief() UserBrief {
	return UserBrief{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Reputation:  u.Reputation,
		AvatarURL:   u.AvatarURL,
	}
}

type RegisterRequest struct {
	Username    string `json:"username" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
