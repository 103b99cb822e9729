package models

import "time"

type Answer struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	QuestionID int       `gorm:"not null;index" json:"question_id"`
	UserID     int       `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	IsAccepted bool      `gorm:"not null;default:false" json:"is_accepted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateAnswerRequest struct {
	Content string `json:"content" binding:"required"`
}

type AnswerResponse struct {
	ID         int       `json:"id"`
	QuestionID int       `json:"question_id"`
	Content    string    `json:"content"`
	UserID     int       `json:"user_id"`
	IsAccepted bool      `json:"is_accepted"`
	Author     UserBrief `json:"author"`
	VoteCount  int       `json:"vote_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
