package models

import "time"

// Comment - a short note on a question or an answer. Comments carry no votes
// and never touch reputation.
type Comment struct {
	ID         int        `gorm:"primaryKey" json:"id"`
	UserID     int        `gorm:"not null;index" json:"user_id"`
	User       User       `gorm:"foreignKey:UserID" json:"-"`
	TargetID   int        `gorm:"not null;index:idx_comments_target,priority:1" json:"target_id"`
	TargetKind TargetKind `gorm:"type:varchar(16);not null;index:idx_comments_target,priority:2" json:"target_type"`
	Content    string     `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CreateCommentRequest struct {
	TargetID   int    `json:"target_id" binding:"required,min=1,max=2147483647"`
	TargetType string `json:"target_type" binding:"required"`
	Content    string `json:"content" binding:"required"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type CommentResponse struct {
	ID         int        `json:"id"`
	Content    string     `json:"content"`
	UserID     int        `json:"user_id"`
	TargetID   int        `json:"target_id"`
	TargetType TargetKind `json:"target_type"`
	Author     UserBrief  `json:"author"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (c Comment) Response() CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		Content:    c.Content,
		UserID:     c.UserID,
		TargetID:   c.TargetID,
		TargetType: c.TargetKind,
		Author:     c.User.Brief(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
