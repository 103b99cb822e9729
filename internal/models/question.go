package models

import "time"

type Question struct {
	ID         int       `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"not null" json:"title"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	UserID     int       `gorm:"not null;index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"-"`
	ViewCount  int       `gorm:"not null;default:0" json:"view_count"`
	IsClosed   bool      `gorm:"not null;default:false" json:"is_closed"`
	IsAnswered bool      `gorm:"not null;default:false" json:"is_answered"`
	Tags       []Tag     `gorm:"many2many:question_tags;" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateQuestionRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}

// Sort orders for the question list; anything else falls back to SortNewest
const (
	SortNewest     = "newest"
	SortOldest     = "oldest"
	SortMostViewed = "most_viewed"
)

type QuestionResponse struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	UserID      int       `json:"user_id"`
	ViewCount   int       `json:"view_count"`
	IsClosed    bool      `json:"is_closed"`
	IsAnswered  bool      `json:"is_answered"`
	Tags        []string  `json:"tags"`
	Author      UserBrief `json:"author"`
	AnswerCount int       `json:"answer_count"`
	VoteCount   int       `json:"vote_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
