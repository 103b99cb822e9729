package models

import (
	"fmt"
	"time"
)

// Direction is the polarity of a vote
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down:
		return d, nil
	}
	return "", fmt.Errorf("vote type must be %q or %q, got %q", Up, Down, s)
}

// TargetKind says which table a vote's target id points into
type TargetKind string

const (
	KindQuestion TargetKind = "question"
	KindAnswer   TargetKind = "answer"
)

func ParseTargetKind(s string) (TargetKind, error) {
	switch k := TargetKind(s); k {
	case KindQuestion, KindAnswer:
		return k, nil
	}
	return "", fmt.Errorf("target type must be %q or %q, got %q", KindQuestion, KindAnswer, s)
}

// Vote - one row per (voter, target); a changed vote updates the row in place
type Vote struct {
	ID         int        `gorm:"primaryKey" json:"id"`
	UserID     int        `gorm:"not null;uniqueIndex:idx_votes_voter_target,priority:1" json:"user_id"`
	TargetID   int        `gorm:"not null;uniqueIndex:idx_votes_voter_target,priority:2;index:idx_votes_target,priority:1" json:"target_id"`
	TargetKind TargetKind `gorm:"type:varchar(16);not null;uniqueIndex:idx_votes_voter_target,priority:3;index:idx_votes_target,priority:2" json:"target_type"`
	Direction  Direction  `gorm:"type:varchar(8);not null" json:"vote_type"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type CastVoteRequest struct {
	TargetID   int    `json:"target_id" binding:"required,min=1,max=2147483647"`
	TargetType string `json:"target_type" binding:"required"`
	VoteType   string `json:"vote_type" binding:"required"`
}

// VoteCount - Total is Upvotes - Downvotes
type VoteCount struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Total     int `json:"total"`
}

type UserVoteResponse struct {
	VoteType *Direction `json:"vote_type"`
}
