package models

import (
	"fmt"
	"strings"
)

const MaxTagLength = 50

type Tag struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(50);uniqueIndex;not null" json:"name"`
	Description string `gorm:"not null;default:''" json:"description"`
}

type TagResponse struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	QuestionCount int    `json:"question_count"`
}

// NormalizeTags lowercases and trims names, dropping blanks and repeats.
// Order of first appearance is kept.
func NormalizeTags(names []string) ([]string, error) {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		if len(n) > MaxTagLength {
			return nil, fmt.Errorf("tag %q is longer than %d characters", n, MaxTagLength)
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}
