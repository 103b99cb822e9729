package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

type UserHandler struct {
	db *gorm.DB
}

func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{db: db}
}

// GetUserProfile returns a user's profile with reputation and activity counts
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	userID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		lookupFailed(c, err, "User")
		return
	}

	var questionCount, answerCount, acceptedCount int64
	for _, err := range []error{
		db.Model(&models.Question{}).Where("user_id = ?", userID).Count(&questionCount).Error,
		db.Model(&models.Answer{}).Where("user_id = ?", userID).Count(&answerCount).Error,
		db.Model(&models.Answer{}).Where("user_id = ? AND is_accepted = ?", userID, true).Count(&acceptedCount).Error,
	} {
		if err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load user activity"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user":           user.Brief(),
		"bio":            user.Bio,
		"question_count": questionCount,
		"answer_count":   answerCount,
		"accepted_count": acceptedCount,
		"created_at":     user.CreatedAt,
	})
}
