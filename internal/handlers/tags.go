package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

type TagHandler struct {
	db *gorm.DB
}

func NewTagHandler(db *gorm.DB) *TagHandler {
	return &TagHandler{db: db}
}

// ListTags returns every tag with the number of questions using it,
// optionally filtered by a name fragment in q
func (h *TagHandler) ListTags(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).
		Model(&models.Tag{}).
		Select("tags.id, tags.name, tags.description, COUNT(question_tags.question_id) AS question_count").
		Joins("LEFT JOIN question_tags ON question_tags.tag_id = tags.id").
		Group("tags.id, tags.name, tags.description").
		Order("tags.name")

	if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
		query = query.Where(`tags.name LIKE ? ESCAPE '\'`, "%"+likeEscaper.Replace(q)+"%")
	}

	tags := []models.TagResponse{}
	if err := query.Scan(&tags).Error; err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}

	c.JSON(http.StatusOK, tags)
}
