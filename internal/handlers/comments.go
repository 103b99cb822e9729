package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

type CommentHandler struct {
	db *gorm.DB
}

func NewCommentHandler(db *gorm.DB) *CommentHandler {
	return &CommentHandler{db: db}
}

// targetExists reports whether the question or answer a comment points at is there
func targetExists(db *gorm.DB, targetID int, kind models.TargetKind) (bool, error) {
	var n int64
	var err error
	switch kind {
	case models.KindQuestion:
		err = db.Model(&models.Question{}).Where("id = ?", targetID).Count(&n).Error
	case models.KindAnswer:
		err = db.Model(&models.Answer{}).Where("id = ?", targetID).Count(&n).Error
	}
	return n > 0, err
}

// GetComments returns the comments on a question or answer, newest first
func (h *CommentHandler) GetComments(c *gin.Context) {
	targetID, kind, ok := targetFromQuery(c)
	if !ok {
		return
	}

	var comments []models.Comment
	err := h.db.WithContext(c.Request.Context()).
		Where("target_id = ? AND target_kind = ?", targetID, string(kind)).
		Preload("User").
		Order("created_at desc, id desc").
		Find(&comments).Error
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	responses := make([]models.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, comment.Response())
	}

	c.JSON(http.StatusOK, responses)
}

// CreateComment adds a comment to a question or answer
func (h *CommentHandler) CreateComment(c *gin.Context) {
	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_id, target_type and non-empty content are required"})
		return
	}
	kind, err := models.ParseTargetKind(input.TargetType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.db.WithContext(c.Request.Context())

	exists, err := targetExists(db, input.TargetID, kind)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load comment target"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "Comment target not found"})
		return
	}

	comment := models.Comment{
		UserID:     authorID,
		TargetID:   input.TargetID,
		TargetKind: kind,
		Content:    input.Content,
	}
	if err := db.Create(&comment).Error; err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}

	var created models.Comment
	if err := db.Preload("User").First(&created, comment.ID).Error; err != nil {
		lookupFailed(c, err, "Comment")
		return
	}
	c.JSON(http.StatusCreated, created.Response())
}

// ownComment loads the comment in :id and checks the caller wrote it.
// It has already answered the request when it returns false.
func (h *CommentHandler) ownComment(c *gin.Context, db *gorm.DB, verb string) (models.Comment, bool) {
	var comment models.Comment

	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return comment, false
	}
	commentID, ok := paramID(c, "id")
	if !ok {
		return comment, false
	}

	if err := db.First(&comment, commentID).Error; err != nil {
		lookupFailed(c, err, "Comment")
		return comment, false
	}
	if comment.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only " + verb + " your own comments"})
		return comment, false
	}
	return comment, true
}

// UpdateComment edits a comment (owner only)
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())

	comment, ok := h.ownComment(c, db, "edit")
	if !ok {
		return
	}

	var input models.UpdateCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Comment content cannot be empty"})
		return
	}

	if err := db.Model(&comment).Update("content", input.Content).Error; err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update comment"})
		return
	}

	var updated models.Comment
	if err := db.Preload("User").First(&updated, comment.ID).Error; err != nil {
		lookupFailed(c, err, "Comment")
		return
	}
	c.JSON(http.StatusOK, updated.Response())
}

// DeleteComment removes a comment (owner only)
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())

	comment, ok := h.ownComment(c, db, "delete")
	if !ok {
		return
	}

	if err := db.Delete(&comment).Error; err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete comment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
