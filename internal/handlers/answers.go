package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/acceptance"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

type AnswerHandler struct {
	db     *gorm.DB
	ledger *voting.Ledger
	accept *acceptance.Service
}

func NewAnswerHandler(db *gorm.DB, ledger *voting.Ledger, accept *acceptance.Service) *AnswerHandler {
	return &AnswerHandler{db: db, ledger: ledger, accept: accept}
}

func (h *AnswerHandler) toResponse(c *gin.Context, a models.Answer) (models.AnswerResponse, error) {
	votes, err := h.ledger.GetVoteCount(c.Request.Context(), a.ID, models.KindAnswer)
	if err != nil {
		return models.AnswerResponse{}, err
	}
	return models.AnswerResponse{
		ID:         a.ID,
		QuestionID: a.QuestionID,
		Content:    a.Content,
		UserID:     a.UserID,
		IsAccepted: a.IsAccepted,
		Author:     a.User.Brief(),
		VoteCount:  votes.Total,
		CreatedAt:  a.CreatedAt,
		UpdatedAt:  a.UpdatedAt,
	}, nil
}

// GetAnswers returns all answers for a question, newest first
func (h *AnswerHandler) GetAnswers(c *gin.Context) {
	questionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var answers []models.Answer
	if err := h.db.WithContext(c.Request.Context()).Where("question_id = ?", questionID).Preload("User").Order("created_at desc, id desc").Find(&answers).Error; err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch answers"})
		return
	}

	responses := make([]models.AnswerResponse, 0, len(answers))
	for _, answer := range answers {
		resp, err := h.toResponse(c, answer)
		if err != nil {
			respondError(c, err)
			return
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, responses)
}

// CreateAnswer posts an answer to a question
func (h *AnswerHandler) CreateAnswer(c *gin.Context) {
	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	questionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var input models.CreateAnswerRequest
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Answer content cannot be empty"})
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var question models.Question
	if err := db.First(&question, questionID).Error; err != nil {
		lookupFailed(c, err, "Question")
		return
	}

	answer := models.Answer{
		QuestionID: question.ID,
		UserID:     authorID,
		Content:    input.Content,
	}
	if err := db.Create(&answer).Error; err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create answer"})
		return
	}

	var created models.Answer
	if err := db.Preload("User").First(&created, answer.ID).Error; err != nil {
		lookupFailed(c, err, "Answer")
		return
	}

	resp, err := h.toResponse(c, created)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// AcceptAnswer marks the answer as accepted (PROTECTED - question owner only)
func (h *AnswerHandler) AcceptAnswer(c *gin.Context) {
	userID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	answerID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var answer models.Answer
	if err := db.First(&answer, answerID).Error; err != nil {
		lookupFailed(c, err, "Answer")
		return
	}
	var question models.Question
	if err := db.First(&question, answer.QuestionID).Error; err != nil {
		lookupFailed(c, err, "Question")
		return
	}

	if question.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the question author can accept an answer"})
		return
	}

	if err := h.accept.AcceptAnswer(c.Request.Context(), answerID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer accepted"})
}
