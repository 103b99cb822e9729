package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

type QuestionHandler struct {
	db     *gorm.DB
	ledger *voting.Ledger
}

func NewQuestionHandler(db *gorm.DB, ledger *voting.Ledger) *QuestionHandler {
	return &QuestionHandler{db: db, ledger: ledger}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func tagsByName(db *gorm.DB) *gorm.DB {
	return db.Order("tags.name")
}

func (h *QuestionHandler) toResponse(c *gin.Context, q models.Question) (models.QuestionResponse, error) {
	var answerCount int64
	err := h.db.WithContext(c.Request.Context()).
		Model(&models.Answer{}).
		Where("question_id = ?", q.ID).
		Count(&answerCount).Error
	if err != nil {
		return models.QuestionResponse{}, err
	}
	votes, err := h.ledger.GetVoteCount(c.Request.Context(), q.ID, models.KindQuestion)
	if err != nil {
		return models.QuestionResponse{}, err
	}

	tags := make([]string, 0, len(q.Tags))
	for _, t := range q.Tags {
		tags = append(tags, t.Name)
	}

	return models.QuestionResponse{
		ID:          q.ID,
		Title:       q.Title,
		Content:     q.Content,
		UserID:      q.UserID,
		ViewCount:   q.ViewCount,
		IsClosed:    q.IsClosed,
		IsAnswered:  q.IsAnswered,
		Tags:        tags,
		Author:      q.User.Brief(),
		AnswerCount: int(answerCount),
		VoteCount:   votes.Total,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}, nil
}

// ListQuestions returns questions filtered by search text and tag.
// sort is newest (default), oldest or most_viewed.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	db := h.db.WithContext(c.Request.Context())
	query := db.Preload("User").Preload("Tags", tagsByName)

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		query = query.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content) LIKE ? ESCAPE '\')`, pattern, pattern)
	}

	if tag := strings.ToLower(strings.TrimSpace(c.Query("tag"))); tag != "" {
		tagged := db.Table("question_tags").
			Select("question_tags.question_id").
			Joins("JOIN tags ON tags.id = question_tags.tag_id").
			Where("tags.name = ?", tag)
		query = query.Where("questions.id IN (?)", tagged)
	}

	switch c.Query("sort") {
	case models.SortOldest:
		query = query.Order("created_at asc, id asc")
	case models.SortMostViewed:
		query = query.Order("view_count desc, created_at desc, id desc")
	default:
		query = query.Order("created_at desc, id desc")
	}

	var questions []models.Question
	if err := query.Find(&questions).Error; err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch questions"})
		return
	}

	responses := make([]models.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		resp, err := h.toResponse(c, q)
		if err != nil {
			respondError(c, err)
			return
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, responses)
}

// CreateQuestion creates a new question with its tags (PROTECTED - requires authentication)
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	authorID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CreateQuestionRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content are required"})
		return
	}
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and content cannot be empty"})
		return
	}
	tagNames, err := models.NormalizeTags(input.Tags)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.db.WithContext(c.Request.Context())
	question := models.Question{
		Title:   strings.TrimSpace(input.Title),
		Content: input.Content,
		UserID:  authorID,
	}

	// Tags are found or created in the same transaction as the question
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, name := range tagNames {
			err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
				Create(&models.Tag{Name: name}).Error
			if err != nil {
				return err
			}
			var tag models.Tag
			if err := tx.Where("name = ?", name).First(&tag).Error; err != nil {
				return err
			}
			question.Tags = append(question.Tags, tag)
		}
		return tx.Create(&question).Error
	})
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create question"})
		return
	}

	var created models.Question
	if err := db.Preload("User").Preload("Tags", tagsByName).First(&created, question.ID).Error; err != nil {
		lookupFailed(c, err, "Question")
		return
	}

	resp, err := h.toResponse(c, created)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetQuestion returns a single question and counts the view
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	questionID, ok := paramID(c, "id")
	if !ok {
		return
	}

	db := h.db.WithContext(c.Request.Context())

	var question models.Question
	if err := db.Preload("User").Preload("Tags", tagsByName).First(&question, questionID).Error; err != nil {
		lookupFailed(c, err, "Question")
		return
	}

	err := db.Model(&models.Question{}).
		Where("id = ?", question.ID).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record view"})
		return
	}
	question.ViewCount++

	resp, err := h.toResponse(c, question)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
