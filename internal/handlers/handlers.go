package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/acceptance"
	"github.com/emilythestrangee/qa-forum/backend/internal/apperror"
	"github.com/emilythestrangee/qa-forum/backend/internal/config"
	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/middleware"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

// Handler combines all handler types
type Handler struct {
	Auth     *AuthHandler
	User     *UserHandler
	Question *QuestionHandler
	Answer   *AnswerHandler
	Vote     *VoteHandler
	Tag      *TagHandler
	Comment  *CommentHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db database.Service, cfg *config.Config, log zerolog.Logger) *Handler {
	gormDB := db.GetDB()
	ledger := voting.NewLedger(db.Store(), log)
	accept := acceptance.NewService(db.Store(), log)

	return &Handler{
		Auth:     NewAuthHandler(gormDB, cfg.JWTSecret, cfg.TokenTTL),
		User:     NewUserHandler(gormDB),
		Question: NewQuestionHandler(gormDB, ledger),
		Answer:   NewAnswerHandler(gormDB, ledger, accept),
		Vote:     NewVoteHandler(ledger),
		Tag:      NewTagHandler(gormDB),
		Comment:  NewCommentHandler(gormDB),
	}
}

func extractUserID(c *gin.Context) (int, bool) {
	raw, exists := c.Get(middleware.UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := raw.(int)
	return id, ok
}

// parseID accepts positive ids that fit the INTEGER key columns
func parseID(s string) (int, bool) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return int(id), true
}

func paramID(c *gin.Context, name string) (int, bool) {
	id, ok := parseID(c.Param(name))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// lookupFailed answers 404 for a missing row and 500 for anything else
func lookupFailed(c *gin.Context, err error, what string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load " + strings.ToLower(what)})
}

// respondError writes err with the status matching its kind
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch apperror.KindOf(err) {
	case apperror.ErrNotFound:
		status = http.StatusNotFound
	case apperror.ErrInvalid:
		status = http.StatusBadRequest
	case apperror.ErrConflict:
		status = http.StatusConflict
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": apperror.Message(err)})
}
