package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/voting"
)

type VoteHandler struct {
	ledger *voting.Ledger
}

func NewVoteHandler(ledger *voting.Ledger) *VoteHandler {
	return &VoteHandler{ledger: ledger}
}

// CastVote records an up or down vote on a question or answer
func (h *VoteHandler) CastVote(c *gin.Context) {
	voterID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.CastVoteRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_id, target_type and vote_type are required"})
		return
	}

	kind, err := models.ParseTargetKind(input.TargetType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dir, err := models.ParseDirection(input.VoteType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vote, err := h.ledger.CastVote(c.Request.Context(), voterID, input.TargetID, kind, dir)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, vote)
}

func targetFromQuery(c *gin.Context) (int, models.TargetKind, bool) {
	targetID, ok := parseID(c.Query("target_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target_id"})
		return 0, "", false
	}
	kind, err := models.ParseTargetKind(c.Query("target_type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, "", false
	}
	return targetID, kind, true
}

// GetVoteCount returns upvotes, downvotes and their difference for a target
func (h *VoteHandler) GetVoteCount(c *gin.Context) {
	targetID, kind, ok := targetFromQuery(c)
	if !ok {
		return
	}

	count, err := h.ledger.GetVoteCount(c.Request.Context(), targetID, kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

// GetMyVote returns the caller's vote on a target, or null
func (h *VoteHandler) GetMyVote(c *gin.Context) {
	voterID, ok := extractUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}
	targetID, kind, ok := targetFromQuery(c)
	if !ok {
		return
	}

	dir, voted, err := h.ledger.GetUserVote(c.Request.Context(), voterID, targetID, kind)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.UserVoteResponse{}
	if voted {
		resp.VoteType = &dir
	}
	c.JSON(http.StatusOK, resp)
}
