// Package reputation owns the arithmetic of a user's reputation score.
//
// A vote is worth a fixed amount per target kind and direction. The delta for
// a transition is the value of the new vote minus the value of the old one,
// so any chain of transitions nets out to the value of the final vote.
package reputation

import (
	"context"

	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

const (
	QuestionUpvote = 5
	AnswerUpvote   = 10
	Downvote       = -2

	// AcceptedAnswer is awarded to the author of an accepted answer
	AcceptedAnswer = 15
)

// VoteValue is what a standing vote contributes to the target owner's score.
// An empty direction means "no vote".
func VoteValue(kind models.TargetKind, dir models.Direction) int {
	switch dir {
	case models.Up:
		if kind == models.KindAnswer {
			return AnswerUpvote
		}
		return QuestionUpvote
	case models.Down:
		return Downvote
	}
	return 0
}

// VoteDelta is the change to apply when a vote goes from prev to next
func VoteDelta(kind models.TargetKind, prev, next models.Direction) int {
	return VoteValue(kind, next) - VoteValue(kind, prev)
}

// Apply adds delta to the user's account inside tx. A zero delta is a no-op.
func Apply(ctx context.Context, tx database.Tx, userID, delta int) error {
	if delta == 0 {
		return nil
	}
	return tx.AddReputation(ctx, userID, delta)
}
