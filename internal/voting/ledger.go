package voting

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperror"
	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/reputation"
)

// Ledger records at most one vote per (voter, target) and moves the target
// owner's reputation by the delta of each vote transition.
type Ledger struct {
	store database.Store
	log   zerolog.Logger
}

func NewLedger(store database.Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		store: store,
		log:   log.With().Str("component", "voting").Logger(),
	}
}

// CastVote creates the voter's vote on the target or changes its direction.
// Casting the direction the vote already has returns it unchanged.
func (l *Ledger) CastVote(ctx context.Context, voterID, targetID int, kind models.TargetKind, dir models.Direction) (*models.Vote, error) {
	const op = "CastVote"
	if err := validate(op, kind); err != nil {
		return nil, err
	}
	if _, err := models.ParseDirection(string(dir)); err != nil {
		return nil, apperror.Invalid(op, err.Error())
	}

	var (
		vote    *models.Vote
		ownerID int
		delta   int
	)
	err := l.store.InTx(ctx, func(tx database.Tx) error {
		var err error
		ownerID, err = lockTarget(ctx, tx, targetID, kind)
		if err != nil {
			return err
		}

		voter, err := tx.FindUser(ctx, voterID)
		if err != nil {
			return err
		}
		if voter == nil {
			return apperror.NotFound(op, fmt.Sprintf("user %d not found", voterID))
		}

		existing, err := tx.FindVote(ctx, voterID, targetID, kind)
		if err != nil {
			return err
		}

		var prev models.Direction
		if existing != nil {
			prev = existing.Direction
		}
		if prev == dir {
			vote = existing
			return nil
		}

		if existing == nil {
			vote = &models.Vote{
				UserID:     voterID,
				TargetID:   targetID,
				TargetKind: kind,
				Direction:  dir,
			}
			err = tx.CreateVote(ctx, vote)
		} else {
			vote = existing
			err = tx.UpdateVoteDirection(ctx, vote, dir)
		}
		if err != nil {
			return err
		}

		delta = reputation.VoteDelta(kind, prev, dir)
		return reputation.Apply(ctx, tx, ownerID, delta)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			l.log.Warn().Err(err).Int("voter_id", voterID).Int("target_id", targetID).Msg("vote conflict")
		}
		return nil, err
	}

	if delta != 0 {
		l.log.Debug().
			Int("voter_id", voterID).
			Int("target_id", targetID).
			Str("target_type", string(kind)).
			Str("vote_type", string(dir)).
			Int("owner_id", ownerID).
			Int("delta", delta).
			Msg("vote recorded")
	}
	return vote, nil
}

// GetVoteCount tallies the votes on a target
func (l *Ledger) GetVoteCount(ctx context.Context, targetID int, kind models.TargetKind) (models.VoteCount, error) {
	if err := validate("GetVoteCount", kind); err != nil {
		return models.VoteCount{}, err
	}
	return l.store.CountVotes(ctx, targetID, kind)
}

// GetUserVote returns the direction of the voter's vote; ok is false when
// the voter has not voted on the target.
func (l *Ledger) GetUserVote(ctx context.Context, voterID, targetID int, kind models.TargetKind) (dir models.Direction, ok bool, err error) {
	if err := validate("GetUserVote", kind); err != nil {
		return "", false, err
	}
	v, err := l.store.FindVote(ctx, voterID, targetID, kind)
	if err != nil || v == nil {
		return "", false, err
	}
	return v.Direction, true, nil
}

func validate(op string, kind models.TargetKind) error {
	if _, err := models.ParseTargetKind(string(kind)); err != nil {
		return apperror.Invalid(op, err.Error())
	}
	return nil
}

// lockTarget locks the voted-on row for the rest of the transaction and
// returns its author. Concurrent casts on the same target queue up here.
func lockTarget(ctx context.Context, tx database.Tx, targetID int, kind models.TargetKind) (int, error) {
	switch kind {
	case models.KindQuestion:
		q, err := tx.LockQuestion(ctx, targetID)
		if err != nil {
			return 0, err
		}
		if q == nil {
			return 0, apperror.NotFound("CastVote", fmt.Sprintf("question %d not found", targetID))
		}
		return q.UserID, nil
	default:
		a, err := tx.LockAnswer(ctx, targetID)
		if err != nil {
			return 0, err
		}
		if a == nil {
			return 0, apperror.NotFound("CastVote", fmt.Sprintf("answer %d not found", targetID))
		}
		return a.UserID, nil
	}
}
