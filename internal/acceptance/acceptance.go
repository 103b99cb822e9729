// Package acceptance marks an answer as the accepted one for its question.
//
// Accepting touches three records: the answer flags of the question's
// answers, the question's answered flag, and the reputation of the answer
// author. Plan computes all of it from the locked current state and Apply
// writes it in the same transaction.
package acceptance

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

// Transition is the full effect of one acceptance
type Transition struct {
	QuestionID int
	AnswerID   int

	// Unaccept lists the question's other answers that are currently accepted
	Unaccept []int

	// RewardUserID gets Reward; zero Reward means nobody is paid
	RewardUserID int
	Reward       int
}

// Plan decides what accepting answer a of question q does, given the ids of
// the question's answers that are accepted right now. The answer author is
// paid unless they asked the question or their answer is already accepted.
func Plan(q *models.Question, a *models.Answer, acceptedIDs []int) Transition {
	t := Transition{QuestionID: q.ID, AnswerID: a.ID}

	alreadyAccepted := false
	for _, id := range acceptedIDs {
		if id == a.ID {
			alreadyAccepted = true
			continue
		}
		t.Unaccept = append(t.Unaccept, id)
	}

	if !alreadyAccepted && a.UserID != q.UserID {
		t.RewardUserID = a.UserID
		t.Reward = reputation.AcceptedAnswer
	}
	return t
}

// Apply writes t. Clearing comes first so there is never a moment with two
// accepted answers.
func Apply(ctx context.Context, tx database.Tx, t Transition) error {
	if err := tx.SetAccepted(ctx, t.Unaccept, false); err != nil {
		return err
	}
	if err := tx.SetAccepted(ctx, []int{t.AnswerID}, true); err != nil {
		return err
	}
	if err := tx.SetAnswered(ctx, t.QuestionID, true); err != nil {
		return err
	}
	return reputation.Apply(ctx, tx, t.RewardUserID, t.Reward)
}

type Service struct {
	store database.Store
	log   zerolog.Logger
}

func NewService(store database.Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log.With().Str("component", "acceptance").Logger(),
	}
}

// AcceptAnswer makes answerID the only accepted answer of its question.
// Whether the caller may do so is checked by the caller.
func (s *Service) AcceptAnswer(ctx context.Context, answerID int) error {
	const op = "AcceptAnswer"

	// Unlocked read to learn the question; locks are then taken question
	// first, answers second, users last, the same order voting uses.
	a, err := s.store.FindAnswer(ctx, answerID)
	if err != nil {
		return err
	}
	if a == nil {
		return apperror.NotFound(op, fmt.Sprintf("answer %d not found", answerID))
	}

	var plan Transition
	err = s.store.InTx(ctx, func(tx database.Tx) error {
		q, err := tx.LockQuestion(ctx, a.QuestionID)
		if err != nil {
			return err
		}
		if q == nil {
			return apperror.NotFound(op, fmt.Sprintf("question %d not found", a.QuestionID))
		}

		locked, err := tx.LockAnswer(ctx, answerID)
		if err != nil {
			return err
		}
		if locked == nil {
			return apperror.NotFound(op, fmt.Sprintf("answer %d not found", answerID))
		}
		if locked.QuestionID != q.ID {
			return apperror.Conflict(op, errors.New("answer moved to another question"))
		}

		accepted, err := tx.AcceptedAnswerIDs(ctx, q.ID)
		if err != nil {
			return err
		}

		plan = Plan(q, locked, accepted)
		if err := Apply(ctx, tx, plan); err != nil {
			return err
		}
		return verify(ctx, tx, plan)
	})
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.log.Warn().Err(err).Int("answer_id", answerID).Msg("accept conflict")
		}
		return err
	}

	s.log.Debug().
		Int("answer_id", plan.AnswerID).
		Int("question_id", plan.QuestionID).
		Ints("unaccepted", plan.Unaccept).
		Int("reward_user_id", plan.RewardUserID).
		Int("reward", plan.Reward).
		Msg("answer accepted")
	return nil
}

// verify re-reads the accepted set before commit; anything other than
// exactly the target answer rolls the transaction back.
func verify(ctx context.Context, tx database.Tx, t Transition) error {
	ids, err := tx.AcceptedAnswerIDs(ctx, t.QuestionID)
	if err != nil {
		return err
	}
	if len(ids) != 1 || ids[0] != t.AnswerID {
		return apperror.Conflict("AcceptAnswer",
			fmt.Errorf("question %d has accepted answers %v after accepting %d", t.QuestionID, ids, t.AnswerID))
	}
	return nil
}
