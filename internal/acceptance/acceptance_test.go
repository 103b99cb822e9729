package acceptance

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperror"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/testutil"
)

func TestPlan(t *testing.T) {
	q := &models.Question{ID: 1, UserID: 10}
	a := &models.Answer{ID: 5, QuestionID: 1, UserID: 20}

	t.Run("first acceptance pays the author", func(t *testing.T) {
		got := Plan(q, a, nil)
		assert.Equal(t, Transition{QuestionID: 1, AnswerID: 5, RewardUserID: 20, Reward: 15}, got)
	})

	t.Run("switching unaccepts the previous answer", func(t *testing.T) {
		got := Plan(q, a, []int{3})
		assert.Equal(t, []int{3}, got.Unaccept)
		assert.Equal(t, 15, got.Reward)
	})

	t.Run("repairs several accepted answers", func(t *testing.T) {
		got := Plan(q, a, []int{2, 3, 5})
		assert.Equal(t, []int{2, 3}, got.Unaccept)
		assert.Zero(t, got.Reward)
	})

	t.Run("re-accepting pays nothing", func(t *testing.T) {
		got := Plan(q, a, []int{5})
		assert.Empty(t, got.Unaccept)
		assert.Zero(t, got.Reward)
	})

	t.Run("self acceptance pays nothing", func(t *testing.T) {
		own := &models.Answer{ID: 6, QuestionID: 1, UserID: 10}
		got := Plan(q, own, nil)
		assert.Zero(t, got.Reward)
		assert.Zero(t, got.RewardUserID)
	})
}

func TestAcceptAnswerScenario(t *testing.T) {
	svc := testutil.NewDatabase(t)
	db := svc.GetDB()
	ctx := context.Background()
	s := NewService(svc.Store(), zerolog.Nop())

	a := testutil.CreateUser(t, db, "alice")
	b := testutil.CreateUser(t, db, "bob")
	c := testutil.CreateUser(t, db, "carol")
	q := testutil.CreateQuestion(t, db, a.ID)
	r1 := testutil.CreateAnswer(t, db, q.ID, b.ID)
	r2 := testutil.CreateAnswer(t, db, q.ID, c.ID)

	require.NoError(t, s.AcceptAnswer(ctx, r1.ID))

	assert.True(t, testutil.ReloadAnswer(t, db, r1.ID).IsAccepted)
	assert.False(t, testutil.ReloadAnswer(t, db, r2.ID).IsAccepted)
	assert.True(t, testutil.ReloadQuestion(t, db, q.ID).IsAnswered)
	assert.Equal(t, 15, testutil.Reputation(t, db, b.ID))

	require.NoError(t, s.AcceptAnswer(ctx, r2.ID))

	assert.False(t, testutil.ReloadAnswer(t, db, r1.ID).IsAccepted)
	assert.True(t, testutil.ReloadAnswer(t, db, r2.ID).IsAccepted)
	assert.True(t, testutil.ReloadQuestion(t, db, q.ID).IsAnswered)
	assert.Equal(t, 15, testutil.Reputation(t, db, c.ID))
	assert.Equal(t, 15, testutil.Reputation(t, db, b.ID), "earlier reward is history, not reverted")
	assert.Equal(t, 0, testutil.Reputation(t, db, a.ID))
}

func TestAcceptAnswerTwiceIsNoop(t *testing.T) {
	svc := testutil.NewDatabase(t)
	db := svc.GetDB()
	ctx := context.Background()
	s := NewService(svc.Store(), zerolog.Nop())

	owner := testutil.CreateUser(t, db, "alice")
	author := testutil.CreateUser(t, db, "bob")
	q := testutil.CreateQuestion(t, db, owner.ID)
	r := testutil.CreateAnswer(t, db, q.ID, author.ID)

	require.NoError(t, s.AcceptAnswer(ctx, r.ID))
	require.NoError(t, s.AcceptAnswer(ctx, r.ID))

	assert.True(t, testutil.ReloadAnswer(t, db, r.ID).IsAccepted)
	assert.Equal(t, 15, testutil.Reputation(t, db, author.ID))
}

func TestAcceptOwnAnswer(t *testing.T) {
	svc := testutil.NewDatabase(t)
	db := svc.GetDB()
	s := NewService(svc.Store(), zerolog.Nop())

	owner := testutil.CreateUser(t, db, "alice")
	q := testutil.CreateQuestion(t, db, owner.ID)
	r := testutil.CreateAnswer(t, db, q.ID, owner.ID)

	require.NoError(t, s.AcceptAnswer(context.Background(), r.ID))

	assert.True(t, testutil.ReloadAnswer(t, db, r.ID).IsAccepted)
	assert.True(t, testutil.ReloadQuestion(t, db, q.ID).IsAnswered)
	assert.Equal(t, 0, testutil.Reputation(t, db, owner.ID))
}

func TestAcceptAnswerRepairsInconsistentState(t *testing.T) {
	svc := testutil.NewDatabase(t)
	db := svc.GetDB()
	s := NewService(svc.Store(), zerolog.Nop())

	owner := testutil.CreateUser(t, db, "alice")
	author := testutil.CreateUser(t, db, "bob")
	q := testutil.CreateQuestion(t, db, owner.ID)
	r1 := testutil.CreateAnswer(t, db, q.ID, author.ID)
	r2 := testutil.CreateAnswer(t, db, q.ID, author.ID)
	r3 := testutil.CreateAnswer(t, db, q.ID, author.ID)

	// two accepted answers written behind the engine's back
	require.NoError(t, db.Model(&models.Answer{}).Where("id IN ?", []int{r1.ID, r2.ID}).Update("is_accepted", true).Error)

	require.NoError(t, s.AcceptAnswer(context.Background(), r3.ID))

	var accepted []int
	require.NoError(t, db.Model(&models.Answer{}).Where("question_id = ? AND is_accepted = ?", q.ID, true).Pluck("id", &accepted).Error)
	assert.Equal(t, []int{r3.ID}, accepted)
}

func TestAcceptAnswerNotFound(t *testing.T) {
	svc := testutil.NewDatabase(t)
	db := svc.GetDB()
	s := NewService(svc.Store(), zerolog.Nop())

	err := s.AcceptAnswer(context.Background(), 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	// answer whose question row is gone
	owner := testutil.CreateUser(t, db, "alice")
	q := testutil.CreateQuestion(t, db, owner.ID)
	r := testutil.CreateAnswer(t, db, q.ID, owner.ID)
	require.NoError(t, db.Delete(&models.Question{}, q.ID).Error)

	err = s.AcceptAnswer(context.Background(), r.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestAcceptAnswerIsAtomic(t *testing.T) {
	for _, failOn := range []string{"SetAnswered", "AddReputation"} {
		t.Run(failOn, func(t *testing.T) {
			svc := testutil.NewDatabase(t)
			db := svc.GetDB()
			ctx := context.Background()

			owner := testutil.CreateUser(t, db, "alice")
			author := testutil.CreateUser(t, db, "bob")
			q := testutil.CreateQuestion(t, db, owner.ID)
			r1 := testutil.CreateAnswer(t, db, q.ID, author.ID)
			r2 := testutil.CreateAnswer(t, db, q.ID, author.ID)

			require.NoError(t, NewService(svc.Store(), zerolog.Nop()).AcceptAnswer(ctx, r1.ID))

			failing := NewService(testutil.FailingStore{Store: svc.Store(), FailOn: failOn}, zerolog.Nop())
			err := failing.AcceptAnswer(ctx, r2.ID)
			require.ErrorIs(t, err, testutil.ErrInjected)
			assert.ErrorIs(t, err, apperror.ErrInternal)

			assert.True(t, testutil.ReloadAnswer(t, db, r1.ID).IsAccepted)
			assert.False(t, testutil.ReloadAnswer(t, db, r2.ID).IsAccepted)
			assert.Equal(t, 15, testutil.Reputation(t, db, author.ID))
		})
	}
}
