package voting

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperror"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/testutil"
)

type fixture struct {
	db       *gorm.DB
	ledger   *Ledger
	owner    *models.User
	voter    *models.User
	question *models.Question
	answer   *models.Answer
}

func setup(t *testing.T) (*fixture, func(userID int) int) {
	t.Helper()
	svc := testutil.NewDatabase(t)
	db := svc.GetDB()

	f := &fixture{db: db, ledger: NewLedger(svc.Store(), zerolog.Nop())}
	f.owner = testutil.CreateUser(t, db, "alice")
	f.voter = testutil.CreateUser(t, db, "dave")
	answerer := testutil.CreateUser(t, db, "bob")
	f.question = testutil.CreateQuestion(t, db, f.owner.ID)
	f.answer = testutil.CreateAnswer(t, db, f.question.ID, answerer.ID)

	rep := func(userID int) int { return testutil.Reputation(t, db, userID) }
	return f, rep
}

func TestCastVoteUpThenDownOnQuestion(t *testing.T) {
	f, rep := setup(t)
	ctx := context.Background()

	vote, err := f.ledger.CastVote(ctx, f.voter.ID, f.question.ID, models.KindQuestion, models.Up)
	require.NoError(t, err)
	assert.Equal(t, models.Up, vote.Direction)
	assert.Equal(t, 5, rep(f.owner.ID))
	assert.Equal(t, 0, rep(f.voter.ID), "the voter is never credited")

	count, err := f.ledger.GetVoteCount(ctx, f.question.ID, models.KindQuestion)
	require.NoError(t, err)
	assert.Equal(t, models.VoteCount{Upvotes: 1, Downvotes: 0, Total: 1}, count)

	changed, err := f.ledger.CastVote(ctx, f.voter.ID, f.question.ID, models.KindQuestion, models.Down)
	require.NoError(t, err)
	assert.Equal(t, vote.ID, changed.ID, "direction change keeps the same row")
	assert.Equal(t, models.Down, changed.Direction)
	assert.Equal(t, -2, rep(f.owner.ID))

	count, err = f.ledger.GetVoteCount(ctx, f.question.ID, models.KindQuestion)
	require.NoError(t, err)
	assert.Equal(t, models.VoteCount{Upvotes: 0, Downvotes: 1, Total: -1}, count)
}

func TestCastVoteOnAnswer(t *testing.T) {
	f, rep := setup(t)
	ctx := context.Background()
	author := f.answer.UserID

	_, err := f.ledger.CastVote(ctx, f.voter.ID, f.answer.ID, models.KindAnswer, models.Down)
	require.NoError(t, err)
	assert.Equal(t, -2, rep(author))

	_, err = f.ledger.CastVote(ctx, f.voter.ID, f.answer.ID, models.KindAnswer, models.Up)
	require.NoError(t, err)
	assert.Equal(t, 10, rep(author))

	_, err = f.ledger.CastVote(ctx, f.voter.ID, f.answer.ID, models.KindAnswer, models.Down)
	require.NoError(t, err)
	assert.Equal(t, -2, rep(author))

	assert.Equal(t, 0, rep(f.owner.ID), "question owner is untouched by answer votes")
}

func TestCastVoteSameDirectionIsIdempotent(t *testing.T) {
	f, rep := setup(t)
	ctx := context.Background()

	first, err := f.ledger.CastVote(ctx, f.voter.ID, f.question.ID, models.KindQuestion, models.Up)
	require.NoError(t, err)

	second, err := f.ledger.CastVote(ctx, f.voter.ID, f.question.ID, models.KindQuestion, models.Up)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Direction, second.Direction)
	assert.Equal(t, first.UpdatedAt.Unix(), second.UpdatedAt.Unix())
	assert.Equal(t, 5, rep(f.owner.ID))
}

func TestCastVoteKeepsOneRowPerVoter(t *testing.T) {
	f, _ := setup(t)
	ctx := context.Background()

	for _, dir := range []models.Direction{models.Up, models.Down, models.Down, models.Up, models.Up, models.Down} {
		_, err := f.ledger.CastVote(ctx, f.voter.ID, f.answer.ID, models.KindAnswer, dir)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, testutil.CountVoteRows(t, f.db, f.voter.ID, f.answer.ID, models.KindAnswer))

	count, err := f.ledger.GetVoteCount(ctx, f.answer.ID, models.KindAnswer)
	require.NoError(t, err)
	assert.Equal(t, models.VoteCount{Upvotes: 0, Downvotes: 1, Total: -1}, count)
}

func TestCastVoteMissingTarget(t *testing.T) {
	f, _ := setup(t)
	ctx := context.Background()

	_, err := f.ledger.CastVote(ctx, f.voter.ID, 9999, models.KindQuestion, models.Up)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.ledger.CastVote(ctx, f.voter.ID, 9999, models.KindAnswer, models.Up)
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = f.ledger.CastVote(ctx, 9999, f.question.ID, models.KindQuestion, models.Up)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestCastVoteRejectsUnknownEnums(t *testing.T) {
	f, _ := setup(t)
	ctx := context.Background()

	_, err := f.ledger.CastVote(ctx, f.voter.ID, f.question.ID, models.TargetKind("comment"), models.Up)
	assert.ErrorIs(t, err, apperror.ErrInvalid)

	_, err = f.ledger.CastVote(ctx, f.voter.ID, f.question.ID, models.KindQuestion, models.Direction("sideways"))
	assert.ErrorIs(t, err, apperror.ErrInvalid)

	_, err = f.ledger.GetVoteCount(ctx, f.question.ID, models.TargetKind(""))
	assert.ErrorIs(t, err, apperror.ErrInvalid)
}

func TestGetUserVote(t *testing.T) {
	f, _ := setup(t)
	ctx := context.Background()

	_, ok, err := f.ledger.GetUserVote(ctx, f.voter.ID, f.answer.ID, models.KindAnswer)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.ledger.CastVote(ctx, f.voter.ID, f.answer.ID, models.KindAnswer, models.Down)
	require.NoError(t, err)

	dir, ok, err := f.ledger.GetUserVote(ctx, f.voter.ID, f.answer.ID, models.KindAnswer)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.Down, dir)

	// same id, other kind: a different target
	_, ok, err = f.ledger.GetUserVote(ctx, f.voter.ID, f.answer.ID, models.KindQuestion)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetVoteCountEmptyTarget(t *testing.T) {
	f, _ := setup(t)

	count, err := f.ledger.GetVoteCount(context.Background(), 4242, models.KindAnswer)
	require.NoError(t, err)
	assert.Equal(t, models.VoteCount{}, count)
}

func TestCastVoteRollsBackOnReputationFailure(t *testing.T) {
	svc := testutil.NewDatabase(t)
	db := svc.GetDB()
	owner := testutil.CreateUser(t, db, "alice")
	voter := testutil.CreateUser(t, db, "dave")
	q := testutil.CreateQuestion(t, db, owner.ID)

	failing := NewLedger(testutil.FailingStore{Store: svc.Store(), FailOn: "AddReputation"}, zerolog.Nop())
	_, err := failing.CastVote(context.Background(), voter.ID, q.ID, models.KindQuestion, models.Up)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInternal)
	assert.ErrorIs(t, err, testutil.ErrInjected)

	assert.Zero(t, testutil.CountVoteRows(t, db, voter.ID, q.ID, models.KindQuestion), "vote insert must roll back")
	assert.Equal(t, 0, testutil.Reputation(t, db, owner.ID))
}

func TestCastVoteTransitionRollsBack(t *testing.T) {
	svc := testutil.NewDatabase(t)
	db := svc.GetDB()
	owner := testutil.CreateUser(t, db, "alice")
	voter := testutil.CreateUser(t, db, "dave")
	q := testutil.CreateQuestion(t, db, owner.ID)

	ledger := NewLedger(svc.Store(), zerolog.Nop())
	_, err := ledger.CastVote(context.Background(), voter.ID, q.ID, models.KindQuestion, models.Up)
	require.NoError(t, err)

	failing := NewLedger(testutil.FailingStore{Store: svc.Store(), FailOn: "AddReputation"}, zerolog.Nop())
	_, err = failing.CastVote(context.Background(), voter.ID, q.ID, models.KindQuestion, models.Down)
	require.Error(t, err)

	dir, ok, err := ledger.GetUserVote(context.Background(), voter.ID, q.ID, models.KindQuestion)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.Up, dir, "direction change must roll back")
	assert.Equal(t, 5, testutil.Reputation(t, db, owner.ID))
}
