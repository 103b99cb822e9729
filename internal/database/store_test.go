package database_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperror"
	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
	"github.com/emilythestrangee/qa-forum/backend/internal/testutil"
)

func TestIsConflict(t *testing.T) {
	assert.True(t, database.IsConflict(&pgconn.PgError{Code: "40001"}))
	assert.True(t, database.IsConflict(&pgconn.PgError{Code: "40P01"}))
	assert.True(t, database.IsConflict(&pgconn.PgError{Code: "23505"}))
	assert.False(t, database.IsConflict(&pgconn.PgError{Code: "23503"}))
	assert.False(t, database.IsConflict(testutil.ErrInjected))
}

func TestLookupsReturnNilWhenMissing(t *testing.T) {
	store := testutil.NewDatabase(t).Store()
	ctx := context.Background()

	q, err := store.FindQuestion(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, q)

	v, err := store.FindVote(ctx, 1, 42, models.KindAnswer)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCountVotes(t *testing.T) {
	svc := testutil.NewDatabase(t)
	db := svc.GetDB()
	ctx := context.Background()

	owner := testutil.CreateUser(t, db, "alice")
	q := testutil.CreateQuestion(t, db, owner.ID)

	count, err := svc.Store().CountVotes(ctx, q.ID, models.KindQuestion)
	require.NoError(t, err)
	assert.Equal(t, models.VoteCount{}, count)

	for i, dir := range []models.Direction{models.Up, models.Up, models.Down} {
		voter := testutil.CreateUser(t, db, "voter"+string(rune('a'+i)))
		require.NoError(t, db.Create(&models.Vote{
			UserID: voter.ID, TargetID: q.ID, TargetKind: models.KindQuestion, Direction: dir,
		}).Error)
	}
	// same id, other table
	require.NoError(t, db.Create(&models.Vote{
		UserID: owner.ID, TargetID: q.ID, TargetKind: models.KindAnswer, Direction: models.Down,
	}).Error)

	count, err = svc.Store().CountVotes(ctx, q.ID, models.KindQuestion)
	require.NoError(t, err)
	assert.Equal(t, models.VoteCount{Upvotes: 2, Downvotes: 1, Total: 1}, count)
}

func TestDuplicateVoteIsConflict(t *testing.T) {
	svc := testutil.NewDatabase(t)
	db := svc.GetDB()
	voter := testutil.CreateUser(t, db, "dave")

	insert := func() error {
		return svc.Store().InTx(context.Background(), func(tx database.Tx) error {
			return tx.CreateVote(context.Background(), &models.Vote{
				UserID: voter.ID, TargetID: 7, TargetKind: models.KindAnswer, Direction: models.Up,
			})
		})
	}
	require.NoError(t, insert())
	err := insert()
	require.Error(t, err)
	assert.Equal(t, apperror.ErrConflict, apperror.KindOf(err))
}

func TestAddReputationMissingUser(t *testing.T) {
	store := testutil.NewDatabase(t).Store()

	err := store.InTx(context.Background(), func(tx database.Tx) error {
		return tx.AddReputation(context.Background(), 999, 10)
	})
	assert.Equal(t, apperror.ErrNotFound, apperror.KindOf(err))
}

func TestInTxRollsBack(t *testing.T) {
	svc := testutil.NewDatabase(t)
	db := svc.GetDB()
	u := testutil.CreateUser(t, db, "bob")

	err := svc.Store().InTx(context.Background(), func(tx database.Tx) error {
		require.NoError(t, tx.AddReputation(context.Background(), u.ID, 15))
		return testutil.ErrInjected
	})
	assert.ErrorIs(t, err, testutil.ErrInjected)
	assert.Equal(t, apperror.ErrInternal, apperror.KindOf(err))
	assert.Equal(t, 0, testutil.Reputation(t, db, u.ID))
}

func TestHealth(t *testing.T) {
	stats := testutil.NewDatabase(t).Health(context.Background())
	assert.Equal(t, "up", stats["status"])
}
