package database

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperror"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

// Reader is the read side of the content store. Lookups return (nil, nil)
// when the row does not exist; callers decide whether that is an error.
type Reader interface {
	FindQuestion(ctx context.Context, id int) (*models.Question, error)
	FindAnswer(ctx context.Context, id int) (*models.Answer, error)
	FindUser(ctx context.Context, id int) (*models.User, error)
	FindVote(ctx context.Context, voterID, targetID int, kind models.TargetKind) (*models.Vote, error)
	CountVotes(ctx context.Context, targetID int, kind models.TargetKind) (models.VoteCount, error)
}

// Tx is a unit of work. Every write goes through a Tx; nothing it does is
// visible to other transactions until InTx commits.
type Tx interface {
	Reader

	// LockQuestion and LockAnswer read the row with FOR UPDATE
	LockQuestion(ctx context.Context, id int) (*models.Question, error)
	LockAnswer(ctx context.Context, id int) (*models.Answer, error)

	AcceptedAnswerIDs(ctx context.Context, questionID int) ([]int, error)
	CreateVote(ctx context.Context, vote *models.Vote) error
	UpdateVoteDirection(ctx context.Context, vote *models.Vote, dir models.Direction) error
	AddReputation(ctx context.Context, userID, delta int) error
	SetAccepted(ctx context.Context, answerIDs []int, accepted bool) error
	SetAnswered(ctx context.Context, questionID int, answered bool) error
}

// Store is the content store plus the transaction coordinator
type Store interface {
	Reader

	// InTx runs fn in one transaction: commit if fn returns nil, roll back
	// otherwise. Store conflicts come back as apperror.ErrConflict.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the gorm-backed Store for db
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		return fn(&gormTx{gormStore{db: db}})
	})
	return classify("transaction", err)
}

func first[T any](db *gorm.DB, conds ...interface{}) (*T, error) {
	var row T
	err := db.First(&row, conds...).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *gormStore) FindQuestion(ctx context.Context, id int) (*models.Question, error) {
	q, err := first[models.Question](s.db.WithContext(ctx), id)
	return q, classify("FindQuestion", err)
}

func (s *gormStore) FindAnswer(ctx context.Context, id int) (*models.Answer, error) {
	a, err := first[models.Answer](s.db.WithContext(ctx), id)
	return a, classify("FindAnswer", err)
}

func (s *gormStore) FindUser(ctx context.Context, id int) (*models.User, error) {
	u, err := first[models.User](s.db.WithContext(ctx), id)
	return u, classify("FindUser", err)
}

func (s *gormStore) FindVote(ctx context.Context, voterID, targetID int, kind models.TargetKind) (*models.Vote, error) {
	db := s.db.WithContext(ctx).
		Where("user_id = ? AND target_id = ? AND target_kind = ?", voterID, targetID, string(kind))
	v, err := first[models.Vote](db)
	return v, classify("FindVote", err)
}

func (s *gormStore) CountVotes(ctx context.Context, targetID int, kind models.TargetKind) (models.VoteCount, error) {
	query, args, err := psql.
		Select(
			"COALESCE(SUM(CASE WHEN direction = 'up' THEN 1 ELSE 0 END), 0) AS upvotes",
			"COALESCE(SUM(CASE WHEN direction = 'down' THEN 1 ELSE 0 END), 0) AS downvotes",
		).
		From("votes").
		Where(sq.Eq{"target_id": targetID, "target_kind": string(kind)}).
		ToSql()
	if err != nil {
		return models.VoteCount{}, apperror.Internal("CountVotes", err)
	}

	var row struct {
		Upvotes   int
		Downvotes int
	}
	if err := s.db.WithContext(ctx).Raw(query, args...).Scan(&row).Error; err != nil {
		return models.VoteCount{}, classify("CountVotes", err)
	}

	return models.VoteCount{
		Upvotes:   row.Upvotes,
		Downvotes: row.Downvotes,
		Total:     row.Upvotes - row.Downvotes,
	}, nil
}

type gormTx struct {
	gormStore
}

func (t *gormTx) locked(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *gormTx) LockQuestion(ctx context.Context, id int) (*models.Question, error) {
	q, err := first[models.Question](t.locked(ctx), id)
	return q, classify("LockQuestion", err)
}

func (t *gormTx) LockAnswer(ctx context.Context, id int) (*models.Answer, error) {
	a, err := first[models.Answer](t.locked(ctx), id)
	return a, classify("LockAnswer", err)
}

func (t *gormTx) AcceptedAnswerIDs(ctx context.Context, questionID int) ([]int, error) {
	var ids []int
	err := t.locked(ctx).
		Model(&models.Answer{}).
		Where("question_id = ? AND is_accepted = ?", questionID, true).
		Order("id").
		Pluck("id", &ids).Error
	return ids, classify("AcceptedAnswerIDs", err)
}

func (t *gormTx) CreateVote(ctx context.Context, vote *models.Vote) error {
	return classify("CreateVote", t.db.WithContext(ctx).Create(vote).Error)
}

func (t *gormTx) UpdateVoteDirection(ctx context.Context, vote *models.Vote, dir models.Direction) error {
	err := t.db.WithContext(ctx).Model(vote).Update("direction", string(dir)).Error
	if err != nil {
		return classify("UpdateVoteDirection", err)
	}
	vote.Direction = dir
	return nil
}

// AddReputation applies delta relative to the stored value so concurrent
// writers never overwrite each other.
func (t *gormTx) AddReputation(ctx context.Context, userID, delta int) error {
	res := t.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("reputation", gorm.Expr("reputation + ?", delta))
	if res.Error != nil {
		return classify("AddReputation", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("AddReputation", fmt.Sprintf("user %d not found", userID))
	}
	return nil
}

func (t *gormTx) SetAccepted(ctx context.Context, answerIDs []int, accepted bool) error {
	if len(answerIDs) == 0 {
		return nil
	}
	err := t.db.WithContext(ctx).
		Model(&models.Answer{}).
		Where("id IN ?", answerIDs).
		Update("is_accepted", accepted).Error
	return classify("SetAccepted", err)
}

func (t *gormTx) SetAnswered(ctx context.Context, questionID int, answered bool) error {
	res := t.db.WithContext(ctx).
		Model(&models.Question{}).
		Where("id = ?", questionID).
		Update("is_answered", answered)
	if res.Error != nil {
		return classify("SetAnswered", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("SetAnswered", fmt.Sprintf("question %d not found", questionID))
	}
	return nil
}
