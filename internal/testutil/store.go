// Package testutil builds throwaway sqlite databases and fixtures for tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/database"
	"github.com/emilythestrangee/qa-forum/backend/internal/models"
)

// NewDatabase opens a migrated sqlite database in t.TempDir()
func NewDatabase(t *testing.T) database.Service {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	svc, err := database.Open(sqlite.Open(path), zerolog.Nop(), false)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { svc.Close() })

	// SQLite has a single writer; one connection keeps transactions from
	// tripping over SQLITE_BUSY.
	sqlDB, err := svc.GetDB().DB()
	if err != nil {
		t.Fatalf("DB() failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(svc.GetDB()); err != nil {
		t.Fatalf("AutoMigrate() failed: %v", err)
	}
	return svc
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	u := &models.User{
		Username:    username,
		Email:       username + "@example.com",
		Password:    "x",
		DisplayName: username,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func CreateQuestion(t *testing.T, db *gorm.DB, ownerID int) *models.Question {
	t.Helper()
	q := &models.Question{
		Title:   "How do I cancel a context?",
		Content: "I have a goroutine that never stops.",
		UserID:  ownerID,
	}
	if err := db.Create(q).Error; err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}

func CreateAnswer(t *testing.T, db *gorm.DB, questionID, authorID int) *models.Answer {
	t.Helper()
	a := &models.Answer{
		QuestionID: questionID,
		UserID:     authorID,
		Content:    "Call the cancel func returned by context.WithCancel.",
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create answer: %v", err)
	}
	return a
}

// Reputation reads the stored score, bypassing any cached struct
func Reputation(t *testing.T, db *gorm.DB, userID int) int {
	t.Helper()
	var u models.User
	if err := db.First(&u, userID).Error; err != nil {
		t.Fatalf("load user %d: %v", userID, err)
	}
	return u.Reputation
}

func ReloadAnswer(t *testing.T, db *gorm.DB, id int) models.Answer {
	t.Helper()
	var a models.Answer
	if err := db.First(&a, id).Error; err != nil {
		t.Fatalf("load answer %d: %v", id, err)
	}
	return a
}

func ReloadQuestion(t *testing.T, db *gorm.DB, id int) models.Question {
	t.Helper()
	var q models.Question
	if err := db.First(&q, id).Error; err != nil {
		t.Fatalf("load question %d: %v", id, err)
	}
	return q
}

func CountVoteRows(t *testing.T, db *gorm.DB, voterID, targetID int, kind models.TargetKind) int64 {
	t.Helper()
	var n int64
	err := db.Model(&models.Vote{}).
		Where("user_id = ? AND target_id = ? AND target_kind = ?", voterID, targetID, string(kind)).
		Count(&n).Error
	if err != nil {
		t.Fatalf("count votes: %v", err)
	}
	return n
}

// ErrInjected is returned by FailingStore in place of the real write
var ErrInjected = errors.New("injected store failure")

// FailingStore passes everything through to Store except that, inside a
// transaction, the write named by FailOn returns ErrInjected after the
// writes before it have already run.
type FailingStore struct {
	database.Store
	FailOn string
}

func (f FailingStore) InTx(ctx context.Context, fn func(tx database.Tx) error) error {
	return f.Store.InTx(ctx, func(tx database.Tx) error {
		return fn(failingTx{Tx: tx, failOn: f.FailOn})
	})
}

type failingTx struct {
	database.Tx
	failOn string
}

func (f failingTx) fail(name string) error {
	if f.failOn == name {
		return fmt.Errorf("%s: %w", name, ErrInjected)
	}
	return nil
}

func (f failingTx) AddReputation(ctx context.Context, userID, delta int) error {
	if err := f.fail("AddReputation"); err != nil {
		return err
	}
	return f.Tx.AddReputation(ctx, userID, delta)
}

func (f failingTx) SetAnswered(ctx context.Context, questionID int, answered bool) error {
	if err := f.fail("SetAnswered"); err != nil {
		return err
	}
	return f.Tx.SetAnswered(ctx, questionID, answered)
}

func (f failingTx) UpdateVoteDirection(ctx context.Context, vote *models.Vote, dir models.Direction) error {
	if err := f.fail("UpdateVoteDirection"); err != nil {
		return err
	}
	return f.Tx.UpdateVoteDirection(ctx, vote, dir)
}
