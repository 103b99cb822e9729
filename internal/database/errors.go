package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/emilythestrangee/qa-forum/backend/internal/apperror"
)

// SQLSTATE codes that mean "another transaction got there first"
const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505"
)

// classify turns a raw store error into an apperror. Already classified
// errors pass through untouched so a NotFound raised inside a transaction
// reaches the caller as NotFound.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}

	if IsConflict(err) {
		return apperror.Conflict(op, err)
	}
	return apperror.Internal(op, err)
}

// IsConflict reports whether err is an isolation or uniqueness conflict
// that is safe to retry.
func IsConflict(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateSerializationFailure, sqlStateDeadlockDetected, sqlStateUniqueViolation:
			return true
		}
	}
	return false
}
