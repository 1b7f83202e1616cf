package store

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"

	"wavespace/internal/quiz"
)

const uniqueViolation = "23505"

// Codes worth retrying: serialization failure, deadlock, lock timeout and
// statement timeout.
var transientCodes = map[string]struct{}{
	"40001": {},
	"40P01": {},
	"55P03": {},
	"57014": {},
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := transientCodes[pgErr.Code]
		return ok
	}
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func transient(err error) error {
	return fmt.Errorf("%w: %v", quiz.ErrTransient, err)
}

// classify leaves domain errors untouched and marks retryable storage
// failures with quiz.ErrTransient.
func classify(err error) error {
	if err == nil || errors.Is(err, quiz.ErrTransient) {
		return err
	}
	if isTransient(err) {
		return transient(err)
	}
	return err
}
