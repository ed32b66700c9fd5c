package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrEmptyCatalog is returned when no themes are configured.
	ErrEmptyCatalog = errors.New("theme catalog is empty")
)

// Kind classifies failures by who has to act on them.
type Kind string

const (
	KindOracle      Kind = "oracle_failure"
	KindConfig      Kind = "configuration_error"
	KindPersistence Kind = "persistence_failure"
)

// Error carries a Kind plus the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) && existing.Kind == kind {
		return err
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func Oracle(op string, err error) error      { return wrap(KindOracle, op, err) }
func Config(op string, err error) error      { return wrap(KindConfig, op, err) }
func Persistence(op string, err error) error { return wrap(KindPersistence, op, err) }

func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

func is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func IsOracleFailure(err error) bool      { return is(err, KindOracle) }
func IsConfigurationError(err error) bool { return is(err, KindConfig) }
func IsPersistenceFailure(err error) bool { return is(err, KindPersistence) }

// Retryable reports whether a persistence error is transient on the server side
// (serialization failure, deadlock, connection loss, admin shutdown).
func Retryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := pgErr.Code
		switch {
		case code == "40001", code == "40P01":
			return true
		case strings.HasPrefix(code, "08"):
			return true
		case strings.HasPrefix(code, "57P"):
			return true
		}
		return false
	}
	return pgconn.SafeToRetry(err) || pgconn.Timeout(err)
}

// ExitCode maps an error to the CLI exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch k, _ := KindOf(err); k {
	case KindConfig:
		return 2
	case KindOracle:
		return 3
	case KindPersistence:
		return 4
	default:
		return 1
	}
}
