package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestKinds(t *testing.T) {
	base := errors.New("boom")

	cases := []struct {
		name string
		err  error
		kind Kind
		code int
	}{
		{"oracle", Oracle("embed", base), KindOracle, 3},
		{"config", Config("load", ErrEmptyCatalog), KindConfig, 2},
		{"persistence", Persistence("upsert", base), KindPersistence, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("batch 3: %w", tc.err)
			k, ok := KindOf(wrapped)
			if !ok || k != tc.kind {
				t.Fatalf("KindOf: got=%q ok=%v want=%q", k, ok, tc.kind)
			}
			if got := ExitCode(wrapped); got != tc.code {
				t.Fatalf("ExitCode: got=%d want=%d", got, tc.code)
			}
		})
	}

	if !errors.Is(Config("load", ErrEmptyCatalog), ErrEmptyCatalog) {
		t.Fatalf("expected unwrap to reach ErrEmptyCatalog")
	}
	if ExitCode(base) != 1 || ExitCode(nil) != 0 {
		t.Fatalf("unexpected exit codes for plain/nil errors")
	}
	if Oracle("x", nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
}

func TestWrapDoesNotDoubleWrapSameKind(t *testing.T) {
	inner := Oracle("sentiment", errors.New("503"))
	outer := Oracle("batch", inner)
	if outer != inner {
		t.Fatalf("expected same-kind wrap to be a no-op")
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(&pgconn.PgError{Code: "40001"}) {
		t.Fatalf("serialization failure should be retryable")
	}
	if !Retryable(fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "08006"})) {
		t.Fatalf("connection failure should be retryable")
	}
	if Retryable(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("unique violation should not be retryable")
	}
	if Retryable(errors.New("plain")) {
		t.Fatalf("plain error should not be retryable")
	}
}
