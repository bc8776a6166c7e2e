package errors

import (
	stderrs "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestDBErrorCode_Classes(t *testing.T) {
	cases := map[string]ErrorCode{
		pgErrUniqueViolation:           ErrorCodeDuplicateKey,
		pgErrForeignKeyViolation:       ErrorCodeInvalidArgument,
		pgErrInvalidTextRepresentation: ErrorCodeInvalidArgument,
		pgErrNumericOutOfRange:         ErrorCodeInvalidArgument,
		pgErrNotNullViolation:          ErrorCodeValidation,
		pgErrCheckViolation:            ErrorCodeValidation,
		pgErrCannotConnectNow:          ErrorCodeUnavailable,
		pgErrDeadlockDetected:          ErrorCodeDB,
		"XX000":                        ErrorCodeDB,
	}
	for state, want := range cases {
		got, ok := DBErrorCode(&pgconn.PgError{Code: state})
		if !ok || got != want {
			t.Errorf("sqlstate %s got %d ok=%v want %d", state, got, ok, want)
		}
	}
	if _, ok := DBErrorCode(stderrs.New("plain")); ok {
		t.Fatal("expected ok=false for non pg error")
	}
}

func TestFromPostgres_DuplicateSlug(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgErrUniqueViolation, ConstraintName: "cms_slug_key"}
	err := FromPostgres(fmt.Errorf("exec: %w", pgErr), "insert cms")

	if !IsCode(err, ErrorCodeDuplicateKey) {
		t.Fatalf("expected duplicate key got %d", CodeOf(err))
	}
	if !IsDuplicateKey(err) {
		t.Fatal("expected IsDuplicateKey")
	}
	e, _ := As(err)
	if e.Field() != "slug" {
		t.Fatalf("expected field slug got %q", e.Field())
	}
}

func TestFromPostgres_ColumnBeatsConstraint(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgErrNotNullViolation, ColumnName: "name", ConstraintName: "cms_other_check"}
	e, _ := As(FromPostgres(pgErr, "insert cms"))
	if e.Field() != "name" {
		t.Fatalf("expected field name got %q", e.Field())
	}
}

func TestFromPostgres_NilAndForeign(t *testing.T) {
	if FromPostgres(nil, "x") != nil {
		t.Fatal("expected nil passthrough")
	}
	err := FromPostgresf(stderrs.New("conn closed"), "list %s", "cms")
	if !IsCode(err, ErrorCodeDB) || err.Error() != "list cms: conn closed" {
		t.Fatalf("unexpected foreign mapping %v code=%d", err, CodeOf(err))
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(fmt.Errorf("tx: %w", &pgconn.PgError{Code: pgErrSerializationFailure})) {
		t.Fatal("serialization failure should be retryable")
	}
	if IsRetryable(&pgconn.PgError{Code: pgErrUniqueViolation}) {
		t.Fatal("unique violation is not retryable")
	}
	if IsRetryable(stderrs.New("plain")) {
		t.Fatal("foreign errors are not retryable")
	}
}
