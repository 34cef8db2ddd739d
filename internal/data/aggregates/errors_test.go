package aggregates

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
)

func TestMapError_Codes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code domainagg.ErrorCode
	}{
		{"validation", ValidationError("bad input"), domainagg.CodeValidation},
		{"conflict", ConflictError("stale"), domainagg.CodeConflict},
		{"not found", gorm.ErrRecordNotFound, domainagg.CodeNotFound},
		{"duplicated key", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), domainagg.CodeConflict},
		{"foreign key", gorm.ErrForeignKeyViolated, domainagg.CodePreconditionFailed},
		{"pg unique", &pgconn.PgError{Code: "23505"}, domainagg.CodeConflict},
		{"sqlite unique message", errors.New("UNIQUE constraint failed: module_completion.user_id"), domainagg.CodeConflict},
		{"unknown", errors.New("something odd"), domainagg.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := MapError("op", tc.err)
			if !domainagg.IsCode(err, tc.code) {
				t.Fatalf("expected %s code, got %q (%v)", tc.code, domainagg.CodeOf(err), err)
			}
		})
	}
}

func TestMapError_Kinds(t *testing.T) {
	cases := []struct {
		name string
		err  error
		kind domainagg.ErrorKind
	}{
		{"acquire timeout", errTxAcquireTimeout, domainagg.KindTxTimeout},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, domainagg.KindTxTimeout},
		{"sqlite busy", errors.New("database is locked"), domainagg.KindTxTimeout},
		{"bad conn", driver.ErrBadConn, domainagg.KindStoreUnavailable},
		{"pg admin shutdown", &pgconn.PgError{Code: "57P01"}, domainagg.KindStoreUnavailable},
		{"refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), domainagg.KindStoreUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := MapError("op", tc.err)
			if !domainagg.IsKind(err, tc.kind) {
				t.Fatalf("expected %s kind, got %q (%v)", tc.kind, domainagg.KindOf(err), err)
			}
			if !domainagg.IsCode(err, domainagg.CodeRetryable) {
				t.Fatalf("expected retryable code, got %q", domainagg.CodeOf(err))
			}
		})
	}
}

func TestMapError_PassthroughAggregateError(t *testing.T) {
	in := domainagg.NewKindError(domainagg.KindNotEnrolled, "op", "not enrolled", errors.New("boom"))
	out := MapError("other", fmt.Errorf("wrapped: %w", in))
	if !domainagg.IsKind(out, domainagg.KindNotEnrolled) {
		t.Fatalf("expected passthrough aggregate error, got %v", out)
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !isUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Fatalf("gorm duplicated key")
	}
	if !isUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("pg 23505")
	}
	if !isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_enrollment_user_course"`)) {
		t.Fatalf("pg message")
	}
	if isUniqueViolation(errors.New("deadlock detected")) || isUniqueViolation(nil) {
		t.Fatalf("false positive")
	}
}
