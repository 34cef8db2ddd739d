package learning

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursetrack-backend/internal/data/repos/testutil"
	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
)

func TestEnrollmentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewEnrollmentRepo(db, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, tx, "enrollment")
	userID := uuid.New()

	row := &types.Enrollment{UserID: userID, CourseID: course.ID}
	if _, err := repo.Create(dbc, []*types.Enrollment{row}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if row.ID == uuid.Nil || row.EnrolledAt.IsZero() {
		t.Fatalf("expected generated id and enrolled_at, got %+v", row)
	}

	got, err := repo.GetByUserAndCourse(dbc, userID, course.ID)
	if err != nil || got == nil || got.ID != row.ID {
		t.Fatalf("GetByUserAndCourse: err=%v got=%v", err, got)
	}
	if locked, err := repo.LockByUserAndCourse(dbc, userID, course.ID); err != nil || locked == nil {
		t.Fatalf("LockByUserAndCourse: err=%v got=%v", err, locked)
	}
	if missing, err := repo.GetByUserAndCourse(dbc, uuid.New(), course.ID); err != nil || missing != nil {
		t.Fatalf("expected nil for unknown user: err=%v got=%v", err, missing)
	}

	now := time.Now().UTC().Truncate(time.Second)
	ok, err := repo.UpdateProgress(dbc, row.ID, 1, &now)
	if err != nil || !ok {
		t.Fatalf("UpdateProgress: ok=%v err=%v", ok, err)
	}
	got, _ = repo.GetByID(dbc, row.ID)
	if got.Progress != 1 || got.CompletedAt == nil {
		t.Fatalf("after UpdateProgress: %+v", got)
	}
	if ok, err := repo.UpdateProgress(dbc, row.ID, 0.5, nil); err != nil || !ok {
		t.Fatalf("UpdateProgress(clear): ok=%v err=%v", ok, err)
	}
	got, _ = repo.GetByID(dbc, row.ID)
	if got.Progress != 0.5 || got.CompletedAt != nil {
		t.Fatalf("after clearing completed_at: %+v", got)
	}

	rows, err := repo.LockByCourseID(dbc, course.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("LockByCourseID: err=%v len=%d", err, len(rows))
	}
	withCourse, err := repo.ListWithCourseByUserID(dbc, userID)
	if err != nil || len(withCourse) != 1 || withCourse[0].Course == nil || withCourse[0].Course.Title != "enrollment" {
		t.Fatalf("ListWithCourseByUserID: err=%v rows=%+v", err, withCourse)
	}
	if n, err := repo.CountByUserID(dbc, userID); err != nil || n != 1 {
		t.Fatalf("CountByUserID: n=%d err=%v", n, err)
	}

	if n, err := repo.DeleteByID(dbc, row.ID); err != nil || n != 1 {
		t.Fatalf("DeleteByID: n=%d err=%v", n, err)
	}
	if ok, err := repo.UpdateProgress(dbc, row.ID, 0, nil); err != nil || ok {
		t.Fatalf("UpdateProgress on deleted row: ok=%v err=%v", ok, err)
	}
}

func TestEnrollmentRepoUniquePerUserCourse(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewEnrollmentRepo(db, testutil.Logger(t))

	course := testutil.SeedCourse(t, ctx, tx, "unique")
	userID := uuid.New()
	testutil.SeedEnrollment(t, ctx, tx, userID, course.ID)

	if testutil.IsPostgres(db) {
		// A failed statement aborts the surrounding postgres transaction.
		sp := tx.SavePoint("dup")
		if sp.Error != nil {
			t.Fatalf("savepoint: %v", sp.Error)
		}
		defer tx.RollbackTo("dup")
	}
	_, err := repo.Create(dbc, []*types.Enrollment{{UserID: userID, CourseID: course.ID}})
	if err == nil {
		t.Fatalf("expected unique violation")
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) && !strings.Contains(strings.ToLower(err.Error()), "unique") &&
		!strings.Contains(err.Error(), "duplicate key") {
		t.Fatalf("expected unique violation, got %v", err)
	}
}
