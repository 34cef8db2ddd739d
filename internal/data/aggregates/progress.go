package aggregates

import (
	"fmt"
	"time"

	"github.com/yungbote/coursetrack-backend/internal/data/repos"
	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
)

type completedAtMode int

const (
	// completedAtDerived stamps iff every module is complete, keeping an existing stamp.
	completedAtDerived completedAtMode = iota
	// completedAtCleared always writes a null stamp.
	completedAtCleared
)

// progressRecalculator derives enrollment progress from completion rows.
// It only runs inside an aggregate transaction, after the caller has locked the enrollment row.
type progressRecalculator struct {
	modules     repos.ModuleRepo
	completions repos.ModuleCompletionRepo
	enrollments repos.EnrollmentRepo
	now         func() time.Time
}

func (p progressRecalculator) configured() bool {
	return p.modules != nil && p.completions != nil && p.enrollments != nil
}

func (p progressRecalculator) recompute(dbc dbctx.Context, op string, e *types.Enrollment, mode completedAtMode) (domainagg.ProgressSnapshot, error) {
	var out domainagg.ProgressSnapshot
	total, err := p.modules.CountByCourseID(dbc, e.CourseID)
	if err != nil {
		return out, err
	}
	completed, err := p.completions.CountByUserAndCourse(dbc, e.UserID, e.CourseID)
	if err != nil {
		return out, err
	}
	if completed > total {
		return out, InvariantError(fmt.Sprintf("completed modules %d exceed course total %d", completed, total))
	}

	progress := progressFraction(completed, total)
	var completedAt *time.Time
	if mode == completedAtDerived {
		completedAt = deriveCompletedAt(e.CompletedAt, completed, total, p.now())
	}

	ok, err := p.enrollments.UpdateProgress(dbc, e.ID, progress, completedAt)
	if err != nil {
		return out, err
	}
	if !ok {
		return out, domainagg.NewKindError(domainagg.KindEnrollmentNotFound, op, fmt.Sprintf("enrollment %s disappeared during recompute", e.ID), nil)
	}
	e.Progress = progress
	e.CompletedAt = completedAt

	return domainagg.ProgressSnapshot{
		EnrollmentID: e.ID,
		UserID:       e.UserID,
		CourseID:     e.CourseID,
		Completed:    completed,
		Total:        total,
		Progress:     progress,
		CompletedAt:  completedAt,
	}, nil
}

func progressFraction(completed, total int64) float64 {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed >= total {
		return 1
	}
	return float64(completed) / float64(total)
}

func deriveCompletedAt(prev *time.Time, completed, total int64, now time.Time) *time.Time {
	if total <= 0 || completed < total {
		return nil
	}
	if prev != nil {
		return prev
	}
	t := now.UTC()
	return &t
}
