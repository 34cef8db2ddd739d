package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/coursetrack-backend/internal/data/repos"
	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
)

type EnrollmentAggregateDeps struct {
	Base BaseDeps

	Courses     repos.CourseRepo
	Modules     repos.ModuleRepo
	Completions repos.ModuleCompletionRepo
	Enrollments repos.EnrollmentRepo
}

type enrollmentAggregate struct {
	deps   EnrollmentAggregateDeps
	recalc progressRecalculator
}

func NewEnrollmentAggregate(deps EnrollmentAggregateDeps) domainagg.EnrollmentAggregate {
	deps.Base = deps.Base.withDefaults()
	return &enrollmentAggregate{
		deps: deps,
		recalc: progressRecalculator{
			modules:     deps.Modules,
			completions: deps.Completions,
			enrollments: deps.Enrollments,
			now:         deps.Base.Now,
		},
	}
}

func (a *enrollmentAggregate) Contract() domainagg.Contract {
	return domainagg.EnrollmentAggregateContract
}

func (a *enrollmentAggregate) Enroll(ctx context.Context, in domainagg.EnrollInput) (domainagg.EnrollResult, error) {
	const op = "Learning.Enrollment.Enroll"
	var out domainagg.EnrollResult

	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.CourseID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing course_id", nil)
	}
	if a.deps.Courses == nil || !a.recalc.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "enrollment aggregate repos not configured", nil)
	}
	enrolledAt := in.EnrolledAt.UTC()
	if in.EnrolledAt.IsZero() {
		enrolledAt = a.deps.Base.Now()
	}

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		course, err := a.deps.Courses.GetByID(dbc, in.CourseID)
		if err != nil {
			return err
		}
		if course == nil {
			return domainagg.NewKindError(domainagg.KindCourseNotFound, op, fmt.Sprintf("course not found: %s", in.CourseID), nil)
		}

		existing, err := a.deps.Enrollments.GetByUserAndCourse(dbc, in.UserID, in.CourseID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainagg.NewKindError(domainagg.KindAlreadyEnrolled, op, fmt.Sprintf("already enrolled in course %s", in.CourseID), nil)
		}

		row := &types.Enrollment{
			ID:         uuid.New(),
			UserID:     in.UserID,
			CourseID:   in.CourseID,
			EnrolledAt: enrolledAt,
		}
		if _, err := a.deps.Enrollments.Create(dbc, []*types.Enrollment{row}); err != nil {
			if isUniqueViolation(err) {
				return domainagg.NewKindError(domainagg.KindAlreadyEnrolled, op, fmt.Sprintf("already enrolled in course %s", in.CourseID), err)
			}
			return err
		}

		// Completions survive an unenroll, so a returning user resumes where they left off.
		snap, err := a.recalc.recompute(dbc, op, row, completedAtDerived)
		if err != nil {
			return err
		}

		out = domainagg.EnrollResult{
			EnrollmentID: row.ID,
			EnrolledAt:   row.EnrolledAt,
			Progress:     snap,
		}
		return nil
	})
	return out, err
}

func (a *enrollmentAggregate) Unenroll(ctx context.Context, in domainagg.UnenrollInput) (domainagg.UnenrollResult, error) {
	const op = "Learning.Enrollment.Unenroll"
	var out domainagg.UnenrollResult

	if in.EnrollmentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing enrollment_id", nil)
	}
	if a.deps.Enrollments == nil {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "enrollment repo not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		row, err := a.deps.Enrollments.LockByID(dbc, in.EnrollmentID)
		if err != nil {
			return err
		}
		if row == nil {
			return domainagg.NewKindError(domainagg.KindEnrollmentNotFound, op, fmt.Sprintf("enrollment not found: %s", in.EnrollmentID), nil)
		}
		if _, err := a.deps.Enrollments.DeleteByID(dbc, row.ID); err != nil {
			return err
		}
		out = domainagg.UnenrollResult{
			EnrollmentID: row.ID,
			UserID:       row.UserID,
			CourseID:     row.CourseID,
		}
		return nil
	})
	return out, err
}
