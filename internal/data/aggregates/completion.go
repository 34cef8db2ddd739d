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

type CompletionAggregateDeps struct {
	Base BaseDeps

	Modules     repos.ModuleRepo
	Completions repos.ModuleCompletionRepo
	Enrollments repos.EnrollmentRepo

	CompletedAtPolicy domainagg.CompletedAtPolicy
}

type completionAggregate struct {
	deps   CompletionAggregateDeps
	recalc progressRecalculator
}

func NewCompletionAggregate(deps CompletionAggregateDeps) domainagg.CompletionAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.CompletedAtPolicy == "" {
		deps.CompletedAtPolicy = domainagg.CompletedAtDerive
	}
	return &completionAggregate{
		deps: deps,
		recalc: progressRecalculator{
			modules:     deps.Modules,
			completions: deps.Completions,
			enrollments: deps.Enrollments,
			now:         deps.Base.Now,
		},
	}
}

func (a *completionAggregate) Contract() domainagg.Contract {
	return domainagg.CompletionAggregateContract
}

func (a *completionAggregate) CompleteModule(ctx context.Context, in domainagg.CompleteModuleInput) (domainagg.CompleteModuleResult, error) {
	const op = "Learning.Completion.CompleteModule"
	var out domainagg.CompleteModuleResult

	if in.UserID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	if in.ModuleID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing module_id", nil)
	}
	if !a.recalc.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "completion aggregate repos not configured", nil)
	}
	completedAt := in.CompletedAt.UTC()
	if in.CompletedAt.IsZero() {
		completedAt = a.deps.Base.Now()
	}

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		existing, err := a.deps.Completions.GetByUserAndModule(dbc, in.UserID, in.ModuleID)
		if err != nil {
			return err
		}
		if existing != nil {
			return domainagg.NewKindError(domainagg.KindAlreadyCompleted, op, fmt.Sprintf("module %s already completed", in.ModuleID), nil)
		}

		mod, err := a.deps.Modules.GetByID(dbc, in.ModuleID)
		if err != nil {
			return err
		}
		if mod == nil {
			return domainagg.NewKindError(domainagg.KindModuleNotFound, op, fmt.Sprintf("module not found: %s", in.ModuleID), nil)
		}

		enrollment, err := a.deps.Enrollments.LockByUserAndCourse(dbc, in.UserID, mod.CourseID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return domainagg.NewKindError(domainagg.KindNotEnrolled, op, fmt.Sprintf("user is not enrolled in course %s", mod.CourseID), nil)
		}
		// RemoveModule holds the enrollment locks while it deletes; a module that
		// vanished while we waited must not get an orphan completion.
		if mod, err = a.deps.Modules.GetByID(dbc, in.ModuleID); err != nil {
			return err
		}
		if mod == nil {
			return domainagg.NewKindError(domainagg.KindModuleNotFound, op, fmt.Sprintf("module removed: %s", in.ModuleID), nil)
		}

		row := &types.ModuleCompletion{
			ID:          uuid.New(),
			UserID:      in.UserID,
			ModuleID:    mod.ID,
			CompletedAt: completedAt,
		}
		if _, err := a.deps.Completions.Create(dbc, []*types.ModuleCompletion{row}); err != nil {
			if isUniqueViolation(err) {
				return domainagg.NewKindError(domainagg.KindAlreadyCompleted, op, fmt.Sprintf("module %s already completed", in.ModuleID), err)
			}
			return err
		}

		snap, err := a.recalc.recompute(dbc, op, enrollment, completedAtDerived)
		if err != nil {
			return err
		}

		out = domainagg.CompleteModuleResult{
			CompletionID: row.ID,
			UserID:       row.UserID,
			ModuleID:     row.ModuleID,
			CourseID:     mod.CourseID,
			CompletedAt:  row.CompletedAt,
			Progress:     snap,
		}
		return nil
	})
	return out, err
}

func (a *completionAggregate) RemoveCompletion(ctx context.Context, in domainagg.RemoveCompletionInput) (domainagg.RemoveCompletionResult, error) {
	const op = "Learning.Completion.RemoveCompletion"
	var out domainagg.RemoveCompletionResult

	if in.CompletionID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing completion_id", nil)
	}
	if !a.recalc.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "completion aggregate repos not configured", nil)
	}
	mode := completedAtDerived
	if a.deps.CompletedAtPolicy == domainagg.CompletedAtClearOnRemoval {
		mode = completedAtCleared
	}

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		completion, err := a.deps.Completions.GetByID(dbc, in.CompletionID)
		if err != nil {
			return err
		}
		if completion == nil {
			return domainagg.NewKindError(domainagg.KindCompletionNotFound, op, fmt.Sprintf("completion not found: %s", in.CompletionID), nil)
		}

		mod, err := a.deps.Modules.GetByID(dbc, completion.ModuleID)
		if err != nil {
			return err
		}
		if mod == nil {
			return domainagg.NewKindError(domainagg.KindModuleNotFound, op, fmt.Sprintf("module not found: %s", completion.ModuleID), nil)
		}

		enrollment, err := a.deps.Enrollments.LockByUserAndCourse(dbc, completion.UserID, mod.CourseID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return domainagg.NewKindError(domainagg.KindEnrollmentNotFound, op, fmt.Sprintf("no enrollment for course %s", mod.CourseID), nil)
		}

		deleted, err := a.deps.Completions.DeleteByID(dbc, completion.ID)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return domainagg.NewKindError(domainagg.KindCompletionNotFound, op, fmt.Sprintf("completion not found: %s", in.CompletionID), nil)
		}

		snap, err := a.recalc.recompute(dbc, op, enrollment, mode)
		if err != nil {
			return err
		}

		out = domainagg.RemoveCompletionResult{
			CompletionID: completion.ID,
			UserID:       completion.UserID,
			ModuleID:     completion.ModuleID,
			CourseID:     mod.CourseID,
			Progress:     snap,
		}
		return nil
	})
	return out, err
}
