package aggregates

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/coursetrack-backend/internal/data/repos"
	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
)

type CourseStructureAggregateDeps struct {
	Base BaseDeps

	Courses     repos.CourseRepo
	Modules     repos.ModuleRepo
	Resources   repos.ResourceRepo
	Quizzes     repos.QuizRepo
	Options     repos.QuizOptionRepo
	Attempts    repos.QuizAttemptRepo
	Responses   repos.QuizResponseRepo
	Completions repos.ModuleCompletionRepo
	Enrollments repos.EnrollmentRepo
}

type courseStructureAggregate struct {
	deps   CourseStructureAggregateDeps
	recalc progressRecalculator
}

func NewCourseStructureAggregate(deps CourseStructureAggregateDeps) domainagg.CourseStructureAggregate {
	deps.Base = deps.Base.withDefaults()
	return &courseStructureAggregate{
		deps: deps,
		recalc: progressRecalculator{
			modules:     deps.Modules,
			completions: deps.Completions,
			enrollments: deps.Enrollments,
			now:         deps.Base.Now,
		},
	}
}

func (a *courseStructureAggregate) Contract() domainagg.Contract {
	return domainagg.CourseStructureAggregateContract
}

func (a *courseStructureAggregate) configured() bool {
	d := a.deps
	return d.Courses != nil && d.Resources != nil && d.Quizzes != nil && d.Options != nil &&
		d.Attempts != nil && d.Responses != nil && a.recalc.configured()
}

func (a *courseStructureAggregate) AddModule(ctx context.Context, in domainagg.AddModuleInput) (domainagg.AddModuleResult, error) {
	const op = "Learning.CourseStructure.AddModule"
	var out domainagg.AddModuleResult

	title := strings.TrimSpace(in.Title)
	if in.CourseID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing course_id", nil)
	}
	if title == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing module title", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "course structure aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		if err := a.lockCourse(dbc, op, in.CourseID); err != nil {
			return err
		}
		mod := &types.Module{
			ID:              uuid.New(),
			CourseID:        in.CourseID,
			Title:           title,
			Content:         in.Content,
			VideoURL:        in.VideoURL,
			Order:           in.Order,
			DurationMinutes: in.DurationMinutes,
		}
		if _, err := a.deps.Modules.Create(dbc, []*types.Module{mod}); err != nil {
			return err
		}
		snaps, err := a.recomputeCourse(dbc, op, in.CourseID)
		if err != nil {
			return err
		}
		out = domainagg.AddModuleResult{ModuleID: mod.ID, CourseID: mod.CourseID, Recomputed: snaps}
		return nil
	})
	return out, err
}

func (a *courseStructureAggregate) RemoveModule(ctx context.Context, in domainagg.RemoveModuleInput) (domainagg.RemoveModuleResult, error) {
	const op = "Learning.CourseStructure.RemoveModule"
	var out domainagg.RemoveModuleResult

	if in.ModuleID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing module_id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "course structure aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		mod, err := a.deps.Modules.GetByID(dbc, in.ModuleID)
		if err != nil {
			return err
		}
		if mod == nil {
			return domainagg.NewKindError(domainagg.KindModuleNotFound, op, fmt.Sprintf("module not found: %s", in.ModuleID), nil)
		}
		if err := a.lockCourse(dbc, op, mod.CourseID); err != nil {
			return err
		}
		enrollments, err := a.deps.Enrollments.LockByCourseID(dbc, mod.CourseID)
		if err != nil {
			return err
		}

		moduleIDs := []uuid.UUID{mod.ID}
		quizIDs, err := a.deps.Quizzes.ListIDsByModuleIDs(dbc, moduleIDs)
		if err != nil {
			return err
		}
		attemptIDs, err := a.deps.Attempts.ListIDsByQuizIDs(dbc, quizIDs)
		if err != nil {
			return err
		}
		if _, err := a.deps.Responses.DeleteByAttemptIDs(dbc, attemptIDs); err != nil {
			return err
		}
		if _, err := a.deps.Attempts.DeleteByIDs(dbc, attemptIDs); err != nil {
			return err
		}
		if _, err := a.deps.Options.DeleteByQuizIDs(dbc, quizIDs); err != nil {
			return err
		}
		if _, err := a.deps.Quizzes.DeleteByIDs(dbc, quizIDs); err != nil {
			return err
		}
		if _, err := a.deps.Resources.DeleteByModuleIDs(dbc, moduleIDs); err != nil {
			return err
		}
		removed, err := a.deps.Completions.DeleteByModuleIDs(dbc, moduleIDs)
		if err != nil {
			return err
		}
		if _, err := a.deps.Modules.DeleteByIDs(dbc, moduleIDs); err != nil {
			return err
		}

		snaps := make([]domainagg.ProgressSnapshot, 0, len(enrollments))
		for _, e := range enrollments {
			snap, err := a.recalc.recompute(dbc, op, e, completedAtDerived)
			if err != nil {
				return err
			}
			snaps = append(snaps, snap)
		}
		out = domainagg.RemoveModuleResult{
			ModuleID:           mod.ID,
			CourseID:           mod.CourseID,
			RemovedCompletions: removed,
			Recomputed:         snaps,
		}
		return nil
	})
	return out, err
}

func (a *courseStructureAggregate) RecomputeCourse(ctx context.Context, in domainagg.RecomputeCourseInput) (domainagg.RecomputeCourseResult, error) {
	const op = "Learning.CourseStructure.RecomputeCourse"
	var out domainagg.RecomputeCourseResult

	if in.CourseID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing course_id", nil)
	}
	if !a.configured() {
		return out, domainagg.NewError(domainagg.CodeInternal, op, "course structure aggregate repos not configured", nil)
	}

	err := executeWrite(ctx, a.deps.Base, a.Contract(), op, func(dbc dbctx.Context) error {
		if err := a.lockCourse(dbc, op, in.CourseID); err != nil {
			return err
		}
		snaps, err := a.recomputeCourse(dbc, op, in.CourseID)
		if err != nil {
			return err
		}
		out = domainagg.RecomputeCourseResult{CourseID: in.CourseID, Recomputed: snaps}
		return nil
	})
	return out, err
}

func (a *courseStructureAggregate) lockCourse(dbc dbctx.Context, op string, courseID uuid.UUID) error {
	course, err := a.deps.Courses.LockByID(dbc, courseID)
	if err != nil {
		return err
	}
	if course == nil {
		return domainagg.NewKindError(domainagg.KindCourseNotFound, op, fmt.Sprintf("course not found: %s", courseID), nil)
	}
	return nil
}

func (a *courseStructureAggregate) recomputeCourse(dbc dbctx.Context, op string, courseID uuid.UUID) ([]domainagg.ProgressSnapshot, error) {
	enrollments, err := a.deps.Enrollments.LockByCourseID(dbc, courseID)
	if err != nil {
		return nil, err
	}
	snaps := make([]domainagg.ProgressSnapshot, 0, len(enrollments))
	for _, e := range enrollments {
		snap, err := a.recalc.recompute(dbc, op, e, completedAtDerived)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}
