package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/coursetrack-backend/internal/data/repos"
	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

// ModuleProgress is one row of a progress summary.
type ModuleProgress struct {
	ModuleID    uuid.UUID  `json:"module_id"`
	Title       string     `json:"title"`
	Order       int        `json:"order"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ProgressSummary is the read model for (user, course). Counts are live; Progress and
// CompletedAt are the stored enrollment values.
type ProgressSummary struct {
	EnrollmentID uuid.UUID        `json:"enrollment_id"`
	UserID       uuid.UUID        `json:"user_id"`
	CourseID     uuid.UUID        `json:"course_id"`
	EnrolledAt   time.Time        `json:"enrolled_at"`
	Completed    int              `json:"completed"`
	Total        int              `json:"total"`
	Progress     float64          `json:"progress"`
	CompletedAt  *time.Time       `json:"completed_at"`
	Modules      []ModuleProgress `json:"modules"`
}

// CourseProgress is one enrollment in a user's progress overview.
type CourseProgress struct {
	EnrollmentID     uuid.UUID  `json:"enrollment_id"`
	CourseID         uuid.UUID  `json:"course_id"`
	CourseTitle      string     `json:"course_title"`
	Progress         float64    `json:"progress"`
	CompletedModules int64      `json:"completed_modules"`
	TotalModules     int64      `json:"total_modules"`
	CompletedAt      *time.Time `json:"completed_at"`
}

// UserStats aggregates a learner's activity across every course.
type UserStats struct {
	TotalEnrollments  int64 `json:"total_enrollments"`
	TotalCompletions  int64 `json:"total_completions"`
	TotalQuizAttempts int64 `json:"total_quiz_attempts"`
	// AverageQuizScore is rounded to two decimals.
	AverageQuizScore float64 `json:"average_quiz_score"`
}

type ProgressService interface {
	GetSummary(ctx context.Context, userID, courseID uuid.UUID) (*ProgressSummary, error)
	// ListCourseProgress returns one row per enrollment with live module counts.
	ListCourseProgress(ctx context.Context, userID uuid.UUID) ([]CourseProgress, error)
	GetUserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error)
	ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*types.Enrollment, error)
	ListCompletions(ctx context.Context, userID uuid.UUID) ([]*types.ModuleCompletion, error)
	GetCompletion(ctx context.Context, userID, moduleID uuid.UUID) (*types.ModuleCompletion, error)
	GetCompletionByID(ctx context.Context, completionID uuid.UUID) (*types.ModuleCompletion, error)
}

type progressService struct {
	log         *logger.Logger
	modules     repos.ModuleRepo
	completions repos.ModuleCompletionRepo
	enrollments repos.EnrollmentRepo
	attempts    repos.QuizAttemptRepo
}

func NewProgressService(
	baseLog *logger.Logger,
	modules repos.ModuleRepo,
	completions repos.ModuleCompletionRepo,
	enrollments repos.EnrollmentRepo,
	attempts repos.QuizAttemptRepo,
) ProgressService {
	return &progressService{
		log:         baseLog.With("service", "ProgressService"),
		modules:     modules,
		completions: completions,
		enrollments: enrollments,
		attempts:    attempts,
	}
}

func (s *progressService) GetSummary(ctx context.Context, userID, courseID uuid.UUID) (*ProgressSummary, error) {
	const op = "Progress.GetSummary"
	if userID == uuid.Nil || courseID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or course_id", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}

	e, err := s.enrollments.GetByUserAndCourse(dbc, userID, courseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domainagg.NewKindError(domainagg.KindEnrollmentNotFound, op, fmt.Sprintf("user is not enrolled in course %s", courseID), nil)
	}
	mods, err := s.modules.ListByCourseID(dbc, courseID)
	if err != nil {
		return nil, err
	}
	done, err := s.completions.ListByUserAndCourse(dbc, userID, courseID)
	if err != nil {
		return nil, err
	}
	doneAt := make(map[uuid.UUID]time.Time, len(done))
	for _, c := range done {
		doneAt[c.ModuleID] = c.CompletedAt
	}

	out := &ProgressSummary{
		EnrollmentID: e.ID,
		UserID:       e.UserID,
		CourseID:     e.CourseID,
		EnrolledAt:   e.EnrolledAt,
		Total:        len(mods),
		Progress:     e.Progress,
		CompletedAt:  e.CompletedAt,
		Modules:      make([]ModuleProgress, 0, len(mods)),
	}
	for _, m := range mods {
		row := ModuleProgress{ModuleID: m.ID, Title: m.Title, Order: m.Order}
		if at, ok := doneAt[m.ID]; ok {
			row.Completed = true
			row.CompletedAt = &at
			out.Completed++
		}
		out.Modules = append(out.Modules, row)
	}
	return out, nil
}

func (s *progressService) ListCourseProgress(ctx context.Context, userID uuid.UUID) ([]CourseProgress, error) {
	if userID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "Progress.ListCourseProgress", "missing user_id", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}

	rows, err := s.enrollments.ListWithCourseByUserID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []CourseProgress{}, nil
	}
	courseIDs := make([]uuid.UUID, 0, len(rows))
	for _, e := range rows {
		courseIDs = append(courseIDs, e.CourseID)
	}
	totals, err := s.modules.CountByCourseIDs(dbc, courseIDs)
	if err != nil {
		return nil, err
	}
	done, err := s.completions.CountByUserGroupedByCourse(dbc, userID)
	if err != nil {
		return nil, err
	}

	out := make([]CourseProgress, 0, len(rows))
	for _, e := range rows {
		row := CourseProgress{
			EnrollmentID:     e.ID,
			CourseID:         e.CourseID,
			Progress:         e.Progress,
			CompletedModules: done[e.CourseID],
			TotalModules:     totals[e.CourseID],
			CompletedAt:      e.CompletedAt,
		}
		if e.Course != nil {
			row.CourseTitle = e.Course.Title
		}
		out = append(out, row)
	}
	return out, nil
}

func (s *progressService) GetUserStats(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	if userID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "Progress.GetUserStats", "missing user_id", nil)
	}
	dbc := dbctx.Context{Ctx: ctx}

	var (
		out    UserStats
		scores repos.ScoreStats
	)
	g, gctx := errgroup.WithContext(ctx)
	dbc.Ctx = gctx
	g.Go(func() (err error) {
		out.TotalEnrollments, err = s.enrollments.CountByUserID(dbc, userID)
		return err
	})
	g.Go(func() (err error) {
		out.TotalCompletions, err = s.completions.CountByUserID(dbc, userID)
		return err
	})
	g.Go(func() (err error) {
		scores, err = s.attempts.ScoreStatsByUserID(dbc, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.TotalQuizAttempts = scores.Attempts
	out.AverageQuizScore = math.Round(scores.AverageScore*100) / 100
	return &out, nil
}

func (s *progressService) ListEnrollments(ctx context.Context, userID uuid.UUID) ([]*types.Enrollment, error) {
	if userID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "Progress.ListEnrollments", "missing user_id", nil)
	}
	return s.enrollments.ListByUserID(dbctx.Context{Ctx: ctx}, userID)
}

func (s *progressService) ListCompletions(ctx context.Context, userID uuid.UUID) ([]*types.ModuleCompletion, error) {
	if userID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, "Progress.ListCompletions", "missing user_id", nil)
	}
	return s.completions.ListByUserID(dbctx.Context{Ctx: ctx}, userID)
}

func (s *progressService) GetCompletion(ctx context.Context, userID, moduleID uuid.UUID) (*types.ModuleCompletion, error) {
	const op = "Progress.GetCompletion"
	if userID == uuid.Nil || moduleID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or module_id", nil)
	}
	row, err := s.completions.GetByUserAndModule(dbctx.Context{Ctx: ctx}, userID, moduleID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domainagg.NewKindError(domainagg.KindCompletionNotFound, op, fmt.Sprintf("module %s not completed", moduleID), nil)
	}
	return row, nil
}

func (s *progressService) GetCompletionByID(ctx context.Context, completionID uuid.UUID) (*types.ModuleCompletion, error) {
	const op = "Progress.GetCompletionByID"
	if completionID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing completion_id", nil)
	}
	row, err := s.completions.GetDetailByID(dbctx.Context{Ctx: ctx}, completionID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, domainagg.NewKindError(domainagg.KindCompletionNotFound, op, fmt.Sprintf("completion not found: %s", completionID), nil)
	}
	return row, nil
}
