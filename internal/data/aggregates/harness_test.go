package aggregates_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursetrack-backend/internal/data/aggregates"
	aggtestutil "github.com/yungbote/coursetrack-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/coursetrack-backend/internal/data/repos"
	"github.com/yungbote/coursetrack-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	types "github.com/yungbote/coursetrack-backend/internal/domain/learning"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
)

var fixedNow = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

type harness struct {
	t     *testing.T
	ctx   context.Context
	db    *gorm.DB
	hooks *aggtestutil.HooksRecorder

	courses     repos.CourseRepo
	modules     repos.ModuleRepo
	resources   repos.ResourceRepo
	quizzes     repos.QuizRepo
	options     repos.QuizOptionRepo
	attempts    repos.QuizAttemptRepo
	responses   repos.QuizResponseRepo
	completions repos.ModuleCompletionRepo
	enrollments repos.EnrollmentRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	// On Postgres the database is shared; every test seeds fresh ids and only counts its own rows.
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &harness{
		t:           t,
		ctx:         context.Background(),
		db:          db,
		hooks:       &aggtestutil.HooksRecorder{},
		courses:     repos.NewCourseRepo(db, log),
		modules:     repos.NewModuleRepo(db, log),
		resources:   repos.NewResourceRepo(db, log),
		quizzes:     repos.NewQuizRepo(db, log),
		options:     repos.NewQuizOptionRepo(db, log),
		attempts:    repos.NewQuizAttemptRepo(db, log),
		responses:   repos.NewQuizResponseRepo(db, log),
		completions: repos.NewModuleCompletionRepo(db, log),
		enrollments: repos.NewEnrollmentRepo(db, log),
	}
}

func (h *harness) base() aggregates.BaseDeps {
	return aggregates.BaseDeps{
		DB:    h.db,
		Log:   testutil.Logger(h.t),
		Hooks: h.hooks,
		Now:   func() time.Time { return fixedNow },
	}
}

func (h *harness) grading() domainagg.QuizGradingAggregate {
	return aggregates.NewQuizGradingAggregate(aggregates.QuizGradingAggregateDeps{
		Base:      h.base(),
		Quizzes:   h.quizzes,
		Attempts:  h.attempts,
		Responses: h.responses,
	})
}

func (h *harness) completion(policy domainagg.CompletedAtPolicy) domainagg.CompletionAggregate {
	return aggregates.NewCompletionAggregate(aggregates.CompletionAggregateDeps{
		Base:              h.base(),
		Modules:           h.modules,
		Completions:       h.completions,
		Enrollments:       h.enrollments,
		CompletedAtPolicy: policy,
	})
}

func (h *harness) enrollment() domainagg.EnrollmentAggregate {
	return aggregates.NewEnrollmentAggregate(aggregates.EnrollmentAggregateDeps{
		Base:        h.base(),
		Courses:     h.courses,
		Modules:     h.modules,
		Completions: h.completions,
		Enrollments: h.enrollments,
	})
}

func (h *harness) structure() domainagg.CourseStructureAggregate {
	return aggregates.NewCourseStructureAggregate(aggregates.CourseStructureAggregateDeps{
		Base:        h.base(),
		Courses:     h.courses,
		Modules:     h.modules,
		Resources:   h.resources,
		Quizzes:     h.quizzes,
		Options:     h.options,
		Attempts:    h.attempts,
		Responses:   h.responses,
		Completions: h.completions,
		Enrollments: h.enrollments,
	})
}

// course seeds a course with n modules.
func (h *harness) course(n int) (*types.Course, []*types.Module) {
	h.t.Helper()
	c := testutil.SeedCourse(h.t, h.ctx, h.db, "Go fundamentals")
	mods := make([]*types.Module, 0, n)
	for i := 1; i <= n; i++ {
		mods = append(mods, testutil.SeedModule(h.t, h.ctx, h.db, c.ID, i))
	}
	return c, mods
}

func (h *harness) enrollmentFor(userID, courseID uuid.UUID) *types.Enrollment {
	h.t.Helper()
	e, err := h.enrollments.GetByUserAndCourse(dbctx.Context{Ctx: h.ctx}, userID, courseID)
	if err != nil {
		h.t.Fatalf("load enrollment: %v", err)
	}
	if e == nil {
		h.t.Fatalf("enrollment for user %s course %s missing", userID, courseID)
	}
	return e
}

func (h *harness) count(table string, where string, args ...interface{}) int64 {
	h.t.Helper()
	var n int64
	if err := h.db.Table(table).Where(where, args...).Count(&n).Error; err != nil {
		h.t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func optionIDs(opts []*types.QuizOption) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(opts))
	for _, o := range opts {
		ids = append(ids, o.ID)
	}
	return ids
}

func approx(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
