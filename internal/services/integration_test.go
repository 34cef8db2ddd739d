package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/coursetrack-backend/internal/data/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/data/repos"
	"github.com/yungbote/coursetrack-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/observability"
	"github.com/yungbote/coursetrack-backend/internal/realtime/bus"
)

type stack struct {
	db          *gorm.DB
	bus         *bus.MemoryBus
	metrics     *observability.Metrics
	progress    ProgressService
	quizzes     QuizService
	completions CompletionService
	reconciler  ProgressReconciler
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db := testutil.DB(t)
	if testutil.IsPostgres(db) {
		t.Skip("service integration tests need a private sqlite database")
	}
	log := testutil.Logger(t)
	metrics := observability.New()
	mem := bus.NewMemoryBus()
	notifier := NewProgressNotifier(mem, log, metrics)

	courses := repos.NewCourseRepo(db, log)
	modules := repos.NewModuleRepo(db, log)
	completions := repos.NewModuleCompletionRepo(db, log)
	enrollments := repos.NewEnrollmentRepo(db, log)
	quizzes := repos.NewQuizRepo(db, log)
	attempts := repos.NewQuizAttemptRepo(db, log)

	base := aggregates.BaseDeps{DB: db, Log: log, Hooks: aggregates.NewObservabilityHooks(metrics)}
	structure := aggregates.NewCourseStructureAggregate(aggregates.CourseStructureAggregateDeps{
		Base:        base,
		Courses:     courses,
		Modules:     modules,
		Resources:   repos.NewResourceRepo(db, log),
		Quizzes:     quizzes,
		Options:     repos.NewQuizOptionRepo(db, log),
		Attempts:    attempts,
		Responses:   repos.NewQuizResponseRepo(db, log),
		Completions: completions,
		Enrollments: enrollments,
	})
	grading := aggregates.NewQuizGradingAggregate(aggregates.QuizGradingAggregateDeps{
		Base:      base,
		Quizzes:   quizzes,
		Attempts:  attempts,
		Responses: repos.NewQuizResponseRepo(db, log),
	})
	completionAgg := aggregates.NewCompletionAggregate(aggregates.CompletionAggregateDeps{
		Base:        base,
		Modules:     modules,
		Completions: completions,
		Enrollments: enrollments,
	})
	enrollmentAgg := aggregates.NewEnrollmentAggregate(aggregates.EnrollmentAggregateDeps{
		Base:        base,
		Courses:     courses,
		Modules:     modules,
		Completions: completions,
		Enrollments: enrollments,
	})

	return &stack{
		db:          db,
		bus:         mem,
		metrics:     metrics,
		progress:    NewProgressService(log, modules, completions, enrollments, attempts),
		quizzes:     NewQuizService(log, grading, quizzes, attempts, metrics),
		completions: NewCompletionService(log, completionAgg, enrollmentAgg, notifier, metrics),
		reconciler:  NewProgressReconciler(log, courses, structure, notifier, metrics, 2),
	}
}

func TestProgressSummaryTracksCompletions(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	course := testutil.SeedCourse(t, ctx, s.db, "Databases")
	m1 := testutil.SeedModule(t, ctx, s.db, course.ID, 1)
	m2 := testutil.SeedModule(t, ctx, s.db, course.ID, 2)
	userID := uuid.New()

	if _, err := s.progress.GetSummary(ctx, userID, course.ID); !domainagg.IsKind(err, domainagg.KindEnrollmentNotFound) {
		t.Fatalf("expected enrollment_not_found, got %v", err)
	}
	if _, err := s.completions.Enroll(ctx, userID, course.ID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	res, err := s.completions.CompleteModule(ctx, userID, m2.ID)
	if err != nil {
		t.Fatalf("CompleteModule: %v", err)
	}

	sum, err := s.progress.GetSummary(ctx, userID, course.ID)
	if err != nil {
		t.Fatalf("GetSummary: %v", err)
	}
	if sum.Completed != 1 || sum.Total != 2 || sum.Progress != 0.5 || sum.CompletedAt != nil {
		t.Fatalf("summary: %+v", sum)
	}
	if len(sum.Modules) != 2 || sum.Modules[0].ModuleID != m1.ID || sum.Modules[0].Completed || !sum.Modules[1].Completed {
		t.Fatalf("module rows: %+v", sum.Modules)
	}

	byID, err := s.progress.GetCompletionByID(ctx, res.CompletionID)
	if err != nil {
		t.Fatalf("GetCompletionByID: %v", err)
	}
	if byID.Module == nil || byID.Module.ID != m2.ID {
		t.Fatalf("completion detail missing module: %+v", byID)
	}
	if _, err := s.progress.GetCompletion(ctx, userID, m1.ID); !domainagg.IsKind(err, domainagg.KindCompletionNotFound) {
		t.Fatalf("expected completion_not_found, got %v", err)
	}
	list, err := s.progress.ListCompletions(ctx, userID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListCompletions: %v len=%d", err, len(list))
	}

	// enroll + complete each published one event
	if got := len(s.bus.Published()); got != 2 {
		t.Fatalf("published events: %d", got)
	}
}

func TestUserOverviewReadsAcrossCourses(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	userID := uuid.New()

	stats, err := s.progress.GetUserStats(ctx, userID)
	if err != nil {
		t.Fatalf("GetUserStats(new user): %v", err)
	}
	if *stats != (UserStats{}) {
		t.Fatalf("new user stats: %+v", stats)
	}
	if rows, err := s.progress.ListCourseProgress(ctx, userID); err != nil || len(rows) != 0 {
		t.Fatalf("ListCourseProgress(new user): %v len=%d", err, len(rows))
	}

	sql := testutil.SeedCourse(t, ctx, s.db, "SQL")
	sqlMods := []uuid.UUID{
		testutil.SeedModule(t, ctx, s.db, sql.ID, 1).ID,
		testutil.SeedModule(t, ctx, s.db, sql.ID, 2).ID,
		testutil.SeedModule(t, ctx, s.db, sql.ID, 3).ID,
	}
	gopher := testutil.SeedCourse(t, ctx, s.db, "Go")
	goMod := testutil.SeedModule(t, ctx, s.db, gopher.ID, 1)
	quiz, opts := testutil.SeedQuiz(t, ctx, s.db, goMod.ID, true, false)

	for _, courseID := range []uuid.UUID{sql.ID, gopher.ID} {
		if _, err := s.completions.Enroll(ctx, userID, courseID); err != nil {
			t.Fatalf("Enroll: %v", err)
		}
	}
	for _, id := range []uuid.UUID{sqlMods[0], goMod.ID} {
		if _, err := s.completions.CompleteModule(ctx, userID, id); err != nil {
			t.Fatalf("CompleteModule: %v", err)
		}
	}
	for _, pick := range [][]uuid.UUID{{opts[0].ID}, {opts[1].ID}, {opts[0].ID}} {
		if _, err := s.quizzes.SubmitAttempt(ctx, userID, quiz.ID, pick); err != nil {
			t.Fatalf("SubmitAttempt: %v", err)
		}
	}
	if _, err := s.quizzes.SubmitAttempt(ctx, uuid.New(), quiz.ID, []uuid.UUID{opts[1].ID}); err != nil {
		t.Fatalf("SubmitAttempt(other user): %v", err)
	}

	stats, err = s.progress.GetUserStats(ctx, userID)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	want := UserStats{TotalEnrollments: 2, TotalCompletions: 2, TotalQuizAttempts: 3, AverageQuizScore: 0.67}
	if *stats != want {
		t.Fatalf("stats: got %+v want %+v", *stats, want)
	}

	rows, err := s.progress.ListCourseProgress(ctx, userID)
	if err != nil {
		t.Fatalf("ListCourseProgress: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows: %+v", rows)
	}
	byCourse := map[uuid.UUID]CourseProgress{}
	for _, r := range rows {
		byCourse[r.CourseID] = r
	}
	gotSQL, gotGo := byCourse[sql.ID], byCourse[gopher.ID]
	if gotSQL.CourseTitle != "SQL" || gotSQL.CompletedModules != 1 || gotSQL.TotalModules != 3 || gotSQL.CompletedAt != nil {
		t.Fatalf("sql row: %+v", gotSQL)
	}
	if gotSQL.Progress < 0.333 || gotSQL.Progress > 0.334 {
		t.Fatalf("sql progress: %v", gotSQL.Progress)
	}
	if gotGo.CourseTitle != "Go" || gotGo.CompletedModules != 1 || gotGo.TotalModules != 1 || gotGo.Progress != 1 || gotGo.CompletedAt == nil {
		t.Fatalf("go row: %+v", gotGo)
	}

	if _, err := s.progress.GetUserStats(ctx, uuid.Nil); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestQuizServiceReadsAttemptDetail(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	course := testutil.SeedCourse(t, ctx, s.db, "Networks")
	m := testutil.SeedModule(t, ctx, s.db, course.ID, 1)
	quiz, opts := testutil.SeedQuiz(t, ctx, s.db, m.ID, false, true)
	userID := uuid.New()

	res, err := s.quizzes.SubmitAttempt(ctx, userID, quiz.ID, []uuid.UUID{opts[1].ID})
	if err != nil {
		t.Fatalf("SubmitAttempt: %v", err)
	}
	if !res.IsCorrect {
		t.Fatalf("expected correct attempt")
	}
	detail, err := s.quizzes.GetAttempt(ctx, res.AttemptID)
	if err != nil {
		t.Fatalf("GetAttempt: %v", err)
	}
	if detail.Quiz == nil || len(detail.Quiz.Options) != 2 || len(detail.Responses) != 1 {
		t.Fatalf("attempt detail: %+v", detail)
	}
	if detail.Responses[0].QuizOption == nil || detail.Responses[0].QuizOption.ID != opts[1].ID {
		t.Fatalf("response option: %+v", detail.Responses[0])
	}
	if _, err := s.quizzes.GetAttempt(ctx, uuid.New()); !domainagg.IsKind(err, domainagg.KindAttemptNotFound) {
		t.Fatalf("expected attempt_not_found, got %v", err)
	}
	if _, err := s.quizzes.GetQuiz(ctx, uuid.New()); !domainagg.IsKind(err, domainagg.KindQuizNotFound) {
		t.Fatalf("expected quiz_not_found, got %v", err)
	}
	list, err := s.quizzes.ListQuizzesByModule(ctx, m.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListQuizzesByModule: %v len=%d", err, len(list))
	}
}

func TestReconcileAllRepairsEveryCourse(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	userID := uuid.New()

	var enrollmentIDs []uuid.UUID
	for i := 0; i < 3; i++ {
		course := testutil.SeedCourse(t, ctx, s.db, "course")
		m := testutil.SeedModule(t, ctx, s.db, course.ID, 1)
		testutil.SeedModule(t, ctx, s.db, course.ID, 2)
		e := testutil.SeedEnrollment(t, ctx, s.db, userID, course.ID)
		testutil.SeedCompletion(t, ctx, s.db, userID, m.ID)
		enrollmentIDs = append(enrollmentIDs, e.ID)
	}

	report, err := s.reconciler.ReconcileAll(ctx)
	if err != nil {
		t.Fatalf("ReconcileAll: %v", err)
	}
	if report.Courses != 3 || report.Enrollments != 3 || len(report.Failed) != 0 {
		t.Fatalf("report: %+v", report)
	}
	for _, id := range enrollmentIDs {
		var progress float64
		if err := s.db.Table("enrollment").Select("progress").Where("id = ?", id).Scan(&progress).Error; err != nil {
			t.Fatalf("read progress: %v", err)
		}
		if progress != 0.5 {
			t.Fatalf("enrollment %s progress=%v", id, progress)
		}
	}
	if got := len(s.bus.Published()); got != 3 {
		t.Fatalf("published events: %d", got)
	}
}

func TestScheduleRejectsBadSpec(t *testing.T) {
	s := newStack(t)
	if _, err := s.reconciler.Schedule(context.Background(), "not a cron spec"); err == nil {
		t.Fatalf("expected invalid schedule error")
	}
	stop, err := s.reconciler.Schedule(context.Background(), "")
	if err != nil {
		t.Fatalf("empty schedule disables reconciliation: %v", err)
	}
	stop()
	stop, err = s.reconciler.Schedule(context.Background(), "@every 1h")
	if err != nil {
		t.Fatalf("valid schedule: %v", err)
	}
	stop()
}
