package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/coursetrack-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/observability"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
	"github.com/yungbote/coursetrack-backend/internal/realtime/bus"
	"github.com/yungbote/coursetrack-backend/internal/services"
)

type Aggregates struct {
	Grading    domainagg.QuizGradingAggregate
	Completion domainagg.CompletionAggregate
	Enrollment domainagg.EnrollmentAggregate
	Structure  domainagg.CourseStructureAggregate
}

type Services struct {
	Progress   services.ProgressService
	Quiz       services.QuizService
	Completion services.CompletionService
	Course     services.CourseService
	Reconciler services.ProgressReconciler
}

func wireAggregates(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, metrics *observability.Metrics) Aggregates {
	log.Info("Wiring aggregates...")
	base := aggregates.BaseDeps{
		DB:     db,
		Log:    log.With("component", "aggregates"),
		Runner: aggregates.NewGormTxRunnerWithOptions(db, aggregates.TxOptions{MaxWait: cfg.Tx.MaxWait(), Timeout: cfg.Tx.Timeout()}),
		Hooks:  aggregates.NewObservabilityHooks(metrics),
		Tracer: observability.Tracer(),
	}
	return Aggregates{
		Grading: aggregates.NewQuizGradingAggregate(aggregates.QuizGradingAggregateDeps{
			Base:      base,
			Quizzes:   r.Quiz,
			Attempts:  r.Attempt,
			Responses: r.Response,
		}),
		Completion: aggregates.NewCompletionAggregate(aggregates.CompletionAggregateDeps{
			Base:              base,
			Modules:           r.Module,
			Completions:       r.Completed,
			Enrollments:       r.Enroll,
			CompletedAtPolicy: domainagg.ParseCompletedAtPolicy(cfg.Progress.CompletedAtPolicy),
		}),
		Enrollment: aggregates.NewEnrollmentAggregate(aggregates.EnrollmentAggregateDeps{
			Base:        base,
			Courses:     r.Course,
			Modules:     r.Module,
			Completions: r.Completed,
			Enrollments: r.Enroll,
		}),
		Structure: aggregates.NewCourseStructureAggregate(aggregates.CourseStructureAggregateDeps{
			Base:        base,
			Courses:     r.Course,
			Modules:     r.Module,
			Resources:   r.Resource,
			Quizzes:     r.Quiz,
			Options:     r.QuizOpt,
			Attempts:    r.Attempt,
			Responses:   r.Response,
			Completions: r.Completed,
			Enrollments: r.Enroll,
		}),
	}
}

func wireServices(log *logger.Logger, cfg Config, r Repos, a Aggregates, b bus.Bus, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	notifier := services.NewProgressNotifier(b, log, metrics)
	return Services{
		Progress:   services.NewProgressService(log, r.Module, r.Completed, r.Enroll, r.Attempt),
		Quiz:       services.NewQuizService(log, a.Grading, r.Quiz, r.Attempt, metrics),
		Completion: services.NewCompletionService(log, a.Completion, a.Enrollment, notifier, metrics),
		Course:     services.NewCourseService(log, a.Structure, notifier),
		Reconciler: services.NewProgressReconciler(log, r.Course, a.Structure, notifier, metrics, cfg.Progress.ReconcileConcurrency),
	}
}
