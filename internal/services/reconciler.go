package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/coursetrack-backend/internal/data/repos"
	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/observability"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

const DefaultReconcileConcurrency = 4

// ReconcileReport summarizes a ReconcileAll run. Failed courses do not stop the others.
type ReconcileReport struct {
	Courses     int
	Enrollments int
	Failed      map[uuid.UUID]error
	Duration    time.Duration
}

// ProgressReconciler re-derives stored enrollment progress from completion rows.
// Each course is recomputed in its own transaction.
type ProgressReconciler interface {
	ReconcileCourse(ctx context.Context, courseID uuid.UUID) (int, error)
	ReconcileAll(ctx context.Context) (ReconcileReport, error)
	// Schedule registers ReconcileAll on a cron spec and starts the scheduler.
	// The returned stop func waits for a running reconcile to finish.
	Schedule(ctx context.Context, spec string) (stop func(), err error)
}

type progressReconciler struct {
	log         *logger.Logger
	courses     repos.CourseRepo
	structure   domainagg.CourseStructureAggregate
	notifier    ProgressNotifier
	metrics     *observability.Metrics
	concurrency int
}

func NewProgressReconciler(
	baseLog *logger.Logger,
	courses repos.CourseRepo,
	structure domainagg.CourseStructureAggregate,
	notifier ProgressNotifier,
	metrics *observability.Metrics,
	concurrency int,
) ProgressReconciler {
	if concurrency <= 0 {
		concurrency = DefaultReconcileConcurrency
	}
	return &progressReconciler{
		log:         baseLog.With("service", "ProgressReconciler"),
		courses:     courses,
		structure:   structure,
		notifier:    notifier,
		metrics:     metrics,
		concurrency: concurrency,
	}
}

func (r *progressReconciler) ReconcileCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	if r.structure == nil {
		return 0, fmt.Errorf("progress reconciler not configured")
	}
	start := time.Now()
	res, err := r.structure.RecomputeCourse(ctx, domainagg.RecomputeCourseInput{CourseID: courseID})
	if err != nil {
		r.metrics.ObserveReconcile("error", 0, time.Since(start))
		return 0, err
	}
	r.metrics.ObserveReconcile("ok", len(res.Recomputed), time.Since(start))
	if r.notifier != nil {
		r.notifier.ProgressUpdated(ctx, res.Recomputed...)
	}
	return len(res.Recomputed), nil
}

func (r *progressReconciler) ReconcileAll(ctx context.Context) (ReconcileReport, error) {
	report := ReconcileReport{Failed: map[uuid.UUID]error{}}
	if r.courses == nil || r.structure == nil {
		return report, fmt.Errorf("progress reconciler not configured")
	}
	start := time.Now()
	ids, err := r.courses.ListIDs(dbctx.Context{Ctx: ctx})
	if err != nil {
		return report, err
	}
	report.Courses = len(ids)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			n, err := r.ReconcileCourse(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// A course deleted mid-run is not a failure.
				if domainagg.IsKind(err, domainagg.KindCourseNotFound) {
					return nil
				}
				report.Failed[id] = err
				return nil
			}
			report.Enrollments += n
			return nil
		})
	}
	waitErr := g.Wait()
	report.Duration = time.Since(start)

	r.log.Info("progress reconcile finished",
		"courses", report.Courses,
		"enrollments", report.Enrollments,
		"failed", len(report.Failed),
		"duration", report.Duration.String(),
	)
	if waitErr != nil {
		return report, waitErr
	}
	if len(report.Failed) > 0 {
		errs := make([]error, 0, len(report.Failed))
		for id, err := range report.Failed {
			errs = append(errs, fmt.Errorf("course %s: %w", id, err))
		}
		return report, errors.Join(errs...)
	}
	return report, nil
}

func (r *progressReconciler) Schedule(ctx context.Context, spec string) (func(), error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return func() {}, nil
	}
	cl := cronLogger{log: r.log}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	if _, err := c.AddFunc(spec, func() {
		if _, err := r.ReconcileAll(ctx); err != nil {
			r.log.Warn("scheduled progress reconcile failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid reconcile schedule %q: %w", spec, err)
	}
	c.Start()
	r.log.Info("progress reconcile scheduled", "spec", spec)
	return func() { <-c.Stop().Done() }, nil
}

// cronLogger adapts the structured logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
