package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/observability"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

// CompletionService fronts the completion and enrollment aggregates.
// Events and metrics are emitted only after the aggregate transaction committed.
type CompletionService interface {
	CompleteModule(ctx context.Context, userID, moduleID uuid.UUID) (domainagg.CompleteModuleResult, error)
	RemoveCompletion(ctx context.Context, completionID uuid.UUID) (domainagg.RemoveCompletionResult, error)
	Enroll(ctx context.Context, userID, courseID uuid.UUID) (domainagg.EnrollResult, error)
	Unenroll(ctx context.Context, enrollmentID uuid.UUID) (domainagg.UnenrollResult, error)
}

type completionService struct {
	log         *logger.Logger
	completions domainagg.CompletionAggregate
	enrollments domainagg.EnrollmentAggregate
	notifier    ProgressNotifier
	metrics     *observability.Metrics
}

func NewCompletionService(
	baseLog *logger.Logger,
	completions domainagg.CompletionAggregate,
	enrollments domainagg.EnrollmentAggregate,
	notifier ProgressNotifier,
	metrics *observability.Metrics,
) CompletionService {
	return &completionService{
		log:         baseLog.With("service", "CompletionService"),
		completions: completions,
		enrollments: enrollments,
		notifier:    notifier,
		metrics:     metrics,
	}
}

func (s *completionService) CompleteModule(ctx context.Context, userID, moduleID uuid.UUID) (domainagg.CompleteModuleResult, error) {
	if s.completions == nil {
		return domainagg.CompleteModuleResult{}, fmt.Errorf("completion service not configured")
	}
	res, err := s.completions.CompleteModule(ctx, domainagg.CompleteModuleInput{UserID: userID, ModuleID: moduleID})
	if err != nil {
		switch domainagg.KindOf(err) {
		case domainagg.KindAlreadyCompleted:
			s.metrics.IncModuleCompletion("already_completed")
		case domainagg.KindNotEnrolled:
			s.metrics.IncModuleCompletion("not_enrolled")
		}
		return res, err
	}
	s.metrics.IncModuleCompletion("completed")
	if res.Progress.Completed == res.Progress.Total && res.Progress.CompletedAt != nil {
		s.metrics.IncCourseCompletion()
		s.log.Info("course completed", "user_id", userID, "course_id", res.CourseID)
	}
	s.notify(ctx, res.Progress)
	return res, nil
}

func (s *completionService) RemoveCompletion(ctx context.Context, completionID uuid.UUID) (domainagg.RemoveCompletionResult, error) {
	if s.completions == nil {
		return domainagg.RemoveCompletionResult{}, fmt.Errorf("completion service not configured")
	}
	res, err := s.completions.RemoveCompletion(ctx, domainagg.RemoveCompletionInput{CompletionID: completionID})
	if err != nil {
		return res, err
	}
	s.metrics.IncModuleCompletion("removed")
	s.notify(ctx, res.Progress)
	return res, nil
}

func (s *completionService) Enroll(ctx context.Context, userID, courseID uuid.UUID) (domainagg.EnrollResult, error) {
	if s.enrollments == nil {
		return domainagg.EnrollResult{}, fmt.Errorf("completion service not configured")
	}
	res, err := s.enrollments.Enroll(ctx, domainagg.EnrollInput{UserID: userID, CourseID: courseID})
	if err != nil {
		return res, err
	}
	s.notify(ctx, res.Progress)
	return res, nil
}

func (s *completionService) Unenroll(ctx context.Context, enrollmentID uuid.UUID) (domainagg.UnenrollResult, error) {
	if s.enrollments == nil {
		return domainagg.UnenrollResult{}, fmt.Errorf("completion service not configured")
	}
	return s.enrollments.Unenroll(ctx, domainagg.UnenrollInput{EnrollmentID: enrollmentID})
}

func (s *completionService) notify(ctx context.Context, snaps ...domainagg.ProgressSnapshot) {
	if s.notifier == nil {
		return
	}
	s.notifier.ProgressUpdated(ctx, snaps...)
}
