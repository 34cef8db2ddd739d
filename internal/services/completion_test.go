package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/observability"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

func TestCompletionServiceNotifiesAfterCommit(t *testing.T) {
	metrics := observability.New()
	notifier := &spyNotifier{}
	done := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	fake := &fakeCompletionAggregate{
		completeResult: domainagg.CompleteModuleResult{
			CourseID: uuid.New(),
			Progress: domainagg.ProgressSnapshot{Completed: 2, Total: 2, Progress: 1, CompletedAt: &done},
		},
		removeResult: domainagg.RemoveCompletionResult{
			Progress: domainagg.ProgressSnapshot{Completed: 1, Total: 2, Progress: 0.5},
		},
	}
	svc := NewCompletionService(logger.Nop(), fake, nil, notifier, metrics)

	if _, err := svc.CompleteModule(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("CompleteModule: %v", err)
	}
	if _, err := svc.RemoveCompletion(context.Background(), uuid.New()); err != nil {
		t.Fatalf("RemoveCompletion: %v", err)
	}
	if notifier.count() != 2 {
		t.Fatalf("want 2 notifications, got %d", notifier.count())
	}
	if metrics.ModuleCompletions("completed") != 1 || metrics.ModuleCompletions("removed") != 1 {
		t.Fatalf("transition counters: completed=%v removed=%v", metrics.ModuleCompletions("completed"), metrics.ModuleCompletions("removed"))
	}
}

func TestCompletionServiceFailureDoesNotNotify(t *testing.T) {
	metrics := observability.New()
	notifier := &spyNotifier{}
	fake := &fakeCompletionAggregate{
		completeErr: domainagg.NewKindError(domainagg.KindNotEnrolled, "op", "not enrolled", nil),
	}
	svc := NewCompletionService(logger.Nop(), fake, nil, notifier, metrics)

	_, err := svc.CompleteModule(context.Background(), uuid.New(), uuid.New())
	if !domainagg.IsKind(err, domainagg.KindNotEnrolled) {
		t.Fatalf("expected not_enrolled, got %v", err)
	}
	if notifier.count() != 0 {
		t.Fatalf("failed write must not notify")
	}
	if metrics.ModuleCompletions("not_enrolled") != 1 {
		t.Fatalf("not_enrolled counter: %v", metrics.ModuleCompletions("not_enrolled"))
	}

	fake.completeErr = domainagg.NewKindError(domainagg.KindAlreadyCompleted, "op", "dup", nil)
	_, _ = svc.CompleteModule(context.Background(), uuid.New(), uuid.New())
	if metrics.ModuleCompletions("already_completed") != 1 {
		t.Fatalf("already_completed counter: %v", metrics.ModuleCompletions("already_completed"))
	}
}
