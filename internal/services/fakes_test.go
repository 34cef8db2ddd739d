package services

import (
	"context"
	"errors"
	"sync"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/realtime"
)

type fakeGradingAggregate struct {
	result domainagg.GradeAttemptResult
	err    error
	calls  int
	last   domainagg.GradeAttemptInput
}

func (f *fakeGradingAggregate) Contract() domainagg.Contract {
	return domainagg.QuizGradingAggregateContract
}

func (f *fakeGradingAggregate) GradeAndRecord(_ context.Context, in domainagg.GradeAttemptInput) (domainagg.GradeAttemptResult, error) {
	f.calls++
	f.last = in
	return f.result, f.err
}

type fakeCompletionAggregate struct {
	completeResult domainagg.CompleteModuleResult
	completeErr    error
	removeResult   domainagg.RemoveCompletionResult
	removeErr      error
}

func (f *fakeCompletionAggregate) Contract() domainagg.Contract {
	return domainagg.CompletionAggregateContract
}

func (f *fakeCompletionAggregate) CompleteModule(context.Context, domainagg.CompleteModuleInput) (domainagg.CompleteModuleResult, error) {
	return f.completeResult, f.completeErr
}

func (f *fakeCompletionAggregate) RemoveCompletion(context.Context, domainagg.RemoveCompletionInput) (domainagg.RemoveCompletionResult, error) {
	return f.removeResult, f.removeErr
}

type spyNotifier struct {
	mu    sync.Mutex
	snaps []domainagg.ProgressSnapshot
}

func (s *spyNotifier) ProgressUpdated(_ context.Context, snaps ...domainagg.ProgressSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snaps...)
}

func (s *spyNotifier) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}

type failingBus struct{}

func (failingBus) Publish(context.Context, realtime.Message) error {
	return errors.New("broker down")
}

func (failingBus) StartForwarder(context.Context, func(realtime.Message)) error { return nil }

func (failingBus) Close() error { return nil }
