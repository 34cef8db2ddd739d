package testutil

import (
	"sync"
	"testing"
	"time"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
)

func TestHooksRecorder_CapturesSignals(t *testing.T) {
	h := &HooksRecorder{}
	if _, ok := h.Last(); ok {
		t.Fatalf("empty recorder should have no last event")
	}
	h.ObserveOperation("Learning.Completion.CompleteModule", "success", 10*time.Millisecond)
	h.ObserveOperation("Learning.Completion.CompleteModule", "conflict", time.Millisecond)
	h.IncConflict("Learning.Completion.CompleteModule", domainagg.KindAlreadyCompleted)
	h.IncRetry("Learning.Grading.GradeAndRecord", domainagg.KindTxTimeout)

	st := h.Statuses("Learning.Completion.CompleteModule")
	if st["success"] != 1 || st["conflict"] != 1 {
		t.Fatalf("unexpected statuses: %+v", st)
	}
	last, ok := h.Last()
	if !ok || last.Status != "conflict" {
		t.Fatalf("unexpected last event: %+v", last)
	}
	if len(h.Conflicts) != 1 || len(h.Retries) != 1 {
		t.Fatalf("unexpected counters conflicts=%v retries=%v", h.Conflicts, h.Retries)
	}
	if got := h.ConflictKinds("Learning.Completion.CompleteModule")[domainagg.KindAlreadyCompleted]; got != 1 {
		t.Fatalf("conflict kinds: %+v", h.ConflictKinds("Learning.Completion.CompleteModule"))
	}
}

func TestHooksRecorder_ConcurrentWriters(t *testing.T) {
	h := &HooksRecorder{}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.ObserveOperation("op", "success", 0)
		}()
	}
	wg.Wait()
	if got := h.Statuses("op")["success"]; got != 16 {
		t.Fatalf("want 16 events, got %d", got)
	}
}
