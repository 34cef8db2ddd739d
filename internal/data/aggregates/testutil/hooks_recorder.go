package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/coursetrack-backend/internal/data/aggregates"
	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
)

// HooksRecorder captures aggregate hook signals in tests. Safe for concurrent writers.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []SignalEvent
	Retries    []SignalEvent
}

// SignalEvent is one conflict or retry signal.
type SignalEvent struct {
	Name string
	Kind domainagg.ErrorKind
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string, kind domainagg.ErrorKind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, SignalEvent{Name: name, Kind: kind})
}

func (h *HooksRecorder) IncRetry(name string, kind domainagg.ErrorKind) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, SignalEvent{Name: name, Kind: kind})
}

// ConflictKinds returns kind -> count of conflict signals for the named operation.
func (h *HooksRecorder) ConflictKinds(name string) map[domainagg.ErrorKind]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := map[domainagg.ErrorKind]int{}
	for _, c := range h.Conflicts {
		if c.Name == name {
			out[c.Kind]++
		}
	}
	return out
}

// Statuses returns status -> count for the named operation.
func (h *HooksRecorder) Statuses(name string) map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := map[string]int{}
	for _, op := range h.Operations {
		if op.Name == name {
			out[op.Status]++
		}
	}
	return out
}

// Last returns the most recent operation event, or false when nothing was recorded.
func (h *HooksRecorder) Last() (OperationEvent, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.Operations) == 0 {
		return OperationEvent{}, false
	}
	return h.Operations[len(h.Operations)-1], true
}
