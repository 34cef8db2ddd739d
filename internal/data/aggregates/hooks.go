package aggregates

import (
	"strings"
	"time"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/observability"
)

// Hooks receives one ObserveOperation per aggregate write, plus a conflict or
// retry signal when the write lost a race or hit a transient store failure.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string, kind domainagg.ErrorKind)
	IncRetry(name string, kind domainagg.ErrorKind)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string, domainagg.ErrorKind)        {}
func (noopHooks) IncRetry(string, domainagg.ErrorKind)           {}

type observabilityHooks struct {
	metrics *observability.Metrics
}

func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return &observabilityHooks{metrics: metrics}
}

func (h *observabilityHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h *observabilityHooks) IncConflict(name string, kind domainagg.ErrorKind) {
	h.metrics.IncAggregateConflict(strings.TrimSpace(name), kindLabel(kind))
}

func (h *observabilityHooks) IncRetry(name string, kind domainagg.ErrorKind) {
	h.metrics.IncAggregateRetry(strings.TrimSpace(name), kindLabel(kind))
}

// kindLabel keeps unclassified store errors in their own series.
func kindLabel(kind domainagg.ErrorKind) string {
	if kind == "" {
		return "unclassified"
	}
	return string(kind)
}
