package services

import (
	"context"
	"time"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/observability"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
	"github.com/yungbote/coursetrack-backend/internal/realtime"
	"github.com/yungbote/coursetrack-backend/internal/realtime/bus"
)

// ProgressNotifier publishes progress.updated after a write has committed.
// Publishing is best effort: failures are logged and counted, never returned.
type ProgressNotifier interface {
	ProgressUpdated(ctx context.Context, snaps ...domainagg.ProgressSnapshot)
}

type progressNotifier struct {
	bus     bus.Bus
	log     *logger.Logger
	metrics *observability.Metrics
	timeout time.Duration
}

func NewProgressNotifier(b bus.Bus, baseLog *logger.Logger, metrics *observability.Metrics) ProgressNotifier {
	if b == nil {
		b = bus.NewNoopBus()
	}
	return &progressNotifier{
		bus:     b,
		log:     baseLog.With("service", "ProgressNotifier"),
		metrics: metrics,
		timeout: 2 * time.Second,
	}
}

func (n *progressNotifier) ProgressUpdated(ctx context.Context, snaps ...domainagg.ProgressSnapshot) {
	for _, s := range snaps {
		msg := realtime.NewProgressMessage(realtime.ProgressEvent{
			UserID:      s.UserID,
			CourseID:    s.CourseID,
			Progress:    s.Progress,
			CompletedAt: s.CompletedAt,
		})
		// The write already committed, so a cancelled request must not drop the event.
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
		err := n.bus.Publish(pubCtx, msg)
		cancel()
		if err != nil {
			n.metrics.IncEventPublished("error")
			n.log.Warn("progress event publish failed",
				"user_id", s.UserID,
				"course_id", s.CourseID,
				"error", err,
			)
			continue
		}
		n.metrics.IncEventPublished("ok")
	}
}
