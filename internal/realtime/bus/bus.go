package bus

import (
	"context"

	"github.com/yungbote/coursetrack-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.Message) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.Message)) error
	Close() error
}

type noopBus struct{}

// NewNoopBus drops every message. Used when no broker is configured.
func NewNoopBus() Bus { return noopBus{} }

func (noopBus) Publish(context.Context, realtime.Message) error { return nil }

func (noopBus) StartForwarder(context.Context, func(realtime.Message)) error { return nil }

func (noopBus) Close() error { return nil }
