package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/coursetrack-backend/internal/realtime"
)

// MemoryBus delivers messages to in-process forwarders synchronously, in publish order.
// It also keeps every published message for inspection.
type MemoryBus struct {
	mu        sync.Mutex
	handlers  []func(realtime.Message)
	published []realtime.Message
	closed    bool
}

func NewMemoryBus() *MemoryBus { return &MemoryBus{} }

func (b *MemoryBus) Publish(_ context.Context, msg realtime.Message) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return fmt.Errorf("memory bus closed")
	}
	b.published = append(b.published, msg)
	handlers := append([]func(realtime.Message){}, b.handlers...)
	b.mu.Unlock()

	for _, h := range handlers {
		h(msg)
	}
	return nil
}

func (b *MemoryBus) StartForwarder(_ context.Context, onMsg func(m realtime.Message)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, onMsg)
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = nil
	return nil
}

// Published returns a copy of every message published so far.
func (b *MemoryBus) Published() []realtime.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]realtime.Message(nil), b.published...)
}
