package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/coursetrack-backend/internal/data/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
)

// InjectedTxRunner wraps a TxRunner with failure injection.
// FailAfterBody runs the body inside the real transaction and then fails it,
// which forces the delegate to roll back everything the body wrote.
// Without a delegate the body runs with no transaction.
type InjectedTxRunner struct {
	Delegate aggregates.TxRunner

	FailBegin     error
	FailAfterBody error

	mu            sync.Mutex
	BeginCalls    int
	BodyCalls     int
	RollbackCalls int
	CommitCalls   int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failBegin, failAfter := r.FailBegin, r.FailAfterBody
	r.mu.Unlock()

	if failBegin != nil {
		return failBegin
	}
	body := func(dbc dbctx.Context) error {
		r.mu.Lock()
		r.BodyCalls++
		r.mu.Unlock()
		if fn != nil {
			if err := fn(dbc); err != nil {
				return err
			}
		}
		return failAfter
	}

	var err error
	if r.Delegate != nil {
		err = r.Delegate.InTx(ctx, body)
	} else {
		err = body(dbctx.Context{Ctx: ctx})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.RollbackCalls++
	} else {
		r.CommitCalls++
	}
	return err
}
