package aggregates

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"gorm.io/gorm"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
)

// TxRunner provides a shared transaction boundary primitive for aggregate writes.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

// TxOptions bounds a transaction. MaxWait covers acquiring a connection and BEGIN;
// Timeout covers the whole transaction including commit.
type TxOptions struct {
	MaxWait time.Duration
	Timeout time.Duration
}

func DefaultTxOptions() TxOptions {
	return TxOptions{MaxWait: 5 * time.Second, Timeout: 15 * time.Second}
}

type gormTxRunner struct {
	db   *gorm.DB
	opts TxOptions
}

// NewGormTxRunner returns a transaction runner backed by GORM transactions with default bounds.
func NewGormTxRunner(db *gorm.DB) TxRunner {
	return NewGormTxRunnerWithOptions(db, DefaultTxOptions())
}

func NewGormTxRunnerWithOptions(db *gorm.DB, opts TxOptions) TxRunner {
	return &gormTxRunner{db: db, opts: opts}
}

func (r *gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	if r == nil || r.db == nil {
		return domainagg.NewError(domainagg.CodeInternal, "aggregate.tx", "transaction runner has nil db", nil)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}
	ctx, cancelWait := context.WithCancelCause(ctx)
	defer cancelWait(nil)

	var started atomic.Bool
	if r.opts.MaxWait > 0 {
		timer := time.AfterFunc(r.opts.MaxWait, func() {
			if !started.Load() {
				cancelWait(errTxAcquireTimeout)
			}
		})
		defer timer.Stop()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		started.Store(true)
		if cause := context.Cause(ctx); cause != nil {
			return cause
		}
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	}, r.txOptions()...)
	if err != nil && !started.Load() && errors.Is(context.Cause(ctx), errTxAcquireTimeout) {
		return errors.Join(errTxAcquireTimeout, err)
	}
	return err
}

// txOptions asks Postgres for read committed explicitly; SQLite transactions are serializable already.
func (r *gormTxRunner) txOptions() []*sql.TxOptions {
	if r.db.Dialector != nil && r.db.Dialector.Name() == "postgres" {
		return []*sql.TxOptions{{Isolation: sql.LevelReadCommitted}}
	}
	return nil
}
