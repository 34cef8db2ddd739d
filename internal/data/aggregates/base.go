package aggregates

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/observability"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
	Tracer trace.Tracer
	// Now stamps completion times; tests pin it.
	Now func() time.Time
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Tracer == nil {
		d.Tracer = observability.Tracer()
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = func() time.Time { return time.Now().UTC() }
	}
	return d
}

func executeWrite(ctx context.Context, deps BaseDeps, contract domainagg.Contract, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	deps = deps.withDefaults()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	ctx, span := deps.Tracer.Start(ctx, op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("aggregate.name", contract.Name),
			attribute.String("aggregate.lock", string(contract.Lock)),
		),
	)
	defer span.End()

	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if mapped != nil {
		status = aggregateErrorStatus(mapped)
		if domainagg.IsCode(mapped, domainagg.CodeConflict) {
			deps.Hooks.IncConflict(op, domainagg.KindOf(mapped))
		}
		if domainagg.IsCode(mapped, domainagg.CodeRetryable) {
			deps.Hooks.IncRetry(op, domainagg.KindOf(mapped))
		}
		span.RecordError(mapped)
		span.SetStatus(codes.Error, status)
		span.SetAttributes(attribute.String("aggregate.error_kind", string(domainagg.KindOf(mapped))))
		if kind := domainagg.KindOf(mapped); kind != "" && !contract.Declares(kind) {
			deps.Log.Error("aggregate returned undeclared error kind", "op", op, "aggregate", contract.Name, "kind", kind)
		}
		logWriteFailure(deps.Log, op, mapped)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.SetAttributes(attribute.String("aggregate.status", status))
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}

// logWriteFailure logs caller-caused rejections at debug and infrastructure failures at warn.
func logWriteFailure(log *logger.Logger, op string, err error) {
	code := domainagg.CodeOf(err)
	kv := []interface{}{"op", op, "code", code, "kind", domainagg.KindOf(err), "error", err}
	switch code {
	case domainagg.CodeRetryable, domainagg.CodeInternal, domainagg.CodeInvariantViolation:
		log.Warn("aggregate write failed", kv...)
	default:
		log.Debug("aggregate write rejected", kv...)
	}
}

func aggregateErrorStatus(err error) string {
	if err == nil {
		return "success"
	}
	code := strings.TrimSpace(string(domainagg.CodeOf(err)))
	if code == "" {
		code = strings.TrimSpace(string(domainagg.CodeOf(MapError("aggregate.status", err))))
	}
	if code == "" {
		return "failure"
	}
	return code
}
