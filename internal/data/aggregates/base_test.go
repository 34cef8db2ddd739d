package aggregates

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	domainagg "github.com/yungbote/coursetrack-backend/internal/domain/aggregates"
	"github.com/yungbote/coursetrack-backend/internal/platform/dbctx"
)

func TestExecuteWriteObservesSuccessStatus(t *testing.T) {
	hooks := &spyHooks{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, testContract, "aggregate.test.success", func(_ dbctx.Context) error { return nil })
	if err != nil {
		t.Fatalf("executeWrite success: %v", err)
	}
	if len(hooks.Operations) != 1 {
		t.Fatalf("operations count: want=1 got=%d", len(hooks.Operations))
	}
	if hooks.Operations[0].Status != "success" {
		t.Fatalf("operation status: want=success got=%s", hooks.Operations[0].Status)
	}
}

func TestExecuteWriteObservesInvariantViolationStatus(t *testing.T) {
	hooks := &spyHooks{}

	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, testContract, "aggregate.test.invariant", func(_ dbctx.Context) error {
		return InvariantError("completed exceeds total")
	})
	if !domainagg.IsCode(err, domainagg.CodeInvariantViolation) {
		t.Fatalf("expected invariant violation code, got=%v", err)
	}
	if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeInvariantViolation) {
		t.Fatalf("unexpected op status: %+v", hooks.Operations)
	}
}

func TestExecuteWriteKeepsKindErrors(t *testing.T) {
	hooks := &spyHooks{}
	err := executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Hooks:  hooks,
	}, testContract, "aggregate.test.kind", func(_ dbctx.Context) error {
		return domainagg.NewKindError(domainagg.KindAlreadyCompleted, "aggregate.test.kind", "dup", nil)
	})
	if !domainagg.IsKind(err, domainagg.KindAlreadyCompleted) {
		t.Fatalf("expected already_completed kind, got %v", err)
	}
	if len(hooks.Conflicts) != 1 || hooks.Conflicts[0].Kind != domainagg.KindAlreadyCompleted {
		t.Fatalf("already_completed is a conflict, hooks=%+v", hooks.Conflicts)
	}
}

func TestExecuteWriteTracksConflictAndRetryCounters(t *testing.T) {
	t.Run("conflict", func(t *testing.T) {
		hooks := &spyHooks{}
		err := executeWrite(context.Background(), BaseDeps{
			Runner: spyTxRunner{},
			Hooks:  hooks,
		}, testContract, "aggregate.test.conflict", func(_ dbctx.Context) error {
			return ConflictError("duplicate completion")
		})
		if !domainagg.IsCode(err, domainagg.CodeConflict) {
			t.Fatalf("expected conflict code, got=%v", err)
		}
		if len(hooks.Conflicts) != 1 || hooks.Conflicts[0].Name != "aggregate.test.conflict" {
			t.Fatalf("conflict hooks: %+v", hooks.Conflicts)
		}
		if len(hooks.Retries) != 0 {
			t.Fatalf("retry hooks should be empty, got=%+v", hooks.Retries)
		}
	})

	t.Run("tx timeout", func(t *testing.T) {
		hooks := &spyHooks{}
		err := executeWrite(context.Background(), BaseDeps{
			Runner: spyTxRunner{},
			Hooks:  hooks,
		}, testContract, "aggregate.test.retry", func(_ dbctx.Context) error {
			return fmt.Errorf("update enrollment: %w", context.DeadlineExceeded)
		})
		if !domainagg.IsKind(err, domainagg.KindTxTimeout) {
			t.Fatalf("expected tx_timeout kind, got=%v", err)
		}
		if len(hooks.Retries) != 1 || hooks.Retries[0].Name != "aggregate.test.retry" || hooks.Retries[0].Kind != domainagg.KindTxTimeout {
			t.Fatalf("retry hooks: %+v", hooks.Retries)
		}
		if len(hooks.Operations) != 1 || hooks.Operations[0].Status != string(domainagg.CodeRetryable) {
			t.Fatalf("unexpected op status: %+v", hooks.Operations)
		}
	})
}

func TestExecuteWriteRecordsSpan(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_ = executeWrite(context.Background(), BaseDeps{
		Runner: spyTxRunner{},
		Tracer: tp.Tracer("test"),
	}, testContract, "aggregate.test.span", func(_ dbctx.Context) error {
		return errors.New("boom")
	})

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans: want=1 got=%d", len(spans))
	}
	if spans[0].Name() != "aggregate.test.span" {
		t.Fatalf("span name: %q", spans[0].Name())
	}
	if spans[0].Status().Code != codes.Error {
		t.Fatalf("span status: %+v", spans[0].Status())
	}
	attrs := map[attribute.Key]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value.Emit()
	}
	if attrs["aggregate.name"] != testContract.Name || attrs["aggregate.lock"] != string(domainagg.LockEnrollment) {
		t.Fatalf("span attributes: %+v", attrs)
	}
}

func TestAggregateContractsDeclareTheirKinds(t *testing.T) {
	cases := []struct {
		contract domainagg.Contract
		declared []domainagg.ErrorKind
		foreign  domainagg.ErrorKind
	}{
		{domainagg.QuizGradingAggregateContract, []domainagg.ErrorKind{domainagg.KindQuizNotFound, domainagg.KindInvalidOption, domainagg.KindEmptySelection}, domainagg.KindNotEnrolled},
		{domainagg.CompletionAggregateContract, []domainagg.ErrorKind{domainagg.KindAlreadyCompleted, domainagg.KindNotEnrolled, domainagg.KindCompletionNotFound}, domainagg.KindInvalidOption},
		{domainagg.EnrollmentAggregateContract, []domainagg.ErrorKind{domainagg.KindAlreadyEnrolled, domainagg.KindCourseNotFound}, domainagg.KindAlreadyCompleted},
		{domainagg.CourseStructureAggregateContract, []domainagg.ErrorKind{domainagg.KindCourseNotFound, domainagg.KindModuleNotFound}, domainagg.KindQuizNotFound},
	}
	for _, tc := range cases {
		for _, k := range tc.declared {
			if !tc.contract.Declares(k) {
				t.Fatalf("%s should declare %s", tc.contract.Name, k)
			}
		}
		if tc.contract.Declares(tc.foreign) {
			t.Fatalf("%s should not declare %s", tc.contract.Name, tc.foreign)
		}
		if !tc.contract.Declares(domainagg.KindTxTimeout) || !tc.contract.Declares(domainagg.KindStoreUnavailable) {
			t.Fatalf("%s should imply transient kinds", tc.contract.Name)
		}
	}
}

func TestAggregateErrorStatus(t *testing.T) {
	if got := aggregateErrorStatus(nil); got != "success" {
		t.Fatalf("nil status: want=success got=%s", got)
	}
	if got := aggregateErrorStatus(InvariantError("x")); got != string(domainagg.CodeInvariantViolation) {
		t.Fatalf("invariant status: got=%s", got)
	}
	if got := aggregateErrorStatus(ConflictError("x")); got != string(domainagg.CodeConflict) {
		t.Fatalf("conflict status: got=%s", got)
	}
	if got := aggregateErrorStatus(RetryableError("x")); got != string(domainagg.CodeRetryable) {
		t.Fatalf("retry status: got=%s", got)
	}
	if got := aggregateErrorStatus(context.DeadlineExceeded); got != string(domainagg.CodeRetryable) {
		t.Fatalf("deadline status: got=%s", got)
	}
}

var testContract = domainagg.Contract{
	Name:  "aggregate.test",
	Lock:  domainagg.LockEnrollment,
	Kinds: []domainagg.ErrorKind{domainagg.KindAlreadyCompleted},
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []spySignal
	Retries    []spySignal
}

type spySignal struct {
	Name string
	Kind domainagg.ErrorKind
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string, kind domainagg.ErrorKind) {
	h.Conflicts = append(h.Conflicts, spySignal{Name: name, Kind: kind})
}

func (h *spyHooks) IncRetry(name string, kind domainagg.ErrorKind) {
	h.Retries = append(h.Retries, spySignal{Name: name, Kind: kind})
}
