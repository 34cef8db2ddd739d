package observability

import (
	"context"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" x-api-key = abc , broken, =v, k= , tenant=edu ")
	if len(got) != 2 || got["x-api-key"] != "abc" || got["tenant"] != "edu" {
		t.Fatalf("unexpected headers: %+v", got)
	}
	if parseHeaders("  ") != nil || parseHeaders("nope") != nil {
		t.Fatalf("empty or malformed input should yield nil")
	}
}

func TestClampRatio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0: 0, 0.25: 0.25, 1: 1, 3: 1} {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v)=%v want %v", in, got, want)
		}
	}
}

func TestBuildTraceExporter(t *testing.T) {
	ctx := context.Background()

	stdout, err := buildTraceExporter(ctx, nil, OtelConfig{})
	if err != nil || stdout == nil {
		t.Fatalf("stdout exporter: exp=%v err=%v", stdout, err)
	}
	_ = stdout.Shutdown(ctx)

	otlp, err := buildTraceExporter(ctx, nil, OtelConfig{Endpoint: "localhost:4318", Insecure: true, Headers: "a=b"})
	if err != nil || otlp == nil {
		t.Fatalf("otlp exporter: exp=%v err=%v", otlp, err)
	}
	_ = otlp.Shutdown(ctx)
}

func TestTracerWithoutInitIsUsable(t *testing.T) {
	_, span := Tracer().Start(context.Background(), "Learning.Completion.CompleteModule")
	span.End()
}
