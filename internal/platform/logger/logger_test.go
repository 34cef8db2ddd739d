package logger

import (
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSensitiveFieldsAreRedactedAndUsersHashed(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := fromCore(core).With("aggregate", "Learning.CompletionAggregate")

	log.Info("module completed",
		"user_id", "5b7c1f0e-4a57-4e0b-9a55-1d1b8f2a9c11",
		"db_dsn", "host=localhost password=x",
		"progress", 0.5,
	)

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("entries: want=1 got=%d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["aggregate"] != "Learning.CompletionAggregate" {
		t.Fatalf("child logger field lost: %+v", fields)
	}
	if fields["db_dsn"] != "[REDACTED]" {
		t.Fatalf("dsn should be redacted, got %v", fields["db_dsn"])
	}
	uid, _ := fields["user_id"].(string)
	if !strings.HasPrefix(uid, "hash:") || len(uid) != len("hash:")+12 {
		t.Fatalf("user_id should be hashed, got %q", uid)
	}
	if fields["progress"] != 0.5 {
		t.Fatalf("plain values pass through, got %v", fields["progress"])
	}
}

func TestHashIsStablePerUser(t *testing.T) {
	a := hashValue("user-a")
	if a != hashValue("user-a") {
		t.Fatalf("hash must be deterministic")
	}
	if a == hashValue("user-b") {
		t.Fatalf("different users must not collide")
	}
	if hashValue("") != "" {
		t.Fatalf("empty values stay empty")
	}
}

func TestOddKeyValuesAreKept(t *testing.T) {
	out := sanitizeKVs([]interface{}{"course_id", "c1", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected sanitize output: %v", out)
	}
}
