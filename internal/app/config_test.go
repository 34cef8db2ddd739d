package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{
		"CONFIG_FILE", "DB_DRIVER", "TX_MAX_WAIT_MS", "TX_TIMEOUT_MS", "COMPLETED_AT_POLICY",
		"REDIS_ADDR", "REDIS_CHANNEL", "METRICS_ADDR",
	} {
		t.Setenv(k, "")
	}
	// Setenv registers the restore; the unset makes the key absent rather than empty.
	t.Setenv("PROGRESS_RECONCILE_SCHEDULE", "")
	os.Unsetenv("PROGRESS_RECONCILE_SCHEDULE")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DB.Driver != "postgres" || cfg.Tx.MaxWait() != 5*time.Second || cfg.Tx.Timeout() != 15*time.Second {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.Progress.CompletedAtPolicy != "derive" || cfg.Progress.ReconcileSchedule != "0 3 * * *" {
		t.Fatalf("progress defaults: %+v", cfg.Progress)
	}
	if cfg.Redis.Channel != "progress" || cfg.Metrics.Addr != ":9090" {
		t.Fatalf("redis/metrics defaults: %+v %+v", cfg.Redis, cfg.Metrics)
	}
}

func TestLoadConfigYAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "coursetrack.yaml")
	yml := `
db:
  driver: sqlite
  sqlite_path: /tmp/from-yaml.db
tx:
  max_wait_ms: 250
progress:
  completed_at_policy: clear_on_removal
  reconcile_concurrency: 9
redis:
  channel: from-yaml
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DB_DRIVER", "")
	t.Setenv("COMPLETED_AT_POLICY", "")
	t.Setenv("REDIS_CHANNEL", "from-env")
	t.Setenv("TX_MAX_WAIT_MS", "")
	t.Setenv("PROGRESS_RECONCILE_CONCURRENCY", "")
	t.Setenv("PROGRESS_RECONCILE_SCHEDULE", "")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DB.Driver != "sqlite" || cfg.DB.SQLitePath != "/tmp/from-yaml.db" {
		t.Fatalf("yaml db: %+v", cfg.DB)
	}
	if cfg.Tx.MaxWait() != 250*time.Millisecond || cfg.Tx.TimeoutMS != 15000 {
		t.Fatalf("yaml tx: %+v", cfg.Tx)
	}
	if cfg.Progress.CompletedAtPolicy != "clear_on_removal" || cfg.Progress.ReconcileConcurrency != 9 {
		t.Fatalf("yaml progress: %+v", cfg.Progress)
	}
	if cfg.Redis.Channel != "from-env" {
		t.Fatalf("env should win over yaml, got %q", cfg.Redis.Channel)
	}
	if cfg.Progress.ReconcileSchedule != "" {
		t.Fatalf("explicit empty schedule disables reconcile, got %q", cfg.Progress.ReconcileSchedule)
	}
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DB_DRIVER", "mysql")
	if _, err := LoadConfig(logger.Nop()); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("COMPLETED_AT_POLICY", "sometimes")
	if _, err := LoadConfig(logger.Nop()); err == nil {
		t.Fatalf("expected unsupported policy error")
	}
}
