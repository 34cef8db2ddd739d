package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/coursetrack-backend/internal/platform/logger"
)

type Metrics struct {
	aggregateOps       *CounterVec
	aggregateLatency   *HistogramVec
	aggregateConflicts *CounterVec
	aggregateRetries   *CounterVec

	quizAttempts      *CounterVec
	moduleCompletions *CounterVec
	courseCompletions *Counter

	reconcileRuns        *CounterVec
	reconcileLatency     *HistogramVec
	reconcileEnrollments *Counter

	eventsPublished *CounterVec

	dbPool      *GaugeVec
	redisUp     *Gauge
	redisPingMs *Gauge
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Init builds the process-wide metrics registry. It returns nil when disabled;
// every Metrics method is safe on a nil receiver.
func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics enabled")
		}
	})
	return instance
}

func Current() *Metrics {
	return instance
}

// New builds an unshared registry.
func New() *Metrics {
	return &Metrics{
		aggregateOps: NewCounterVec("ct_aggregate_operations_total", "Aggregate write operations by operation/status.", []string{"operation", "status"}),
		aggregateLatency: NewHistogramVec(
			"ct_aggregate_operation_duration_seconds",
			"Aggregate write latency in seconds by operation/status.",
			[]string{"operation", "status"},
			nil,
		),
		aggregateConflicts: NewCounterVec("ct_aggregate_conflicts_total", "Aggregate writes rejected by a conflict, by error kind.", []string{"operation", "kind"}),
		aggregateRetries:   NewCounterVec("ct_aggregate_retryable_total", "Aggregate writes failed with a retryable error, by error kind.", []string{"operation", "kind"}),

		quizAttempts:      NewCounterVec("ct_quiz_attempts_total", "Quiz submissions by outcome.", []string{"outcome"}),
		moduleCompletions: NewCounterVec("ct_module_completion_transitions_total", "Module completion transitions by result.", []string{"transition"}),
		courseCompletions: NewCounter("ct_course_completions_total", "Enrollments that reached full completion."),

		reconcileRuns: NewCounterVec("ct_progress_reconcile_runs_total", "Progress reconciliation runs by status.", []string{"status"}),
		reconcileLatency: NewHistogramVec(
			"ct_progress_reconcile_duration_seconds",
			"Progress reconciliation run latency in seconds.",
			[]string{"status"},
			[]float64{0.1, 0.5, 1, 5, 15, 60, 300},
		),
		reconcileEnrollments: NewCounter("ct_progress_reconcile_enrollments_total", "Enrollments recomputed by reconciliation."),

		eventsPublished: NewCounterVec("ct_progress_events_published_total", "Progress events handed to the bus by status.", []string{"status"}),

		dbPool:      NewGaugeVec("ct_db_pool", "database/sql pool statistics.", []string{"stat"}),
		redisUp:     NewGauge("ct_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPingMs: NewGauge("ct_redis_ping_ms", "Last redis ping round trip in milliseconds."),
	}
}

func (m *Metrics) writers() []metricWriter {
	return []metricWriter{
		m.aggregateOps, m.aggregateLatency, m.aggregateConflicts, m.aggregateRetries,
		m.quizAttempts, m.moduleCompletions, m.courseCompletions,
		m.reconcileRuns, m.reconcileLatency, m.reconcileEnrollments,
		m.eventsPublished,
		m.dbPool, m.redisUp, m.redisPingMs,
	}
}

func (m *Metrics) StartServer(ctx context.Context, log *logger.Logger, addr string) {
	if m == nil {
		return
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", m.WriteHTTP)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = srv.Shutdown(shutdownCtx)
		cancel()
	}()
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if log != nil {
				log.Error("metrics server failed", "error", err, "addr", addr)
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, mw := range m.writers() {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAggregateOperation(operation, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.aggregateOps.Inc(operation, status)
	m.aggregateLatency.Observe(dur.Seconds(), operation, status)
}

func (m *Metrics) IncAggregateConflict(operation, kind string) {
	if m == nil {
		return
	}
	m.aggregateConflicts.Inc(operation, kind)
}

func (m *Metrics) IncAggregateRetry(operation, kind string) {
	if m == nil {
		return
	}
	m.aggregateRetries.Inc(operation, kind)
}

// IncQuizAttempt counts a submission as correct, incorrect or rejected.
func (m *Metrics) IncQuizAttempt(outcome string) {
	if m == nil {
		return
	}
	m.quizAttempts.Inc(outcome)
}

func (m *Metrics) IncModuleCompletion(transition string) {
	if m == nil {
		return
	}
	m.moduleCompletions.Inc(transition)
}

func (m *Metrics) IncCourseCompletion() {
	if m == nil {
		return
	}
	m.courseCompletions.Inc()
}

func (m *Metrics) ObserveReconcile(status string, enrollments int, dur time.Duration) {
	if m == nil {
		return
	}
	m.reconcileRuns.Inc(status)
	m.reconcileLatency.Observe(dur.Seconds(), status)
	if enrollments > 0 {
		m.reconcileEnrollments.Add(float64(enrollments))
	}
}

func (m *Metrics) IncEventPublished(status string) {
	if m == nil {
		return
	}
	m.eventsPublished.Inc(status)
}

func (m *Metrics) QuizAttempts(outcome string) float64 {
	if m == nil {
		return 0
	}
	return m.quizAttempts.Value(outcome)
}

func (m *Metrics) ModuleCompletions(transition string) float64 {
	if m == nil {
		return 0
	}
	return m.moduleCompletions.Value(transition)
}

func (m *Metrics) EventsPublished(status string) float64 {
	if m == nil {
		return 0
	}
	return m.eventsPublished.Value(status)
}

func (m *Metrics) StartDBPoolCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbPool.Set(float64(stats.OpenConnections), "open_connections")
				m.dbPool.Set(float64(stats.InUse), "in_use")
				m.dbPool.Set(float64(stats.Idle), "idle")
				m.dbPool.Set(float64(stats.WaitCount), "wait_count")
				m.dbPool.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbPool.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

// StartRedisCollector pings through the caller's client; it never closes it.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb redis.UniversalClient, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPingMs.Set(float64(time.Since(start).Milliseconds()))
			}
		}
	}()
}
