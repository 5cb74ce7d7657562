package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dbMetricsPrefix         = "db_metrics"
	defaultSlowQueryCeiling = 200 * time.Millisecond
)

// DBMetricsConfig tunes database metrics
type DBMetricsConfig struct {
	// SlowQueryThreshold defaults to 200ms
	SlowQueryThreshold time.Duration
}

// DBMetrics counts statements and samples the connection pool. Pool gauges
// are observed at collection time, so no background goroutine is needed.
type DBMetrics struct {
	meter    metric.Meter
	slowAt   time.Duration
	logger   *zap.Logger
	queries  metric.Int64Counter
	slow     metric.Int64Counter
	latency  metric.Float64Histogram
	poolOpen metric.Int64ObservableGauge
	poolMax  metric.Int64ObservableGauge

	mu  sync.Mutex
	reg metric.Registration
}

func NewDBMetrics(meter metric.Meter, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = defaultSlowQueryCeiling
	}

	m := &DBMetrics{meter: meter, slowAt: cfg.SlowQueryThreshold, logger: logger}
	var errs [5]error
	m.queries, errs[0] = meter.Int64Counter("db_query_total",
		metric.WithDescription("Database statements by operation"), metric.WithUnit("{query}"))
	m.slow, errs[1] = meter.Int64Counter("db_slow_query_total",
		metric.WithDescription("Statements slower than the threshold by table"), metric.WithUnit("{query}"))
	m.latency, errs[2] = meter.Float64Histogram("db_query_duration_seconds",
		metric.WithDescription("Statement latency"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(DBDurationBuckets...))
	m.poolOpen, errs[3] = meter.Int64ObservableGauge("db_pool_connections",
		metric.WithDescription("Pool connections by state"), metric.WithUnit("{connection}"))
	m.poolMax, errs[4] = meter.Int64ObservableGauge("db_pool_connections_max",
		metric.WithDescription("Pool connection limit"), metric.WithUnit("{connection}"))
	if err := errors.Join(errs[:]...); err != nil {
		return nil, err
	}
	return m, nil
}

// ObservePool reports sqlDB.Stats on every collection until Stop
func (m *DBMetrics) ObservePool(sqlDB *sql.DB) error {
	reg, err := m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		s := sqlDB.Stats()
		o.ObserveInt64(m.poolMax, int64(s.MaxOpenConnections))
		o.ObserveInt64(m.poolOpen, int64(s.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(m.poolOpen, int64(s.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(m.poolOpen, int64(s.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		return nil
	}, m.poolOpen, m.poolMax)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.reg = reg
	m.mu.Unlock()
	return nil
}

// Stop detaches the pool callback. Calling it again is a no-op.
func (m *DBMetrics) Stop() {
	m.mu.Lock()
	reg := m.reg
	m.reg = nil
	m.mu.Unlock()

	if reg == nil {
		return
	}
	if err := reg.Unregister(); err != nil {
		m.logger.Warn("Failed to unregister pool metrics", zap.Error(err))
	}
}

// RecordQuery counts one statement and its latency
func (m *DBMetrics) RecordQuery(ctx context.Context, operation, table string, took time.Duration) {
	if operation == "" {
		operation = "UNKNOWN"
	}
	op := metric.WithAttributes(AttrDBOperation.String(strings.ToUpper(operation)))
	m.queries.Add(ctx, 1, op)
	m.latency.Record(ctx, took.Seconds(), op)

	if took > m.slowAt {
		if table == "" {
			table = "unknown"
		}
		m.slow.Add(ctx, 1, metric.WithAttributes(AttrDBTable.String(table)))
	}
}

// DBMetricsPlugin is the gorm.Plugin feeding DBMetrics
type DBMetricsPlugin struct {
	metrics *DBMetrics
}

func NewDBMetricsPlugin(metrics *DBMetrics) *DBMetricsPlugin {
	return &DBMetricsPlugin{metrics: metrics}
}

func (p *DBMetricsPlugin) Name() string { return dbMetricsPrefix }

func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	return registerAround(db, dbMetricsPrefix, func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			ctx := tx.Statement.Context
			if ctx == nil {
				ctx = context.Background()
			}
			took, _ := queryElapsed(tx, dbMetricsPrefix)
			p.metrics.RecordQuery(ctx, sqlOperation(op, tx.Statement.SQL.String()), tx.Statement.Table, took)
		}
	})
}

var callbackVerbs = map[string]string{
	"create": "INSERT",
	"query":  "SELECT",
	"update": "UPDATE",
	"delete": "DELETE",
}

// sqlOperation names the statement verb. Row and raw chains carry arbitrary
// SQL, so their verb is read from the statement text.
func sqlOperation(op, statement string) string {
	if verb, ok := callbackVerbs[op]; ok {
		return verb
	}
	head, _, _ := strings.Cut(strings.TrimSpace(statement), " ")
	switch verb := strings.ToUpper(head); verb {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return verb
	case "WITH":
		return "SELECT"
	default:
		return "OTHER"
	}
}

// RegisterDBMetrics installs the plugin on db and starts observing its pool.
// It returns nil when metrics are disabled; call Stop on shutdown otherwise.
func RegisterDBMetrics(db *gorm.DB, meterProvider *MeterProvider, cfg DBMetricsConfig, logger *zap.Logger) (*DBMetrics, error) {
	if meterProvider == nil || !meterProvider.IsEnabled() {
		logger.Debug("Metrics disabled, skipping database metrics")
		return nil, nil
	}

	metrics, err := NewDBMetrics(meterProvider.Meter("db.client"), cfg, logger)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := db.Use(NewDBMetricsPlugin(metrics)); err != nil {
		return nil, err
	}
	if err := metrics.ObservePool(sqlDB); err != nil {
		return nil, err
	}

	logger.Info("Database metrics registered", zap.Duration("slow_query_threshold", metrics.slowAt))
	return metrics, nil
}
