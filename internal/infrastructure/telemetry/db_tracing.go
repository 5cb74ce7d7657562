package telemetry

import (
	"errors"
	"time"

	"github.com/ipshield/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	dbTracingPrefix    = "otel_timing"
	defaultSlowQuery   = 200 * time.Millisecond
	attrRowsAffected   = attribute.Key("db.rows_affected")
	attrSQLTable       = attribute.Key("db.sql.table")
	attrSlowQuery      = attribute.Key("db.slow_query")
	attrQueryElapsedMS = attribute.Key("db.query_duration_ms")
)

// DBTracingConfig controls the otelgorm spans. LogFullSQL puts bound query
// values on spans and must stay off in production.
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool
	SlowQueryThresh time.Duration
	DBName          string
	// TracerProvider defaults to the global provider
	TracerProvider trace.TracerProvider
}

// DBTracingConfigFrom only enables DB spans when telemetry as a whole is on
func DBTracingConfigFrom(cfg config.TelemetryConfig, dbName string) DBTracingConfig {
	return DBTracingConfig{
		Enabled:         cfg.Enabled && cfg.DBTraceEnabled,
		LogFullSQL:      cfg.DBLogFullSQL,
		SlowQueryThresh: cfg.DBSlowQueryThresh,
		DBName:          dbName,
	}
}

// DBTracingPlugin installs otelgorm and decorates its spans with table,
// row count, error status and a slow-query marker.
type DBTracingPlugin struct {
	cfg DBTracingConfig
	log *zap.Logger
}

func NewDBTracingPlugin(cfg DBTracingConfig, log *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThresh <= 0 {
		cfg.SlowQueryThresh = defaultSlowQuery
	}
	return &DBTracingPlugin{cfg: cfg, log: log}
}

func (p *DBTracingPlugin) otelgormOptions() []otelgorm.Option {
	opts := []otelgorm.Option{otelgorm.WithDBName(p.cfg.DBName)}
	if !p.cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.cfg.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.cfg.TracerProvider))
	}
	return opts
}

// RegisterOtelGorm does nothing while tracing is disabled
func (p *DBTracingPlugin) RegisterOtelGorm(db *gorm.DB) error {
	if !p.cfg.Enabled {
		p.log.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}
	if err := db.Use(otelgorm.NewPlugin(p.otelgormOptions()...)); err != nil {
		return err
	}
	if err := registerAround(db, dbTracingPrefix, func(string) func(*gorm.DB) { return p.annotate }); err != nil {
		return err
	}
	p.log.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", p.cfg.SlowQueryThresh),
	)
	return nil
}

func (p *DBTracingPlugin) annotate(tx *gorm.DB) {
	stmt := tx.Statement
	if stmt.Context == nil {
		return
	}
	span := trace.SpanFromContext(stmt.Context)
	if !span.IsRecording() {
		return
	}

	var attrs []attribute.KeyValue
	if stmt.RowsAffected >= 0 {
		attrs = append(attrs, attrRowsAffected.Int64(stmt.RowsAffected))
	}
	if stmt.Table != "" {
		attrs = append(attrs, attrSQLTable.String(stmt.Table))
	}
	if elapsed, ok := queryElapsed(tx, dbTracingPrefix); ok && elapsed > p.cfg.SlowQueryThresh {
		attrs = append(attrs, attrSlowQuery.Bool(true), attrQueryElapsedMS.Int64(elapsed.Milliseconds()))
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", p.cfg.SlowQueryThresh.Milliseconds()),
		))
	}
	span.SetAttributes(attrs...)

	// a miss is an answer, not a failure
	if err := tx.Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
