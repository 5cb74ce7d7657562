package telemetry

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingProcessor struct {
	mu     sync.Mutex
	bodies []string
}

func (p *recordingProcessor) OnEmit(_ context.Context, record *sdklog.Record) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodies = append(p.bodies, record.Body().AsString())
	return nil
}

func (p *recordingProcessor) Enabled(context.Context, sdklog.EnabledParameters) bool { return true }

func (p *recordingProcessor) Shutdown(context.Context) error   { return nil }
func (p *recordingProcessor) ForceFlush(context.Context) error { return nil }

func TestNewLoggerProviderDisabled(t *testing.T) {
	lp, err := NewLoggerProvider(context.Background(), Config{Enabled: true}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, lp.IsEnabled())
	assert.NoError(t, lp.Shutdown(context.Background()))

	base := zap.NewNop()
	assert.Same(t, base, lp.Bridge(base, "ipshield-backend", zapcore.InfoLevel))
}

func TestLoggerProviderBridge(t *testing.T) {
	processor := &recordingProcessor{}
	lp := &LoggerProvider{
		provider: sdklog.NewLoggerProvider(sdklog.WithProcessor(processor)),
		logger:   zap.NewNop(),
	}
	t.Cleanup(func() { _ = lp.Shutdown(context.Background()) })

	core, local := observer.New(zap.DebugLevel)
	log := lp.Bridge(zap.New(core), "ipshield-backend", zapcore.WarnLevel)

	log.Info("payment applied")
	log.Warn("installment overdue")

	assert.Equal(t, 2, local.Len(), "base logger still receives everything")
	processor.mu.Lock()
	defer processor.mu.Unlock()
	assert.Equal(t, []string{"installment overdue"}, processor.bodies)
}

func TestLevelFilterCore(t *testing.T) {
	inner, logs := observer.New(zap.DebugLevel)
	core := &levelFilterCore{Core: inner, minLevel: zapcore.ErrorLevel}

	assert.False(t, core.Enabled(zapcore.WarnLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))

	log := zap.New(core.With([]zapcore.Field{zap.String("contract_no", "HD-1")}))
	log.Warn("dropped")
	log.Error("kept")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "kept", entry.Message)
	assert.Equal(t, "HD-1", entry.ContextMap()["contract_no"])
}
