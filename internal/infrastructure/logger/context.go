package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type (
	loggerKey struct{}
	scopeKey  struct{}
)

// scope is who and what a request is about. It is copied on every change
// so parent contexts never see values set below them.
type scope struct {
	requestID string
	userID    string
	username  string
}

func scopeOf(ctx context.Context) scope {
	s, _ := ctx.Value(scopeKey{}).(scope)
	return s
}

func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// FromContext is a no-op logger when none was attached
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID tags ctx and l with the request ID and stores the tagged
// logger in the returned context.
func WithRequestID(ctx context.Context, l *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	s := scopeOf(ctx)
	s.requestID = requestID
	l = l.With(zap.String("request_id", requestID))
	return WithContext(context.WithValue(ctx, scopeKey{}, s), l), l
}

// WithUser is WithRequestID for the authenticated staff member
func WithUser(ctx context.Context, l *zap.Logger, userID, username string) (context.Context, *zap.Logger) {
	s := scopeOf(ctx)
	s.userID, s.username = userID, username
	l = l.With(zap.String("user_id", userID), zap.String("username", username))
	return WithContext(context.WithValue(ctx, scopeKey{}, s), l), l
}

func GetRequestID(ctx context.Context) string { return scopeOf(ctx).requestID }
func GetUserID(ctx context.Context) string    { return scopeOf(ctx).userID }
func GetUsername(ctx context.Context) string  { return scopeOf(ctx).username }

// GetTraceID is empty outside a recording span
func GetTraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.TraceID().String()
	}
	return ""
}

func GetSpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		return sc.SpanID().String()
	}
	return ""
}

// WithTraceContext adds trace_id and span_id when ctx carries a span
func WithTraceContext(ctx context.Context, l *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(zap.String("trace_id", sc.TraceID().String()), zap.String("span_id", sc.SpanID().String()))
}

// L is the request logger correlated with the active span:
//
//	logger.L(ctx).Info("payment applied", zap.String("installment_id", id))
func L(ctx context.Context) *zap.Logger {
	return WithTraceContext(ctx, FromContext(ctx))
}
