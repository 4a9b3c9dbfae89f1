package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.log")

	l, err := New(Config{
		Level:          "info",
		Format:         "json",
		OutputPath:     path,
		ServiceName:    "library-service",
		ServiceVersion: "1.2.3",
		Environment:    "test",
	})
	require.NoError(t, err)

	l.Debug("dropped")
	l.Info("book borrowed", zap.String("book_id", "b-1"))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"message":"book borrowed"`)
	assert.Contains(t, out, `"service":"library-service"`)
	assert.Contains(t, out, `"version":"1.2.3"`)
	assert.Contains(t, out, `"book_id":"b-1"`)
	assert.NotContains(t, out, "dropped")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLogLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel("verbose"))
}

func TestWithContext_AddsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := WithRoll(WithRequestID(context.Background(), "req-1"), "R1")
	WithContext(ctx, base).Info("borrow")
	WithContext(context.Background(), base).Info("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "R1", entries[0].ContextMap()["roll"])
	assert.Empty(t, entries[1].ContextMap())
}

func TestRequestIDInterceptor(t *testing.T) {
	interceptor := RequestIDInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}
	capture := func(ctx context.Context, _ any) (any, error) { return GetRequestID(ctx), nil }

	t.Run("Reuses Incoming ID", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs("x-request-id", "abc"))

		got, err := interceptor(ctx, nil, info, capture)

		require.NoError(t, err)
		assert.Equal(t, "abc", got)
	})

	t.Run("Generates ID", func(t *testing.T) {
		got, err := interceptor(context.Background(), nil, info, capture)

		require.NoError(t, err)
		assert.Len(t, got, 36)
	})
}

func TestGormLogger_Trace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), 0.1, "warn")
	ctx := WithRequestID(context.Background(), "req-9")

	gl.Trace(ctx, time.Now().Add(-time.Second), func() (string, int64) {
		return "UPDATE books SET copies = copies - 1", 1
	}, nil)
	gl.Trace(ctx, time.Now(), func() (string, int64) {
		return "SELECT * FROM users", 0
	}, gorm.ErrRecordNotFound)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "req-9", entries[0].ContextMap()["request_id"])
}

func TestGormLogger_LogModeCopies(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), 0.2, "error")

	silent := gl.LogMode(gormlogger.Silent)

	assert.Equal(t, gormlogger.Error, gl.LogLevel)
	assert.Equal(t, gormlogger.Silent, silent.(*GormLogger).LogLevel)
}
