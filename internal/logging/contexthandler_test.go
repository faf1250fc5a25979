package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextHandler_AddsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelDebug).With("source", "test")

	ctx := WithAttrs(context.Background(), slog.String("subject_id", "s-1"))
	ctx = WithAttrs(ctx, slog.String("request_id", "r-9"))
	logger.InfoContext(ctx, "saved")

	out := buf.String()
	assert.Contains(t, out, "source=test")
	assert.Contains(t, out, "subject_id=s-1")
	assert.Contains(t, out, "request_id=r-9")
}

func TestWithAttrs_DoesNotLeakBetweenBranches(t *testing.T) {
	base := WithAttrs(context.Background(), slog.String("a", "1"))
	left := WithAttrs(base, slog.String("b", "2"))
	right := WithAttrs(base, slog.String("c", "3"))

	assert.Len(t, left.Value(slogAttrs).([]slog.Attr), 2)
	rightAttrs := right.Value(slogAttrs).([]slog.Attr)
	assert.Len(t, rightAttrs, 2)
	assert.Equal(t, "c", rightAttrs[1].Key)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, slog.LevelWarn)
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
