package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGet_PrefersContextLogger(t *testing.T) {
	scoped := zap.NewNop().Sugar().With("request_id", "abc")
	ctx := WithContext(context.Background(), scoped)

	assert.Same(t, scoped, Get(ctx))
}

func TestGet_FallsBackToGlobal(t *testing.T) {
	Init(Config{Level: "debug"})
	assert.NotNil(t, Get(context.Background()))
}

func TestInit_WritesRotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "console.log")
	Init(Config{Level: "info", Path: path, MaxSize: 1})
	Get(context.Background()).Info("hello")
	require.NoError(t, Sync())

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
