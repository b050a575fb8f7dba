package svcutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(slog.LevelError, ParseLevel("error"))
	assert.Equal(slog.LevelInfo, ParseLevel("info"))
	assert.Equal(slog.LevelInfo, ParseLevel(""))
	assert.Equal(slog.LevelInfo, ParseLevel("chatty"))
}
