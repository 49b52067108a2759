package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogLevelFlag(t *testing.T) {
	var f logLevelFlag
	assert.NoError(t, f.Set("debug"))
	assert.Equal(t, slog.LevelDebug, f.value)
	assert.Equal(t, "DEBUG", f.String())

	assert.NoError(t, f.Set("WARN"))
	assert.Equal(t, slog.LevelWarn, f.value)

	assert.Error(t, f.Set("verbose"))
	assert.Equal(t, slog.LevelWarn, f.value)
}

func TestSeedSource(t *testing.T) {
	a := newRand(42)
	b := newRand(42)
	for range 10 {
		assert.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}
