package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		format   string
		expected zapcore.Level
	}{
		{"json debug", "debug", "json", zapcore.DebugLevel},
		{"console warn", "warn", "console", zapcore.WarnLevel},
		{"unknown level falls back to info", "loud", "json", zapcore.InfoLevel},
		{"unknown format falls back to json", "error", "xml", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.level, tt.format)
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(tt.expected))
			if tt.expected > zapcore.DebugLevel {
				assert.False(t, log.Core().Enabled(tt.expected-1))
			}
		})
	}
}
