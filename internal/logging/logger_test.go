package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		expected  zapcore.Level
		shouldErr bool
	}{
		{name: "default", cfg: Config{}, expected: zap.InfoLevel},
		{name: "development", cfg: Config{Development: true}, expected: zap.DebugLevel},
		{name: "explicit wins", cfg: Config{Development: true, Level: "warn"}, expected: zap.WarnLevel},
		{name: "invalid", cfg: Config{Level: "loud"}, shouldErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := parseLevel(tt.cfg)
			if tt.shouldErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestNew_ConsoleOnly(t *testing.T) {
	logger, err := New(Config{Level: "error"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Error(t, err)
}
