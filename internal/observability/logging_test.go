package observability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/spec-kit/itops-service/internal/config"
	"github.com/spec-kit/itops-service/internal/observability"
)

func TestNewLogger_Levels(t *testing.T) {
	t.Parallel()

	app := config.AppConfig{Name: "itops-service", Version: "test"}
	tests := []struct {
		name  string
		cfg   config.LoggerConfig
		debug bool
		info  bool
	}{
		{name: "debug", cfg: config.LoggerConfig{Level: "DEBUG"}, debug: true, info: true},
		{name: "warn console", cfg: config.LoggerConfig{Level: "warn", Encoding: "console"}},
		{name: "unknown falls back to info", cfg: config.LoggerConfig{Level: "loud"}, info: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			logger, err := observability.NewLogger(tt.cfg, app)
			require.NoError(t, err)
			assert.Equal(t, tt.debug, logger.Core().Enabled(zapcore.DebugLevel))
			assert.Equal(t, tt.info, logger.Core().Enabled(zapcore.InfoLevel))
		})
	}
}
