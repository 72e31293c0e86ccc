package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ThomasAyr/carte-scolaire/internal/config"
)

func TestNewLevel(t *testing.T) {
	l, err := New(&config.Config{Environment: "production", LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.InfoLevel))
	assert.True(t, l.Core().Enabled(zap.WarnLevel))

	l, err = New(&config.Config{Environment: "development", LogLevel: "nonsense"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zap.DebugLevel))
}
