package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ThomasAyr/carte-scolaire/internal/config"
)

type Logger struct {
	*zap.Logger
}

// New creates a zap logger configured by environment. An unparsable
// LOG_LEVEL keeps the config's default level.
func New(cfg *config.Config) (*Logger, error) {
	var zapCfg zap.Config

	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.TimeKey = "timestamp"
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	if lvl, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapCfg.Level = lvl
	}

	l, err := zapCfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{l}, nil
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() {
	_ = l.Logger.Sync() // stderr sync errors are harmless
}
