// Package Logger holds the process-wide structured logger handed to every
// subsystem at wiring time.
package Logger

import (
	"go.uber.org/zap"
)

// Logger embeds zap's sugared logger so call sites get Infof, Warnf and
// Errorf without unwrapping.
type Logger struct {
	*zap.SugaredLogger
}

// New builds the root logger. Debug mode logs human-readable console output;
// otherwise log lines are JSON for ingestion.
func New(debug bool) *Logger {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.CallerKey = "caller"

	logger, _ := cfg.Build(zap.AddCaller())
	return &Logger{logger.Sugar()}
}

// Named returns a child logger scoped to a subsystem name, keeping the
// parent's sinks and level.
func (l *Logger) Named(name string) *Logger {
	return &Logger{l.SugaredLogger.Named(name)}
}
