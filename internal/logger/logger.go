// Package logger builds the process zap logger and carries request loggers in contexts.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// envConfigs maps a deployment environment to its base zap configuration.
var envConfigs = map[string]func() zap.Config{
	"prod":    zap.NewProductionConfig,
	"staging": zap.NewProductionConfig,
	"local":   zap.NewDevelopmentConfig,
	"dev":     zap.NewDevelopmentConfig,
	"docker":  zap.NewDevelopmentConfig,
	"test":    zap.NewDevelopmentConfig,
}

// NewLogger creates the logger for env. prod and staging write JSON,
// the others write console lines. A non-empty level (debug, info, warn, error)
// replaces the environment default.
func NewLogger(env, level string) (*zap.Logger, error) {
	base, ok := envConfigs[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
	cfg := base()

	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.With(zap.String("env", env)), nil
}
