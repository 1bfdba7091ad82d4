package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerCtxKeyType struct{}

var loggerCtxKey = loggerCtxKeyType{}

// createLogger builds the application logger. Logs always go to stderr so
// that stdout only carries command results (classifications, dry-run lines).
// A terminal gets a colored console encoder without stack traces; anything
// else gets JSON with ISO8601 timestamps.
func createLogger(debug, interactive bool, logLevel string) (logger *zap.Logger, level zap.AtomicLevel, err error) {
	level, err = zap.ParseAtomicLevel(logLevel)
	if err != nil {
		return nil, zap.NewAtomicLevel(), fmt.Errorf("invalid log level %s: %w", logLevel, err)
	}
	if debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	var loggerCfg zap.Config
	switch {
	case debug:
		loggerCfg = zap.NewDevelopmentConfig()
	case interactive:
		loggerCfg = zap.NewDevelopmentConfig()
		loggerCfg.DisableStacktrace = true
		loggerCfg.DisableCaller = true
		loggerCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		loggerCfg = zap.NewProductionConfig()
		loggerCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	loggerCfg.Level = level
	loggerCfg.OutputPaths = []string{"stderr"}
	loggerCfg.ErrorOutputPaths = []string{"stderr"}

	logger, err = loggerCfg.Build()
	if err != nil {
		return nil, zap.NewAtomicLevel(), fmt.Errorf("failed to build logger: %w", err)
	}

	return logger.Named("unpack"), level, nil
}

func withLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, logger)
}

func tryLogger(ctx context.Context) *zap.Logger {
	logger, _ := ctx.Value(loggerCtxKey).(*zap.Logger)
	return logger
}

func getLogger(ctx context.Context) *zap.Logger {
	logger := tryLogger(ctx)
	if logger == nil {
		panic("logger not found in context")
	}
	return logger
}
