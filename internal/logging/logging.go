// Copyright 2025 Blink Labs Software
//
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file or at
// https://opensource.org/licenses/MIT.

package logging

import (
	"log"
	"time"

	"github.com/holo-host/ipcnet/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger = zap.SugaredLogger

var globalLogger *Logger

func Setup() {
	cfg := config.GetConfig()
	// Build our custom logging config
	loggerConfig := zap.NewProductionConfig()
	// Change timestamp key name
	loggerConfig.EncoderConfig.TimeKey = "timestamp"
	// Use a human readable time format
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(
		time.RFC3339,
	)

	// Set level
	if cfg.Logging.Level != "" {
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			log.Fatalf("error configuring logger: %s", err)
		}
		loggerConfig.Level.SetLevel(level)
	}

	// Create the logger
	l, err := loggerConfig.Build()
	if err != nil {
		log.Fatal(err)
	}

	// Store the "sugared" version of the logger
	globalLogger = l.Sugar()
}

func GetLogger() *Logger {
	return globalLogger
}

func GetDesugaredLogger() *zap.Logger {
	return globalLogger.Desugar()
}

// GetComponentLogger returns a desugared logger scoped to a single
// connection component (socket, relay, ipcclient, ipcnet): every line it
// writes carries a "component" field naming that component. Safe to
// call before Setup — library packages run fine under test without ever
// configuring a global logger, in which case this is a no-op sink.
func GetComponentLogger(component string) *zap.Logger {
	if globalLogger == nil {
		return zap.NewNop()
	}
	return globalLogger.Desugar().
		With(zap.String("component", component)).
		WithOptions(zap.WithCaller(false))
}
