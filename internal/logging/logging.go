// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cgttools/taxcalc/internal/config"
)

var globalLogger *zap.SugaredLogger

// Configure builds the global logger from the current config. JSON
// encoding, ISO8601 timestamps, level from cfg.Logging.Level, defaulting
// to info on an unrecognized value.
func Configure() {
	cfg := config.GetConfig()

	var level zapcore.Level
	if err := level.Set(cfg.Logging.Level); err != nil {
		level = zapcore.InfoLevel
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		// Fall back to zap's example logger rather than leaving
		// globalLogger nil.
		logger = zap.NewExample()
	}
	globalLogger = logger.Sugar().With("component", "main")
}

// GetLogger returns the global logger, configuring it from defaults on
// first use if Configure hasn't been called yet.
func GetLogger() *zap.SugaredLogger {
	if globalLogger == nil {
		Configure()
	}
	return globalLogger
}
