// Copyright 2026 The Hashprobe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logutil wraps go.uber.org/zap behind a package-level logger,
// modeled on matrixone's pkg/logutil / pkg/logutil/logutil2 GetGlobalLogger
// + thin Debug/Info/Warn/Error wrapper convention. The probe driver logs
// state transitions and barrier elections through this package rather than
// calling zap directly, so the logger can be swapped (e.g. in tests) with
// SetLogger.
package logutil

import (
	"sync"

	"go.uber.org/zap"
)

var (
	mu     sync.RWMutex
	global *zap.Logger
)

func init() {
	global, _ = zap.NewProduction()
}

// SetLogger replaces the global logger, e.g. with a zaptest logger.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
}

func logger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func Debug(msg string, fields ...zap.Field) {
	logger().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	logger().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	logger().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	logger().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}
