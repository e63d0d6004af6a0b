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

package plugin

import (
	"fmt"
	"io"
	"log/slog"
)

// PrintfLogger adapts a slog.Logger to the printf-style logging interface
// expected by storage client libraries such as badger
type PrintfLogger struct {
	logger *slog.Logger
}

func NewPrintfLogger(logger *slog.Logger) *PrintfLogger {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &PrintfLogger{logger: logger}
}

// Logger returns the underlying structured logger
func (l *PrintfLogger) Logger() *slog.Logger {
	return l.logger
}

func (l *PrintfLogger) Infof(msg string, args ...any) {
	l.logger.Info(fmt.Sprintf(msg, args...), "component", "database")
}

func (l *PrintfLogger) Warningf(msg string, args ...any) {
	l.logger.Warn(fmt.Sprintf(msg, args...), "component", "database")
}

func (l *PrintfLogger) Debugf(msg string, args ...any) {
	l.logger.Debug(fmt.Sprintf(msg, args...), "component", "database")
}

func (l *PrintfLogger) Errorf(msg string, args ...any) {
	l.logger.Error(fmt.Sprintf(msg, args...), "component", "database")
}
