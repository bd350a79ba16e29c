// Copyright 2023 Google Inc. All Rights Reserved.
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

// Package logger provides a package-level structured logger built on
// log/slog, with a text or JSON wire format and an optional rotating log
// file.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity names, the vocabulary accepted by setLoggingLevel and InitLogFile.
const (
	TRACE   = "TRACE"
	DEBUG   = "DEBUG"
	INFO    = "INFO"
	WARNING = "WARNING"
	ERROR   = "ERROR"
	OFF     = "OFF"
)

// slog.Level only defines Debug/Info/Warn/Error out of the box; Trace and
// Off are this package's own extensions, spaced the same four-unit gap
// slog uses between its built-in levels.
const (
	LevelTrace = slog.LevelDebug - 4
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.LevelError + 4
)

// LogRotateConfig controls the rotating file sink InitLogFile installs.
type LogRotateConfig struct {
	MaxFileSizeMB   int
	BackupFileCount int
	Compress        bool
}

// DefaultLogRotateConfig matches lumberjack's own sensible defaults.
func DefaultLogRotateConfig() LogRotateConfig {
	return LogRotateConfig{
		MaxFileSizeMB:   512,
		BackupFileCount: 10,
		Compress:        false,
	}
}

// Config is everything InitLogFile needs to stand up a file-backed logger.
type Config struct {
	FilePath        string
	Format          string
	Severity        string
	LogRotateConfig LogRotateConfig
}

type loggerFactory struct {
	file            *os.File
	sysWriter       io.Writer
	format          string
	level           string
	logRotateConfig LogRotateConfig
}

func (f *loggerFactory) newLogger(level string) *slog.Logger {
	programLevel := new(slog.LevelVar)
	setLoggingLevel(level, programLevel)

	var w io.Writer = os.Stderr
	if f.sysWriter != nil {
		w = f.sysWriter
	}

	return slog.New(f.createJsonOrTextHandler(w, programLevel, ""))
}

func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, programLevel *slog.LevelVar, prefix string) slog.Handler {
	return &handler{
		out:    w,
		level:  programLevel,
		format: f.format,
		prefix: prefix,
	}
}

var defaultLoggerFactory = &loggerFactory{
	level:           INFO,
	logRotateConfig: DefaultLogRotateConfig(),
}

var defaultLogger = defaultLoggerFactory.newLogger(INFO)

// InitLogFile points the default logger at a rotating file sink, replacing
// whatever sink was previously installed (stderr, by default).
func InitLogFile(cfg Config) error {
	f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	rotate := cfg.LogRotateConfig
	if rotate == (LogRotateConfig{}) {
		rotate = DefaultLogRotateConfig()
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    rotate.MaxFileSizeMB,
		MaxBackups: rotate.BackupFileCount,
		Compress:   rotate.Compress,
	}

	format := cfg.Format
	if format == "" {
		format = "json"
	}

	// lj is the actual rotation-aware sink; wrap it so writes never block the
	// calling goroutine.
	defaultLoggerFactory = &loggerFactory{
		file:            f,
		sysWriter:       NewAsyncLogger(lj, 10000),
		format:          format,
		level:           cfg.Severity,
		logRotateConfig: rotate,
	}
	defaultLogger = defaultLoggerFactory.newLogger(cfg.Severity)

	return nil
}

// SetLogFormat switches the default logger between "text" and "json" wire
// formats. Anything other than "text" (including the empty string) renders
// as JSON; see handler.Handle.
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format
	defaultLogger = defaultLoggerFactory.newLogger(defaultLoggerFactory.level)
}

func setLoggingLevel(level string, programLevel *slog.LevelVar) {
	switch level {
	case TRACE:
		programLevel.Set(LevelTrace)
	case DEBUG:
		programLevel.Set(LevelDebug)
	case INFO:
		programLevel.Set(LevelInfo)
	case WARNING:
		programLevel.Set(LevelWarn)
	case ERROR:
		programLevel.Set(LevelError)
	case OFF:
		programLevel.Set(LevelOff)
	default:
		programLevel.Set(LevelInfo)
	}
}

func Tracef(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelTrace, fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelDebug, fmt.Sprintf(format, v...))
}

func Infof(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelInfo, fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelWarn, fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...interface{}) {
	defaultLogger.Log(context.Background(), LevelError, fmt.Sprintf(format, v...))
}
