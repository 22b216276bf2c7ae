// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"log"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	LogContainer     logContainer
	loggerInit       sync.Once
	simpleLoggerInit sync.Once
)

type logContainer struct {
	m            sync.Mutex
	level        zap.AtomicLevel
	file         string
	logger       *zap.Logger
	simpleLogger *zap.SugaredLogger
}

func init() {
	LogContainer.level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
}

// Configure sets the log level and the file the JSON log is written to. An
// empty file disables the file log. The level can be changed at any time, the
// file only before the first logger is handed out.
func (l *logContainer) Configure(level string, file string) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return err
	}
	l.level.SetLevel(lvl)
	l.m.Lock()
	l.file = file
	l.m.Unlock()
	return nil
}

// GetLogger returns the pointer to the logger and creates one if none exists
func (l *logContainer) GetLogger() *zap.Logger {
	loggerInit.Do(func() {
		l.logger = zap.New(l.getCombinedCore())
	})
	return l.logger
}

// GetSimpleLogger returns the pointer to the sugared logger and creates one
// if none exists
func (l *logContainer) GetSimpleLogger() *zap.SugaredLogger {
	simpleLoggerInit.Do(func() {
		l.simpleLogger = l.GetLogger().Sugar()
	})
	return l.simpleLogger
}

// String mirrors zap.String
func (l *logContainer) String(key string, val string) zap.Field {
	return zap.String(key, val)
}

// Int mirrors zap.Int
func (l *logContainer) Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

func getConsoleEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func getJsonEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.EpochTimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewJSONEncoder(encoderConfig)
}

func getLogWriter(file string) zapcore.WriteSyncer {
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		log.Fatalf("unable to create logfile: %v", err)
	}
	return zapcore.AddSync(f)
}

func (l *logContainer) getCombinedCore() zapcore.Core {
	l.m.Lock()
	defer l.m.Unlock()
	console := zapcore.NewCore(getConsoleEncoder(), zapcore.AddSync(os.Stderr), l.level)
	if l.file == "" {
		return console
	}
	return zapcore.NewTee(console, zapcore.NewCore(getJsonEncoder(), getLogWriter(l.file), l.level))
}
