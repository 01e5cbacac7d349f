// Copyright 2021 The age Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logger is the command line logger of cryptotv. Messages are
// plain "cryptotv: " prefixed lines; structured debug output from the
// library is added when verbose.
package logger

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	zl    *zap.Logger
	level zap.AtomicLevel
	// If TestOnlyPanicInsteadOfExit is true, exit will set testOnlyDidExit and
	// panic instead of calling os.Exit. This way, the wrapper in TestMain can
	// recover the panic and return the exit code only if it was originated in exit.
	TestOnlyPanicInsteadOfExit bool
	TestOnlyDidExit            bool
}

var Global = New(os.Stderr)

// New returns a Logger writing to w at info level.
func New(w io.Writer) *Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		ConsoleSeparator: " ",
	})
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level)
	return &Logger{zl: zap.New(core), level: level}
}

// SetVerbose enables debug output.
func (l *Logger) SetVerbose(v bool) {
	if v {
		l.level.SetLevel(zapcore.DebugLevel)
	} else {
		l.level.SetLevel(zapcore.InfoLevel)
	}
}

// Zap returns the underlying logger, for structured debug output.
func (l *Logger) Zap() *zap.Logger {
	return l.zl.Named("cryptotv")
}

func (l *Logger) Exit(code int) {
	l.zl.Sync()
	if l.TestOnlyPanicInsteadOfExit {
		l.TestOnlyDidExit = true
		panic(code)
	}
	os.Exit(code)
}

func (l *Logger) Printf(format string, v ...interface{}) {
	l.zl.Info(fmt.Sprintf("cryptotv: "+format, v...))
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.Printf("error: "+format, v...)
	l.Exit(1)
}

func (l *Logger) Warningf(format string, v ...interface{}) {
	l.Printf("warning: "+format, v...)
}

func (l *Logger) ErrorWithHint(error string, hints ...string) {
	l.Printf("error: %s", error)
	for _, hint := range hints {
		l.Printf("hint: %s", hint)
	}
	l.Exit(1)
}
