// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestPrintf(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf)
	l.Printf("wrote %d files", 3)
	l.Warningf("seed %s", "00")
	l.Zap().Debug("hidden")
	if got, want := buf.String(), "cryptotv: wrote 3 files\ncryptotv: warning: seed 00\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	buf.Reset()
	l.SetVerbose(true)
	l.Zap().Debug("operation", zap.Int("msg_id", 7))
	if got := buf.String(); !strings.Contains(got, "operation") || !strings.Contains(got, "msg_id") {
		t.Errorf("unexpected debug output %q", got)
	}
}

func TestErrorWithHint(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(buf)
	l.TestOnlyPanicInsteadOfExit = true
	defer func() {
		if r := recover(); r != 1 || !l.TestOnlyDidExit {
			t.Errorf("expected exit 1, got %v", r)
		}
		want := "cryptotv: error: bad\ncryptotv: hint: try harder\n"
		if buf.String() != want {
			t.Errorf("got %q, want %q", buf.String(), want)
		}
	}()
	l.ErrorWithHint("bad", "try harder")
}
