// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package term

import (
	"bytes"
	"testing"
)

func TestProgress(t *testing.T) {
	buf := &bytes.Buffer{}
	p := newProgress(buf, "framing")
	p.Update(1, 200)
	p.Update(2, 200)
	p.Update(3, 200)
	p.Done()
	want := "\r" + EL + "framing: 1/200 (0%)" +
		"\r" + EL + "framing: 2/200 (1%)" +
		"\r" + EL
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	var nilProgress *Progress
	nilProgress.Update(1, 1)
	nilProgress.Done()
}
