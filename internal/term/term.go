// Copyright 2021 The age Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package term draws the progress line of the command line tool.
package term

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// enableVirtualTerminalProcessing is set on Windows, where escape codes
// have to be turned on explicitly.
var enableVirtualTerminalProcessing func(out *os.File) error

const (
	CUI = "\033["   // Control Sequence Introducer
	EL  = CUI + "K" // Erase in Line
)

// clearLine returns the cursor to the start of the current line and erases
// it.
func clearLine(out io.Writer) {
	fmt.Fprintf(out, "\r"+EL)
}

func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Progress reports the number of operations framed so far on a single,
// rewritten terminal line.
type Progress struct {
	out   io.Writer
	label string
	last  int
}

// NewProgress returns a Progress drawing on f, or nil if f is not a
// terminal. A nil *Progress discards updates.
func NewProgress(f *os.File, label string) *Progress {
	if !IsTerminal(f) {
		return nil
	}
	if enableVirtualTerminalProcessing != nil {
		if err := enableVirtualTerminalProcessing(f); err != nil {
			return nil
		}
	}
	return newProgress(f, label)
}

func newProgress(out io.Writer, label string) *Progress {
	return &Progress{out: out, label: label, last: -1}
}

// Update redraws the line if the percentage changed.
func (p *Progress) Update(done, total int) {
	if p == nil || total <= 0 {
		return
	}
	pct := done * 100 / total
	if pct == p.last {
		return
	}
	p.last = pct
	clearLine(p.out)
	fmt.Fprintf(p.out, "%s: %d/%d (%d%%)", p.label, done, total, pct)
}

// Done erases the line.
func (p *Progress) Done() {
	if p == nil || p.last < 0 {
		return
	}
	clearLine(p.out)
}
