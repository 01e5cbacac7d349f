// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frame

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

const eofLine = "###EOF"

// Writer encodes records onto one channel of the testbench bus.
//
// Errors are sticky: after a failed write every method returns the same
// error.
type Writer struct {
	dst      io.Writer
	layout   *Layout
	wordSize int // bytes
	maxWords int
	err      error
}

// NewWriter returns a Writer for a bus of width bits that puts at most
// maxWords payload words on each DAT line.
func NewWriter(dst io.Writer, l *Layout, width, maxWords int) (*Writer, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	if maxWords < 1 {
		return nil, fmt.Errorf("invalid words per line: %d", maxWords)
	}
	return &Writer{dst: dst, layout: l, wordSize: width / 8, maxWords: maxWords}, nil
}

func checkWidth(width int) error {
	switch width {
	case 8, 16, 32:
		return nil
	}
	return fmt.Errorf("unsupported bus width: %d bits", width)
}

// PaddedLength returns n rounded up to a whole number of bus words.
func PaddedLength(n, width int) int {
	ws := width / 8
	return (n + ws - 1) / ws * ws
}

func (w *Writer) printf(format string, a ...interface{}) error {
	if w.err != nil {
		return w.err
	}
	_, w.err = fmt.Fprintf(w.dst, format, a...)
	return w.err
}

// Comment writes each line of s as a comment.
func (w *Writer) Comment(s string) error {
	for _, line := range strings.Split(s, "\n") {
		if strings.HasPrefix(line, "##EOF") {
			line = " " + line
		}
		w.printf("#%s\n", line)
	}
	return w.err
}

// Write encodes a record.
func (w *Writer) Write(r Record) error {
	if w.err != nil {
		return w.err
	}
	switch r := r.(type) {
	case *Instruction:
		word, err := w.layout.Instruction(r.Op)
		if err != nil {
			w.err = err
			return err
		}
		return w.printf("INS = %08X\n", word)
	case *Status:
		return w.printf("STT = %08X\n", w.layout.Status(r.OK))
	case *Frame:
		word, err := w.layout.Header(w.layout.Mask(r))
		if err != nil {
			w.err = err
			return err
		}
		w.printf("HDR = %08X\n", word)
		return w.data(r.Payload)
	default:
		panic(fmt.Sprintf("frame: unknown record type %T", r))
	}
}

func (w *Writer) data(p []byte) error {
	if len(p) == 0 {
		return w.err
	}
	padded := make([]byte, PaddedLength(len(p), w.wordSize*8))
	copy(padded, p)
	lineBytes := w.maxWords * w.wordSize
	for len(padded) > 0 {
		line := padded
		if len(line) > lineBytes {
			line = line[:lineBytes]
		}
		w.printf("DAT = %s\n", strings.ToUpper(hex.EncodeToString(line)))
		padded = padded[len(line):]
	}
	return w.err
}

// Close writes the end of file marker. It does not close the underlying
// writer.
func (w *Writer) Close() error {
	return w.printf("%s\n", eofLine)
}
