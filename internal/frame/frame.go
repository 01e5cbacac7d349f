// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package frame implements the text wire format of the hardware testbench
// data files.
//
// A file is a sequence of lines. Instructions, segment headers and status
// words are single 32-bit words:
//
//	INS = 20000000
//	HDR = D6000010
//	STT = E0000000
//
// A header announcing a non-empty payload is followed by DAT lines that
// carry the payload zero-padded to the bus width. Lines starting with '#'
// are comments, and the file ends with a "###EOF" line.
package frame

import (
	"bytes"
	"fmt"

	"filippo.io/cryptotv/internal/segment"
)

// A Record is one of *Instruction, *Frame or *Status.
type Record interface {
	record()
}

// An Instruction is an opcode word.
type Instruction struct {
	Op Opcode
}

// Frame is a header together with its payload.
type Frame struct {
	Type    segment.Type
	Payload []byte

	Partial bool
	EOI     bool
	EOT     bool
	Last    bool
}

// A Status is the word the hardware returns after an operation.
type Status struct {
	OK bool
}

func (*Instruction) record() {}
func (*Frame) record()       {}
func (*Status) record()      {}

// Equal reports whether two records encode identically.
func Equal(a, b Record) bool {
	switch a := a.(type) {
	case *Instruction:
		b, ok := b.(*Instruction)
		return ok && *a == *b
	case *Status:
		b, ok := b.(*Status)
		return ok && *a == *b
	case *Frame:
		b, ok := b.(*Frame)
		return ok && a.Type == b.Type && bytes.Equal(a.Payload, b.Payload) &&
			a.Partial == b.Partial && a.EOI == b.EOI && a.EOT == b.EOT && a.Last == b.Last
	}
	return false
}

func (f *Frame) String() string {
	return fmt.Sprintf("%v, EOI=%d EOT=%d, Last=%d, Length=%d bytes",
		f.Type, b2i(f.EOI), b2i(f.EOT), b2i(f.Last), len(f.Payload))
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Mask clears the flags l does not transmit, returning the frame as it
// will decode.
func (l *Layout) Mask(f *Frame) *Frame {
	m := *f
	m.Partial = m.Partial && l.PartialBit != NoBit
	m.EOI = m.EOI && l.EOIBit != NoBit
	m.EOT = m.EOT && l.EOTBit != NoBit
	m.Last = m.Last && l.LastBit != NoBit
	return &m
}
