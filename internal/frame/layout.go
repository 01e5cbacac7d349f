// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frame

import (
	"fmt"
	"sort"

	"filippo.io/cryptotv/internal/segment"
)

// Opcode is an instruction sent to the hardware on the public or secret
// data input.
type Opcode int

const (
	ActivateKey Opcode = iota + 1
	Encrypt
	Decrypt
	LoadKey
	Hash
)

func (op Opcode) String() string {
	switch op {
	case ActivateKey:
		return "Activate Key"
	case Encrypt:
		return "Authenticated Encryption"
	case Decrypt:
		return "Authenticated Decryption"
	case LoadKey:
		return "Load Key"
	case Hash:
		return "Hash"
	}
	return fmt.Sprintf("Opcode(%d)", int(op))
}

// NoBit marks a flag that a Layout does not transmit.
const NoBit = -1

// A Layout describes the bit layout of the 32-bit header, instruction and
// status words of one version of the hardware API.
//
// The opcode or segment type occupies the same field in all three kinds
// of words. Flags with a position of NoBit are not transmitted and always
// decode as false.
type Layout struct {
	Name string

	CodeShift int
	CodeBits  int

	PartialBit int
	EOIBit     int
	EOTBit     int
	LastBit    int

	LengthBits int

	Types   map[segment.Type]uint32
	Opcodes map[Opcode]uint32

	StatusSuccess uint32
	StatusFailure uint32
}

// WordBits is the size of header, instruction and status words.
const WordBits = 32

// LWC is the header layout of the GMU LWC hardware API.
var LWC = &Layout{
	Name:       "lwc",
	CodeShift:  28,
	CodeBits:   4,
	PartialBit: 27,
	EOIBit:     26,
	EOTBit:     25,
	LastBit:    24,
	LengthBits: 16,
	Types: map[segment.Type]uint32{
		segment.AD:            0b0001,
		segment.NpubAD:        0b0010,
		segment.ADNpub:        0b0011,
		segment.Plaintext:     0b0100,
		segment.Ciphertext:    0b0101,
		segment.CiphertextTag: 0b0110,
		segment.HashMessage:   0b0111,
		segment.Tag:           0b1000,
		segment.HashValue:     0b1001,
		segment.Length:        0b1010,
		segment.Key:           0b1100,
		segment.Npub:          0b1101,
		segment.Nsec:          0b1110,
		segment.EncNsec:       0b1111,
	},
	Opcodes: map[Opcode]uint32{
		Encrypt:     0b0010,
		Decrypt:     0b0011,
		LoadKey:     0b0100,
		ActivateKey: 0b0111,
		Hash:        0b1000,
	},
	StatusSuccess: 0b1110,
	StatusFailure: 0b1111,
}

// CAESAR is the header layout of the CAESAR hardware API v2, which has no
// Last flag and no hash segments.
var CAESAR = &Layout{
	Name:       "caesar",
	CodeShift:  28,
	CodeBits:   4,
	PartialBit: 26,
	EOIBit:     25,
	EOTBit:     24,
	LastBit:    NoBit,
	LengthBits: 16,
	Types: map[segment.Type]uint32{
		segment.AD:            0b0001,
		segment.ADNpub:        0b0010,
		segment.NpubAD:        0b0011,
		segment.Plaintext:     0b0100,
		segment.Ciphertext:    0b0101,
		segment.CiphertextTag: 0b0110,
		segment.Tag:           0b1000,
		segment.Length:        0b1010,
		segment.Key:           0b1100,
		segment.Npub:          0b1101,
		segment.Nsec:          0b1110,
		segment.EncNsec:       0b1111,
	},
	Opcodes: map[Opcode]uint32{
		Encrypt:     0b0010,
		Decrypt:     0b0011,
		LoadKey:     0b0100,
		ActivateKey: 0b0111,
	},
	StatusSuccess: 0b1110,
	StatusFailure: 0b1111,
}

var layouts = map[string]*Layout{
	LWC.Name:    LWC,
	CAESAR.Name: CAESAR,
}

// LayoutByName returns a built-in layout.
func LayoutByName(name string) (*Layout, error) {
	l, ok := layouts[name]
	if !ok {
		return nil, fmt.Errorf("unknown header layout %q (known: %v)", name, LayoutNames())
	}
	return l, nil
}

// LayoutNames returns the names accepted by LayoutByName, sorted.
func LayoutNames() []string {
	var names []string
	for n := range layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// MaxLength is the largest payload a single header can announce.
func (l *Layout) MaxLength() int {
	return 1<<l.LengthBits - 1
}

func (l *Layout) code(c uint32) uint32 {
	return c << l.CodeShift
}

func (l *Layout) codeOf(w uint32) uint32 {
	return w >> l.CodeShift & (1<<l.CodeBits - 1)
}

func setBit(w *uint32, pos int, v bool) {
	if pos != NoBit && v {
		*w |= 1 << pos
	}
}

func getBit(w uint32, pos int) bool {
	return pos != NoBit && w&(1<<pos) != 0
}

// Header returns the header word announcing f.
func (l *Layout) Header(f *Frame) (uint32, error) {
	c, ok := l.Types[f.Type]
	if !ok {
		return 0, fmt.Errorf("layout %s has no segment type %v", l.Name, f.Type)
	}
	if len(f.Payload) > l.MaxLength() {
		return 0, fmt.Errorf("%v segment of %d bytes exceeds the %d-bit length field",
			f.Type, len(f.Payload), l.LengthBits)
	}
	w := l.code(c) | uint32(len(f.Payload))
	setBit(&w, l.PartialBit, f.Partial)
	setBit(&w, l.EOIBit, f.EOI)
	setBit(&w, l.EOTBit, f.EOT)
	setBit(&w, l.LastBit, f.Last)
	return w, nil
}

// ParseHeader decodes a header word into a Frame with no payload, and the
// payload length it announces.
func (l *Layout) ParseHeader(w uint32) (*Frame, int, error) {
	c := l.codeOf(w)
	var typ segment.Type
	for t, tc := range l.Types {
		if tc == c {
			typ = t
		}
	}
	if typ == 0 {
		return nil, 0, fmt.Errorf("unknown segment type code %#x", c)
	}
	known := uint32(1<<l.CodeBits-1)<<l.CodeShift | uint32(l.MaxLength())
	for _, pos := range []int{l.PartialBit, l.EOIBit, l.EOTBit, l.LastBit} {
		if pos != NoBit {
			known |= 1 << pos
		}
	}
	if w&^known != 0 {
		return nil, 0, fmt.Errorf("reserved header bits set in %08X", w)
	}
	f := &Frame{
		Type:    typ,
		Partial: getBit(w, l.PartialBit),
		EOI:     getBit(w, l.EOIBit),
		EOT:     getBit(w, l.EOTBit),
		Last:    getBit(w, l.LastBit),
	}
	return f, int(w & uint32(l.MaxLength())), nil
}

// Instruction returns the instruction word for op.
func (l *Layout) Instruction(op Opcode) (uint32, error) {
	c, ok := l.Opcodes[op]
	if !ok {
		return 0, fmt.Errorf("layout %s has no opcode for %v", l.Name, op)
	}
	return l.code(c), nil
}

func (l *Layout) parseInstruction(w uint32) (Opcode, error) {
	if w&^l.code(1<<l.CodeBits-1) != 0 {
		return 0, fmt.Errorf("reserved instruction bits set in %08X", w)
	}
	c := l.codeOf(w)
	for op, oc := range l.Opcodes {
		if oc == c {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown opcode %#x", c)
}

// Status returns the status word reporting success or failure.
func (l *Layout) Status(ok bool) uint32 {
	if ok {
		return l.code(l.StatusSuccess)
	}
	return l.code(l.StatusFailure)
}

func (l *Layout) parseStatus(w uint32) (bool, error) {
	switch w {
	case l.code(l.StatusSuccess):
		return true, nil
	case l.code(l.StatusFailure):
		return false, nil
	}
	return false, fmt.Errorf("invalid status word %08X", w)
}
