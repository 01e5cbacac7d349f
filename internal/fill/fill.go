// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fill materializes the bytes of test vector fields.
package fill

import (
	"crypto/cipher"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"
)

// Mode is the byte fill policy of a generation routine, numbered as on the
// command line.
type Mode int

const (
	Random  Mode = 0
	Fixed   Mode = 1
	Counter Mode = 2
)

func (m Mode) String() string {
	switch m {
	case Random:
		return "random"
	case Fixed:
		return "fixed"
	case Counter:
		return "counter"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func ParseMode(n int) (Mode, error) {
	if m := Mode(n); m == Random || m == Fixed || m == Counter {
		return m, nil
	}
	return 0, fmt.Errorf("valid MODE is 0, 1 or 2, got %d", n)
}

// Field identifies the field being filled, which selects the base byte of
// the Fixed and Counter modes.
type Field int

const (
	Key Field = iota
	Npub
	Nsec
	AD
	Data
	Hash
)

var bases = [...]byte{
	Key:  0xFF,
	Npub: 0x55,
	Nsec: 0xDD,
	AD:   0xA0,
	Data: 0xC0,
	Hash: 0xF0,
}

// Base returns the byte used by Fixed, and the first byte of Counter.
func Base(f Field) byte {
	return bases[f]
}

// Repeat returns n copies of b.
func Repeat(b byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// RunningCounter returns n bytes starting at start, each one the previous
// plus one modulo 256.
func RunningCounter(start byte, n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = start + byte(i)
	}
	return out
}

// Bytes returns n bytes of field f according to m. src is only read in
// Random mode.
func Bytes(m Mode, f Field, n int, src *Source) []byte {
	switch m {
	case Fixed:
		return Repeat(Base(f), n)
	case Counter:
		return RunningCounter(Base(f), n)
	default:
		return src.Bytes(n)
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for n := range p {
		p[n] = 0
	}
	return len(p), nil
}

// Source is a deterministic stream of random bytes and numbers: the same
// seed always produces the same sequence. It is not safe for concurrent
// use.
type Source struct {
	r io.Reader
}

// NewSource returns a Source keyed by seed, which may have any length.
func NewSource(seed []byte) *Source {
	key := make([]byte, chacha20.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, seed, nil, []byte("cryptotv fill")), key); err != nil {
		panic("fill: internal error: " + err.Error())
	}
	c, err := chacha20.NewUnauthenticatedCipher(key, make([]byte, chacha20.NonceSize))
	if err != nil {
		panic("fill: internal error: " + err.Error())
	}
	return &Source{r: cipher.StreamReader{S: c, R: zeroReader{}}}
}

func (s *Source) Read(p []byte) (int, error) {
	return io.ReadFull(s.r, p)
}

func (s *Source) Bytes(n int) []byte {
	b := make([]byte, n)
	s.Read(b)
	return b
}

func (s *Source) uint32() uint32 {
	var b [4]byte
	s.Read(b[:])
	return binary.BigEndian.Uint32(b[:])
}

// Intn returns a uniform number in [0, n). It panics if n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 || uint64(n) > 1<<32 {
		panic("fill: invalid argument to Intn")
	}
	bound := uint32(n - 1)
	if bound == 1<<32-1 {
		return int(s.uint32())
	}
	// Rejection sampling over the largest multiple of n below 2^32.
	limit := (1<<32 - 1) - (1<<32-1)%(bound+1)
	for {
		v := s.uint32()
		if v < limit {
			return int(v % (bound + 1))
		}
	}
}

// Range returns a uniform number in [lo, hi].
func (s *Source) Range(lo, hi int) int {
	return lo + s.Intn(hi-lo+1)
}

func (s *Source) Bool() bool {
	return s.Intn(2) == 1
}
