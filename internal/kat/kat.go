// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package kat writes test vectors in the human readable format of the
// NIST known answer tests.
//
//	# Msg ID = 1
//	# Key ID = 1
//	Key      = 000102030405060708090A0B0C0D0E0F
//	Npub     = 000102030405060708090A0B
//	AD       =
//	PT       = 00
//	CT       = 8E
//	TAG      = 1E6B2C0B6C1C1E8A7F0B3D4C5A6E7F80
//
// Hash vectors carry HASH and HASH_TAG lines instead.
package kat

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Entry is one vector. Nsec lines are written only if HasNsec is set.
type Entry struct {
	MsgID int
	KeyID int
	Hash  bool

	Key, Npub, Nsec, AD, Plaintext []byte
	EncNsec, Ciphertext, Tag       []byte
	HasNsec                        bool

	Message, Digest []byte
}

// A Writer appends entries to a test vector listing. Errors are sticky.
type Writer struct {
	w   io.Writer
	err error
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) line(name string, b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = fmt.Fprintf(w.w, "%-8s = %s\n", name, strings.ToUpper(hex.EncodeToString(b)))
}

// Write appends e, followed by an empty line.
func (w *Writer) Write(e *Entry) error {
	if w.err != nil {
		return w.err
	}
	_, w.err = fmt.Fprintf(w.w, "# Msg ID = %d\n", e.MsgID)
	if e.Hash {
		w.line("HASH", e.Message)
		w.line("HASH_TAG", e.Digest)
	} else {
		if w.err == nil {
			_, w.err = fmt.Fprintf(w.w, "# Key ID = %d\n", e.KeyID)
		}
		w.line("Key", e.Key)
		w.line("Npub", e.Npub)
		if e.HasNsec {
			w.line("Nsec_PT", e.Nsec)
		}
		w.line("AD", e.AD)
		w.line("PT", e.Plaintext)
		if e.HasNsec {
			w.line("Nsec_CT", e.EncNsec)
		}
		w.line("CT", e.Ciphertext)
		w.line("TAG", e.Tag)
	}
	if w.err == nil {
		_, w.err = io.WriteString(w.w, "\n")
	}
	return w.err
}
