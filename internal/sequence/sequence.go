// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sequence produces the ordered lists of abstract operations that
// make up a test suite: random, custom, single and the numbered
// block-boundary catalogs.
//
// Lengths are in bytes. Operations carry sizes and a fill policy only;
// their bytes are materialized later, one operation at a time.
package sequence

import (
	"fmt"

	"filippo.io/cryptotv/internal/fill"
)

// Kind is the type of an operation.
type Kind int

const (
	Encrypt Kind = iota + 1
	Decrypt
	Hash
)

func (k Kind) String() string {
	switch k {
	case Encrypt:
		return "encrypt"
	case Decrypt:
		return "decrypt"
	case Hash:
		return "hash"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsAEAD reports whether k uses a key, a nonce and associated data.
func (k Kind) IsAEAD() bool {
	return k == Encrypt || k == Decrypt
}

// An Operation is one test vector to generate, before its inputs are
// materialized.
type Operation struct {
	Kind   Kind
	NewKey bool

	// MsgID and KeyID are assigned by Numbering. KeyID is zero for hash
	// operations.
	MsgID int
	KeyID int

	ADLen   int
	DataLen int
	Fill    fill.Mode

	// Explicit, if not nil, holds the exact field values of a single
	// vector, and overrides the lengths and fill mode.
	Explicit *Explicit

	// Routine and Case identify where the operation came from, for error
	// reports. Case is the 1-indexed catalog number, or zero.
	Routine string
	Case    int
}

// Explicit holds the field values of an operation given on the command
// line. Key, Npub and Nsec are ignored for hash operations.
type Explicit struct {
	Key, Npub, Nsec, AD, Data []byte
}

func (op *Operation) String() string {
	s := fmt.Sprintf("%s msg=%d", op.Kind, op.MsgID)
	if op.Kind.IsAEAD() {
		s += fmt.Sprintf(" key=%d new_key=%v ad_len=%d", op.KeyID, op.NewKey, op.ADLen)
	}
	s += fmt.Sprintf(" data_len=%d fill=%v", op.DataLen, op.Fill)
	if op.Routine != "" {
		s += " routine=" + op.Routine
		if op.Case != 0 {
			s += fmt.Sprintf(" case=%d", op.Case)
		}
	}
	return s
}

// Numbering assigns message and key numbers across all the routines of a
// run. The zero value starts at message 1 and key 1.
type Numbering struct {
	msg, key  int
	keyLoaded bool
}

// Assign numbers ops in place.
func (n *Numbering) Assign(ops []Operation) {
	for i := range ops {
		n.Next(&ops[i])
	}
}

// Next numbers the operation following the ones already numbered. The
// first AEAD operation of a run always loads a key, even if it was not
// asked to.
func (n *Numbering) Next(op *Operation) {
	n.msg++
	op.MsgID = n.msg
	if !op.Kind.IsAEAD() {
		op.NewKey = false
		op.KeyID = 0
		return
	}
	if !n.keyLoaded {
		op.NewKey = true
		n.keyLoaded = true
	}
	if op.NewKey {
		n.key++
	}
	op.KeyID = n.key
}
