// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package segment models the typed logical fields of a test vector and
// their division into block-sized chunks.
package segment

import "fmt"

// Type is the logical type of a segment. The set is closed: the frame
// layouts map each Type to a header code.
type Type int

const (
	Key Type = iota + 1
	Npub
	Nsec
	EncNsec
	AD
	NpubAD
	ADNpub
	Plaintext
	Ciphertext
	CiphertextTag
	Tag
	HashMessage
	HashValue
	Length
)

var typeNames = map[Type]string{
	Key:           "Key",
	Npub:          "Npub",
	Nsec:          "Nsec",
	EncNsec:       "Enc Nsec",
	AD:            "AD",
	NpubAD:        "Npub||AD",
	ADNpub:        "AD||Npub",
	Plaintext:     "Plaintext",
	Ciphertext:    "Ciphertext",
	CiphertextTag: "Ciphertext||Tag",
	Tag:           "Tag",
	HashMessage:   "Hash Message",
	HashValue:     "Hash Value",
	Length:        "Length",
}

func (t Type) String() string {
	if s, ok := typeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// Types returns every segment type in declaration order.
func Types() []Type {
	ts := make([]Type, 0, len(typeNames))
	for t := Key; t <= Length; t++ {
		ts = append(ts, t)
	}
	return ts
}

// IsMessage reports whether segments of type t carry associated data,
// message data or a hash message, the inputs that end at EOI.
func (t Type) IsMessage() bool {
	switch t {
	case AD, NpubAD, ADNpub, Plaintext, Ciphertext, CiphertextTag, HashMessage:
		return true
	}
	return false
}

// A Segment is a typed run of bytes sent to the hardware as one or more
// frames of the same type.
type Segment struct {
	Type  Type
	Bytes []byte
}

// New returns a segment of type t. It does not copy b.
func New(t Type, b []byte) *Segment {
	return &Segment{Type: t, Bytes: b}
}

// Chunk is a block-sized slice of a segment. Bytes aliases the segment.
type Chunk struct {
	Bytes   []byte
	Last    bool
	Partial bool
}

// Policy controls the treatment of empty segments and of the partial flag.
type Policy struct {
	// PadEmpty makes an empty segment produce a single empty chunk
	// instead of none.
	PadEmpty bool
	// FlagPartial sets Chunk.Partial on a chunk whose length is not a
	// multiple of the block size.
	FlagPartial bool
}

// Chunks returns an iterator over the chunks of s. Every chunk but the
// last is exactly blockSize bytes long.
func (s *Segment) Chunks(blockSize int, p Policy) *Chunker {
	if blockSize <= 0 {
		panic("segment: non-positive block size")
	}
	return &Chunker{rest: s.Bytes, size: blockSize, policy: p, empty: len(s.Bytes) == 0}
}

// Count returns the number of chunks Chunks would produce.
func (s *Segment) Count(blockSize int, p Policy) int {
	if len(s.Bytes) == 0 {
		if p.PadEmpty {
			return 1
		}
		return 0
	}
	return (len(s.Bytes) + blockSize - 1) / blockSize
}

// A Chunker iterates over the block-sized chunks of a Segment.
type Chunker struct {
	rest   []byte
	size   int
	policy Policy
	empty  bool
	done   bool
}

// Next returns the next chunk, or false once the segment is exhausted.
func (c *Chunker) Next() (Chunk, bool) {
	if c.done {
		return Chunk{}, false
	}
	if c.empty {
		c.done = true
		if !c.policy.PadEmpty {
			return Chunk{}, false
		}
		return Chunk{Bytes: c.rest[:0:0], Last: true}, true
	}
	n := c.size
	if n > len(c.rest) {
		n = len(c.rest)
	}
	ch := Chunk{Bytes: c.rest[:n:n]}
	c.rest = c.rest[n:]
	if len(c.rest) == 0 {
		c.done = true
		ch.Last = true
	}
	ch.Partial = c.policy.FlagPartial && n%c.size != 0
	return ch, true
}

// All drains the iterator.
func (c *Chunker) All() []Chunk {
	var chunks []Chunk
	for {
		ch, ok := c.Next()
		if !ok {
			return chunks
		}
		chunks = append(chunks, ch)
	}
}
