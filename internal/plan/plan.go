// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package plan assigns the fields of one test vector to the public,
// secret and output channels, and splits them into framed segments.
package plan

import (
	"encoding/binary"

	"filippo.io/cryptotv/internal/errs"
	"filippo.io/cryptotv/internal/frame"
	"filippo.io/cryptotv/internal/segment"
	"filippo.io/cryptotv/internal/sequence"
	"filippo.io/cryptotv/oracle"
)

// Schema is the part of the run configuration that shapes the streams.
// Block sizes and lengths are in bytes.
type Schema struct {
	Slots []Slot

	Offline      bool
	CiphExp      bool
	CiphExpNoExt bool
	AddPartial   bool
	Padding      bool

	BlockSize     int
	BlockSizeAD   int
	BlockSizeHash int

	MaxBlocksPerSegment int
	// MaxFrameLength is the largest payload a header can announce.
	// Zero means no limit, as does a zero MaxBlocksPerSegment.
	MaxFrameLength int
}

// Vector is a materialized operation together with its oracle output.
//
// For Decrypt, Data is the ciphertext, Tag the tag and EncNsec the
// encrypted secret message number. For Hash, Data is the message.
type Vector struct {
	Kind   sequence.Kind
	NewKey bool

	Key, Npub, Nsec, AD, Data []byte
	Tag, EncNsec              []byte

	Output *oracle.Output
}

// Streams holds the records of one operation on each channel.
type Streams struct {
	Public []frame.Record
	Secret []frame.Record
	Output []frame.Record
}

// Plan lays out v on the three channels according to s.
func Plan(s *Schema, v *Vector) (*Streams, error) {
	st := &Streams{}
	if v.NewKey && v.Kind.IsAEAD() {
		st.Secret = append(st.Secret, &frame.Instruction{Op: frame.LoadKey},
			&frame.Frame{Type: segment.Key, Payload: v.Key, EOT: true, Last: true})
		st.Public = append(st.Public, &frame.Instruction{Op: frame.ActivateKey})
	}

	var in, out []*planned
	var err error
	switch v.Kind {
	case sequence.Encrypt:
		st.Public = append(st.Public, &frame.Instruction{Op: frame.Encrypt})
		in, err = s.aeadInput(v)
		if err == nil {
			out, err = s.encryptOutput(v)
		}
	case sequence.Decrypt:
		st.Public = append(st.Public, &frame.Instruction{Op: frame.Decrypt})
		in, err = s.aeadInput(v)
		if err == nil {
			out, err = s.decryptOutput(v)
		}
	case sequence.Hash:
		st.Public = append(st.Public, &frame.Instruction{Op: frame.Hash})
		msg := segment.New(segment.HashMessage, v.Data)
		in, err = s.frames(msg, s.BlockSizeHash, msgRange{0, len(v.Data)}, true, false)
		out = []*planned{{f: &frame.Frame{Type: segment.HashValue, Payload: v.Output.Digest, EOT: true}}}
	default:
		panic("plan: unknown operation kind")
	}
	if err != nil {
		return nil, err
	}

	markEOI(in)
	for i, p := range in {
		p.f.Last = i == len(in)-1
		st.Public = append(st.Public, p.f)
	}
	for i, p := range out {
		p.f.Last = i == len(out)-1
		st.Output = append(st.Output, p.f)
	}
	ok := v.Kind != sequence.Decrypt || v.Output.AuthOK
	st.Output = append(st.Output, &frame.Status{OK: ok})
	return st, nil
}

// planned is a frame together with the number of message bytes
// (associated data, data or hash message) it carries.
type planned struct {
	f   *frame.Frame
	msg int
}

// msgRange is the span of a segment holding message bytes.
type msgRange struct{ start, end int }

func overlap(r msgRange, start, end int) int {
	if start < r.start {
		start = r.start
	}
	if end > r.end {
		end = r.end
	}
	if end < start {
		return 0
	}
	return end - start
}

// markEOI sets EOI on the first input frame after which no message bytes
// remain. The length segment never carries EOI.
func markEOI(in []*planned) {
	remaining := 0
	for _, p := range in {
		remaining += p.msg
	}
	for _, p := range in {
		remaining -= p.msg
		if p.f.Type == segment.Length {
			continue
		}
		if remaining == 0 {
			p.f.EOI = true
			return
		}
	}
}

// single returns a one-frame segment, or nothing if b is empty.
func single(t segment.Type, b []byte) []*planned {
	if len(b) == 0 {
		return nil
	}
	return []*planned{{f: &frame.Frame{Type: t, Payload: b, EOT: true}}}
}

func concat(a, b []byte) []byte {
	c := make([]byte, 0, len(a)+len(b))
	return append(append(c, a...), b...)
}

func lengthPayload(adLen, dataLen int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[:4], uint32(adLen))
	binary.BigEndian.PutUint32(b[4:], uint32(dataLen))
	return b
}

// frames splits seg into frames. Without ciphertext expansion, or when
// expand is false, all chunks share one frame. Otherwise the final chunk
// gets its own frame.
func (s *Schema) frames(seg *segment.Segment, bs int, r msgRange, padEmpty, expand bool) ([]*planned, error) {
	expand = expand && s.CiphExp
	pol := segment.Policy{PadEmpty: padEmpty, FlagPartial: expand && s.AddPartial}
	if n := seg.Count(bs, pol); s.MaxBlocksPerSegment > 0 && n > s.MaxBlocksPerSegment {
		return nil, errs.Boundaryf(seg.Type.String()+" segment",
			"%d blocks exceed the limit of %d blocks per segment", n, s.MaxBlocksPerSegment)
	}
	chunks := seg.Chunks(bs, pol).All()
	if len(chunks) == 0 {
		return nil, nil
	}

	groups := [][]segment.Chunk{chunks}
	if expand && len(chunks) > 1 {
		groups = [][]segment.Chunk{chunks[:len(chunks)-1], chunks[len(chunks)-1:]}
	}

	var out []*planned
	off := 0
	for _, g := range groups {
		n := 0
		for _, c := range g {
			n += len(c.Bytes)
		}
		if s.MaxFrameLength > 0 && n > s.MaxFrameLength {
			return nil, errs.Boundaryf(seg.Type.String()+" segment",
				"frame of %d bytes exceeds the maximum length of %d bytes", n, s.MaxFrameLength)
		}
		last := g[len(g)-1]
		p := &planned{f: &frame.Frame{
			Type:    seg.Type,
			Payload: seg.Bytes[off : off+n : off+n],
			Partial: expand && last.Partial,
		}}
		if seg.Type.IsMessage() {
			p.msg = overlap(r, off, off+n)
		}
		out = append(out, p)
		off += n
	}

	if expand && !s.CiphExpNoExt && len(seg.Bytes) > 0 && len(seg.Bytes)%bs == 0 &&
		(seg.Type == segment.Plaintext || seg.Type == segment.Ciphertext) {
		out = append(out, &planned{f: &frame.Frame{Type: seg.Type, Payload: seg.Bytes[:0:0]}})
	}
	out[len(out)-1].f.EOT = true
	return out, nil
}

// adFrames returns the frames of an associated data segment. An empty one
// signals the end of the associated data only when data follows.
func (s *Schema) adFrames(v *Vector) ([]*planned, error) {
	pad := s.Padding && len(v.AD) == 0 && len(v.Data) > 0
	return s.frames(segment.New(segment.AD, v.AD), s.BlockSizeAD, msgRange{0, len(v.AD)}, pad, false)
}

func (s *Schema) dataFrames(t segment.Type, b []byte) ([]*planned, error) {
	return s.frames(segment.New(t, b), s.BlockSize, msgRange{0, len(b)}, s.Padding, true)
}

func (s *Schema) aeadInput(v *Vector) ([]*planned, error) {
	var in []*planned
	if s.Offline {
		in = append(in, single(segment.Length, lengthPayload(len(v.AD), len(v.Data)))...)
	}
	dataType, nsecType, nsec := segment.Plaintext, segment.Nsec, v.Nsec
	if v.Kind == sequence.Decrypt {
		dataType, nsecType, nsec = segment.Ciphertext, segment.EncNsec, v.EncNsec
	}
	for _, slot := range s.Slots {
		var ps []*planned
		var err error
		switch slot {
		case Npub:
			ps = single(segment.Npub, v.Npub)
		case Nsec:
			ps = single(nsecType, nsec)
		case AD:
			ps, err = s.adFrames(v)
		case NpubAD:
			b := concat(v.Npub, v.AD)
			ps, err = s.frames(segment.New(segment.NpubAD, b), s.BlockSizeAD,
				msgRange{len(v.Npub), len(b)}, false, false)
		case ADNpub:
			b := concat(v.AD, v.Npub)
			ps, err = s.frames(segment.New(segment.ADNpub, b), s.BlockSizeAD,
				msgRange{0, len(v.AD)}, false, false)
		case Data:
			ps, err = s.dataFrames(dataType, v.Data)
		case DataTag:
			if v.Kind == sequence.Encrypt {
				ps, err = s.dataFrames(segment.Plaintext, v.Data)
				break
			}
			b := concat(v.Data, v.Tag)
			ps, err = s.frames(segment.New(segment.CiphertextTag, b), s.BlockSize,
				msgRange{0, len(v.Data)}, false, true)
		case Tag:
			if v.Kind == sequence.Decrypt {
				ps, err = s.frames(segment.New(segment.Tag, v.Tag), s.BlockSize,
					msgRange{}, false, true)
			}
		}
		if err != nil {
			return nil, err
		}
		in = append(in, ps...)
	}
	return in, nil
}

func (s *Schema) encryptOutput(v *Vector) ([]*planned, error) {
	var out []*planned
	for _, slot := range s.Slots {
		var ps []*planned
		var err error
		switch slot {
		case Nsec:
			ps = single(segment.EncNsec, v.Output.EncNsec)
		case Data:
			ps, err = s.dataFrames(segment.Ciphertext, v.Output.Ciphertext)
		case DataTag:
			b := concat(v.Output.Ciphertext, v.Output.Tag)
			ps, err = s.frames(segment.New(segment.CiphertextTag, b), s.BlockSize,
				msgRange{0, len(v.Output.Ciphertext)}, false, true)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ps...)
	}
	if !Has(s.Slots, DataTag) {
		tag, err := s.frames(segment.New(segment.Tag, v.Output.Tag), s.BlockSize, msgRange{}, false, true)
		if err != nil {
			return nil, err
		}
		out = append(out, tag...)
	}
	return out, nil
}

func (s *Schema) decryptOutput(v *Vector) ([]*planned, error) {
	if !v.Output.AuthOK {
		return nil, nil
	}
	var out []*planned
	for _, slot := range s.Slots {
		var ps []*planned
		var err error
		switch slot {
		case Nsec:
			ps = single(segment.Nsec, v.Output.Nsec)
		case Data, DataTag:
			ps, err = s.dataFrames(segment.Plaintext, v.Output.Plaintext)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ps...)
	}
	return out, nil
}
