// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plan

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"filippo.io/cryptotv/internal/errs"
	"filippo.io/cryptotv/internal/frame"
	"filippo.io/cryptotv/internal/segment"
	"filippo.io/cryptotv/internal/sequence"
	"filippo.io/cryptotv/oracle"
)

func testSchema() *Schema {
	return &Schema{
		Slots:               DefaultSlots,
		Padding:             true,
		BlockSize:           16,
		BlockSizeAD:         16,
		BlockSizeHash:       16,
		MaxBlocksPerSegment: 9999,
		MaxFrameLength:      0xFFFF,
	}
}

func encryptVector(adLen, dataLen int) *Vector {
	return &Vector{
		Kind: sequence.Encrypt,
		Key:  bytes.Repeat([]byte{0xFF}, 16),
		Npub: bytes.Repeat([]byte{0x55}, 12),
		AD:   bytes.Repeat([]byte{0xA0}, adLen),
		Data: bytes.Repeat([]byte{0xC0}, dataLen),
		Output: &oracle.Output{
			Ciphertext: bytes.Repeat([]byte{0x3C}, dataLen),
			Tag:        bytes.Repeat([]byte{0x7A}, 16),
		},
	}
}

func framesOf(rs []frame.Record, t segment.Type) []*frame.Frame {
	var fs []*frame.Frame
	for _, r := range rs {
		if f, ok := r.(*frame.Frame); ok && f.Type == t {
			fs = append(fs, f)
		}
	}
	return fs
}

func diff(t *testing.T, want, got interface{}) {
	t.Helper()
	if d := cmp.Diff(want, got, cmpopts.EquateEmpty()); d != "" {
		t.Errorf("unexpected records (-want +got):\n%s", d)
	}
}

func TestEmptyAD(t *testing.T) {
	s := testSchema()

	st, err := Plan(s, encryptVector(0, 20))
	if err != nil {
		t.Fatal(err)
	}
	ad := framesOf(st.Public, segment.AD)
	if len(ad) != 1 || len(ad[0].Payload) != 0 || !ad[0].EOT || ad[0].EOI {
		t.Errorf("expected one empty AD frame, got %v", ad)
	}
	if i, j := indexOf(st.Public, segment.AD), indexOf(st.Public, segment.Plaintext); i > j {
		t.Errorf("AD frame at %d after data at %d", i, j)
	}

	st, err = Plan(s, encryptVector(0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if ad := framesOf(st.Public, segment.AD); len(ad) != 0 {
		t.Errorf("expected no AD frames, got %v", ad)
	}
	if npub := framesOf(st.Public, segment.Npub); !npub[0].EOI {
		t.Errorf("expected EOI on the nonce when there is no message")
	}

	s.Padding = false
	st, err = Plan(s, encryptVector(0, 20))
	if err != nil {
		t.Fatal(err)
	}
	if ad := framesOf(st.Public, segment.AD); len(ad) != 0 {
		t.Errorf("expected no AD frames without padding, got %v", ad)
	}
}

func indexOf(rs []frame.Record, t segment.Type) int {
	for i, r := range rs {
		if f, ok := r.(*frame.Frame); ok && f.Type == t {
			return i
		}
	}
	return -1
}

func TestEncrypt(t *testing.T) {
	v := encryptVector(5, 20)
	v.NewKey = true
	st, err := Plan(testSchema(), v)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []frame.Record{
		&frame.Instruction{Op: frame.LoadKey},
		&frame.Frame{Type: segment.Key, Payload: v.Key, EOT: true, Last: true},
	}, st.Secret)
	diff(t, []frame.Record{
		&frame.Instruction{Op: frame.ActivateKey},
		&frame.Instruction{Op: frame.Encrypt},
		&frame.Frame{Type: segment.Npub, Payload: v.Npub, EOT: true},
		&frame.Frame{Type: segment.AD, Payload: v.AD, EOT: true},
		&frame.Frame{Type: segment.Plaintext, Payload: v.Data, EOT: true, EOI: true, Last: true},
	}, st.Public)
	diff(t, []frame.Record{
		&frame.Frame{Type: segment.Ciphertext, Payload: v.Output.Ciphertext, EOT: true},
		&frame.Frame{Type: segment.Tag, Payload: v.Output.Tag, EOT: true, Last: true},
		&frame.Status{OK: true},
	}, st.Output)
}

func TestOffline(t *testing.T) {
	s := testSchema()
	s.Offline = true
	st, err := Plan(s, encryptVector(3, 0x102))
	if err != nil {
		t.Fatal(err)
	}
	f, ok := st.Public[1].(*frame.Frame)
	if !ok || f.Type != segment.Length {
		t.Fatalf("expected the length segment first, got %v", st.Public[1])
	}
	want := []byte{0, 0, 0, 3, 0, 0, 1, 2}
	if !bytes.Equal(f.Payload, want) || f.EOI {
		t.Errorf("length segment = %x, EOI=%v", f.Payload, f.EOI)
	}
}

func TestCiphertextExpansion(t *testing.T) {
	s := testSchema()
	s.CiphExp = true
	s.AddPartial = true

	st, err := Plan(s, encryptVector(0, 20))
	if err != nil {
		t.Fatal(err)
	}
	pt := framesOf(st.Public, segment.Plaintext)
	if len(pt) != 2 || len(pt[0].Payload) != 16 || len(pt[1].Payload) != 4 {
		t.Fatalf("unexpected plaintext frames %v", pt)
	}
	if pt[0].Partial || pt[0].EOT || !pt[1].Partial || !pt[1].EOT || !pt[1].EOI {
		t.Errorf("unexpected flags %v, %v", pt[0], pt[1])
	}

	st, err = Plan(s, encryptVector(0, 32))
	if err != nil {
		t.Fatal(err)
	}
	pt = framesOf(st.Public, segment.Plaintext)
	if len(pt) != 3 || len(pt[2].Payload) != 0 || !pt[2].EOT || pt[1].EOT || pt[1].Partial {
		t.Errorf("expected an empty expansion frame, got %v", pt)
	}
	if !pt[1].EOI || pt[2].EOI {
		t.Errorf("expected EOI on the last frame with data")
	}

	s.CiphExpNoExt = true
	st, err = Plan(s, encryptVector(0, 32))
	if err != nil {
		t.Fatal(err)
	}
	if pt := framesOf(st.Public, segment.Plaintext); len(pt) != 2 {
		t.Errorf("expected no expansion frame, got %v", pt)
	}
}

func TestDecrypt(t *testing.T) {
	s := testSchema()
	s.Slots = []Slot{NpubAD, DataTag}
	v := &Vector{
		Kind: sequence.Decrypt,
		Npub: []byte{1, 2, 3, 4},
		AD:   []byte{5, 6},
		Data: []byte{7, 8, 9},
		Tag:  []byte{10, 11},
		Output: &oracle.Output{
			Plaintext: []byte{0xC0, 0xC0, 0xC0},
			AuthOK:    true,
		},
	}
	st, err := Plan(s, v)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []frame.Record{
		&frame.Instruction{Op: frame.Decrypt},
		&frame.Frame{Type: segment.NpubAD, Payload: []byte{1, 2, 3, 4, 5, 6}, EOT: true},
		&frame.Frame{Type: segment.CiphertextTag, Payload: []byte{7, 8, 9, 10, 11}, EOT: true, EOI: true, Last: true},
	}, st.Public)
	diff(t, []frame.Record{
		&frame.Frame{Type: segment.Plaintext, Payload: v.Output.Plaintext, EOT: true, Last: true},
		&frame.Status{OK: true},
	}, st.Output)

	v.Output = &oracle.Output{AuthOK: false}
	st, err = Plan(s, v)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []frame.Record{&frame.Status{OK: false}}, st.Output)
}

func TestDecryptTagSlot(t *testing.T) {
	s := testSchema()
	s.Slots = []Slot{Npub, Tag, Data, AD}
	v := &Vector{
		Kind:   sequence.Decrypt,
		Npub:   []byte{1},
		AD:     []byte{2},
		Data:   []byte{3},
		Tag:    []byte{4},
		Output: &oracle.Output{Plaintext: []byte{5}, AuthOK: true},
	}
	st, err := Plan(s, v)
	if err != nil {
		t.Fatal(err)
	}
	var types []segment.Type
	for _, r := range st.Public[1:] {
		types = append(types, r.(*frame.Frame).Type)
	}
	diff(t, []segment.Type{segment.Npub, segment.Tag, segment.Ciphertext, segment.AD}, types)
	if f := st.Public[len(st.Public)-1].(*frame.Frame); !f.EOI || !f.Last {
		t.Errorf("expected EOI and Last on the trailing AD frame")
	}
}

func TestHash(t *testing.T) {
	v := &Vector{Kind: sequence.Hash, Output: &oracle.Output{Digest: []byte{1, 2, 3}}}
	st, err := Plan(testSchema(), v)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []frame.Record(nil), st.Secret)
	diff(t, []frame.Record{
		&frame.Instruction{Op: frame.Hash},
		&frame.Frame{Type: segment.HashMessage, EOT: true, EOI: true, Last: true},
	}, st.Public)
	diff(t, []frame.Record{
		&frame.Frame{Type: segment.HashValue, Payload: []byte{1, 2, 3}, EOT: true, Last: true},
		&frame.Status{OK: true},
	}, st.Output)
}

func TestMaxBlocks(t *testing.T) {
	s := testSchema()
	s.MaxBlocksPerSegment = 2
	if _, err := Plan(s, encryptVector(0, 32)); err != nil {
		t.Errorf("two blocks: %v", err)
	}
	_, err := Plan(s, encryptVector(0, 33))
	var e *errs.BoundaryError
	if !errors.As(err, &e) {
		t.Errorf("expected a BoundaryError, got %v", err)
	}

	s = testSchema()
	s.MaxFrameLength = 16
	if _, err := Plan(s, encryptVector(17, 0)); !errors.As(err, &e) {
		t.Errorf("expected a BoundaryError, got %v", err)
	}
}

func TestParseSlots(t *testing.T) {
	slots, err := ParseSlots([]string{"NPUB", "ad", "data", "tag"})
	if err != nil {
		t.Fatal(err)
	}
	diff(t, DefaultSlots, slots)
	if s := FormatSlots(slots); s != "npub ad data tag" {
		t.Errorf("FormatSlots = %q", s)
	}

	for _, bad := range [][]string{
		nil,
		{"len", "npub", "data"},
		{"npub", "data", "data"},
		{"npub", "foo", "data"},
		{"npub", "ad"},
		{"npub_ad", "ad", "data"},
		{"npub", "npub_ad", "data"},
		{"data_tag", "tag"},
	} {
		if _, err := ParseSlots(bad); err == nil {
			t.Errorf("ParseSlots(%q) succeeded", bad)
		}
	}
}
