// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package segment_test

import (
	"bytes"
	"testing"

	"filippo.io/cryptotv/internal/segment"
)

func TestChunksConcatenation(t *testing.T) {
	for _, blockSize := range []int{1, 4, 8, 16} {
		for n := 0; n <= 5*blockSize+1; n++ {
			b := make([]byte, n)
			for i := range b {
				b[i] = byte(i)
			}
			s := segment.New(segment.Plaintext, b)
			chunks := s.Chunks(blockSize, segment.Policy{PadEmpty: true}).All()
			if got, want := len(chunks), s.Count(blockSize, segment.Policy{PadEmpty: true}); got != want {
				t.Errorf("bs=%d n=%d: got %d chunks, Count says %d", blockSize, n, got, want)
			}
			var cat []byte
			for i, ch := range chunks {
				cat = append(cat, ch.Bytes...)
				final := i == len(chunks)-1
				if ch.Last != final {
					t.Errorf("bs=%d n=%d: chunk %d Last=%v", blockSize, n, i, ch.Last)
				}
				if !final && len(ch.Bytes) != blockSize {
					t.Errorf("bs=%d n=%d: non-final chunk %d has %d bytes", blockSize, n, i, len(ch.Bytes))
				}
				if final && n > 0 && (len(ch.Bytes) < 1 || len(ch.Bytes) > blockSize) {
					t.Errorf("bs=%d n=%d: final chunk has %d bytes", blockSize, n, len(ch.Bytes))
				}
			}
			if !bytes.Equal(cat, b) {
				t.Errorf("bs=%d n=%d: concatenation mismatch", blockSize, n)
			}
		}
	}
}

func TestChunksEmpty(t *testing.T) {
	s := segment.New(segment.AD, nil)
	if chunks := s.Chunks(16, segment.Policy{}).All(); len(chunks) != 0 {
		t.Errorf("got %d chunks without padding, want 0", len(chunks))
	}
	chunks := s.Chunks(16, segment.Policy{PadEmpty: true, FlagPartial: true}).All()
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks with padding, want 1", len(chunks))
	}
	if c := chunks[0]; len(c.Bytes) != 0 || !c.Last || c.Partial {
		t.Errorf("unexpected empty chunk %+v", c)
	}
}

func TestChunksPartial(t *testing.T) {
	s := segment.New(segment.Ciphertext, make([]byte, 20))
	chunks := s.Chunks(8, segment.Policy{FlagPartial: true}).All()
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	for i, want := range []bool{false, false, true} {
		if chunks[i].Partial != want {
			t.Errorf("chunk %d: Partial=%v, want %v", i, chunks[i].Partial, want)
		}
	}
	chunks = s.Chunks(8, segment.Policy{}).All()
	if chunks[2].Partial {
		t.Error("partial flag set without FlagPartial")
	}
}

func TestTypeString(t *testing.T) {
	for _, typ := range segment.Types() {
		if typ.String() == "" {
			t.Errorf("empty name for %d", int(typ))
		}
	}
	if got := segment.Type(99).String(); got != "Type(99)" {
		t.Errorf("got %q", got)
	}
}

func TestTypeIsMessage(t *testing.T) {
	msg := map[segment.Type]bool{
		segment.AD: true, segment.NpubAD: true, segment.ADNpub: true,
		segment.Plaintext: true, segment.Ciphertext: true,
		segment.CiphertextTag: true, segment.HashMessage: true,
	}
	for _, ty := range segment.Types() {
		if got := ty.IsMessage(); got != msg[ty] {
			t.Errorf("%v.IsMessage() = %v, want %v", ty, got, msg[ty])
		}
	}
}
