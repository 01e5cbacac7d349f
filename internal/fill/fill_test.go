// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fill_test

import (
	"bytes"
	"testing"

	"filippo.io/cryptotv/internal/fill"
)

func TestRunningCounter(t *testing.T) {
	if got := fill.RunningCounter(0x00, 4); !bytes.Equal(got, []byte{0x00, 0x01, 0x02, 0x03}) {
		t.Errorf("got %x", got)
	}
	if got := fill.RunningCounter(0xFE, 4); !bytes.Equal(got, []byte{0xFE, 0xFF, 0x00, 0x01}) {
		t.Errorf("counter does not wrap: %x", got)
	}
}

func TestBytes(t *testing.T) {
	if got := fill.Bytes(fill.Fixed, fill.AD, 3, nil); !bytes.Equal(got, []byte{0xA0, 0xA0, 0xA0}) {
		t.Errorf("fixed AD: got %x", got)
	}
	if got := fill.Bytes(fill.Counter, fill.Data, 3, nil); !bytes.Equal(got, []byte{0xC0, 0xC1, 0xC2}) {
		t.Errorf("counter data: got %x", got)
	}
	if got := fill.Bytes(fill.Fixed, fill.Key, 0, nil); len(got) != 0 {
		t.Errorf("empty field: got %x", got)
	}
	src := fill.NewSource([]byte("seed"))
	if got := fill.Bytes(fill.Random, fill.Npub, 16, src); len(got) != 16 {
		t.Errorf("random: got %d bytes", len(got))
	}
}

func TestSourceDeterministic(t *testing.T) {
	a, b := fill.NewSource([]byte("seed")), fill.NewSource([]byte("seed"))
	if !bytes.Equal(a.Bytes(100), b.Bytes(100)) {
		t.Error("same seed produced different bytes")
	}
	if a.Intn(1000) != b.Intn(1000) || a.Bool() != b.Bool() {
		t.Error("same seed produced different numbers")
	}
	c := fill.NewSource([]byte("other"))
	if bytes.Equal(a.Bytes(32), c.Bytes(32)) {
		t.Error("different seeds produced the same bytes")
	}
}

func TestSourceRange(t *testing.T) {
	src := fill.NewSource(nil)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := src.Range(3, 7)
		if v < 3 || v > 7 {
			t.Fatalf("Range(3, 7) = %d", v)
		}
		seen[v] = true
	}
	if len(seen) != 5 {
		t.Errorf("Range(3, 7) only produced %v", seen)
	}
	if v := src.Range(5, 5); v != 5 {
		t.Errorf("Range(5, 5) = %d", v)
	}
}

func TestParseMode(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		if _, err := fill.ParseMode(n); err != nil {
			t.Errorf("ParseMode(%d): %v", n, err)
		}
	}
	if _, err := fill.ParseMode(3); err == nil {
		t.Error("ParseMode(3) succeeded")
	}
}
