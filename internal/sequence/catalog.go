// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sequence

import (
	"filippo.io/cryptotv/internal/errs"
	"filippo.io/cryptotv/internal/fill"
)

// Case is one numbered entry of a catalog.
type Case struct {
	NewKey  bool
	Decrypt bool
	ADLen   int
	DataLen int
	Hash    bool
}

func encDec(ad, d int) []Case {
	return []Case{
		{NewKey: true, ADLen: ad, DataLen: d},
		{Decrypt: true, ADLen: ad, DataLen: d},
	}
}

// RoutineCatalog returns the 22 AEAD cases every hardware implementation
// should pass at a minimum. bsa and bsd are the AD and data block sizes
// in bytes. Each encryption is followed by the decryption of the same
// sizes under the same key.
func RoutineCatalog(bsa, bsd int) []Case {
	var c []Case
	for _, s := range [][2]int{
		{0, 0},
		{1, 0},
		{0, 1},
		{1, 1},
		{bsa, bsd},
		{bsa - 1, bsd - 1},
		{bsa + 1, bsd + 1},
		{bsa * 2, bsd * 2},
		{bsa * 3, bsd * 3},
		{bsa * 4, bsd * 4},
		{bsa * 5, bsd * 5},
	} {
		c = append(c, encDec(s[0], s[1])...)
	}
	return c
}

// CombinedCatalog returns the 33 cases of the combined AEAD and hash
// routine, interleaved as encrypt, decrypt, hash.
func CombinedCatalog(bsa, bsd int) []Case {
	var c []Case
	for _, s := range [][3]int{
		{0, 0, 0},
		{1, 0, 1},
		{0, 1, 2},
		{1, 1, 3},
		{2, 2, 4},
		{bsa - 1, bsd - 1, bsd - 1},
		{bsa, bsd, bsd + 1},
		{bsa + 1, bsd + 1, bsd + 2},
		{bsa * 2, bsd * 2, bsd * 2},
		{bsa*2 + 1, bsd*2 + 1, bsd*2 + 1},
		{bsa * 3, bsd * 3, bsd * 3},
	} {
		c = append(c, encDec(s[0], s[1])...)
		c = append(c, Case{Decrypt: true, DataLen: s[2], Hash: true})
	}
	return c
}

// HashCatalog returns the 21 hash message lengths around multiples of the
// hash block size bsh, in bytes.
func HashCatalog(bsh int) []Case {
	var c []Case
	for _, n := range []int{
		0, 1, 2, 3, 4, 5, 6, 7,
		bsh - 2, bsh - 1, bsh, bsh + 1, bsh + 2,
		bsh * 2, bsh*2 + 1,
		bsh * 3, bsh*3 + 1,
		bsh * 4, bsh*4 + 1,
		bsh * 5, bsh*5 + 1,
	} {
		c = append(c, Case{DataLen: n, Hash: true})
	}
	return c
}

// Select returns the operations for cases begin through end (1-indexed,
// inclusive) of catalog.
func Select(routine string, catalog []Case, begin, end int, m fill.Mode) ([]Operation, error) {
	if begin < 1 || begin > len(catalog) {
		return nil, errs.Boundaryf(routine, "BEGIN=%d out of bounds [1, %d]", begin, len(catalog))
	}
	if end < 1 || end > len(catalog) {
		return nil, errs.Boundaryf(routine, "END=%d out of bounds [1, %d]", end, len(catalog))
	}
	if begin > end {
		return nil, errs.Boundaryf(routine, "BEGIN > END (%d > %d)", begin, end)
	}
	var ops []Operation
	for i := begin; i <= end; i++ {
		c := catalog[i-1]
		for _, n := range []int{c.ADLen, c.DataLen} {
			if n < 0 {
				return nil, errs.Boundaryf(routine, "case %d has negative length %d (block size too small)", i, n)
			}
		}
		op := c.Operation(m)
		op.Routine = routine
		op.Case = i
		ops = append(ops, op)
	}
	return ops, nil
}

// Operation returns the operation described by c.
func (c Case) Operation(m fill.Mode) Operation {
	if c.Hash {
		return Operation{Kind: Hash, DataLen: c.DataLen, Fill: m}
	}
	op := Operation{Kind: Encrypt, NewKey: c.NewKey, ADLen: c.ADLen, DataLen: c.DataLen, Fill: m}
	if c.Decrypt {
		op.Kind = Decrypt
	}
	return op
}

// Routine selects cases begin through end of RoutineCatalog.
func Routine(begin, end int, m fill.Mode, bsa, bsd int) ([]Operation, error) {
	return Select("gen_test_routine", RoutineCatalog(bsa, bsd), begin, end, m)
}

// Combined selects cases begin through end of CombinedCatalog.
func Combined(begin, end int, m fill.Mode, bsa, bsd int) ([]Operation, error) {
	return Select("gen_test_combined", CombinedCatalog(bsa, bsd), begin, end, m)
}

// HashSweep selects cases begin through end of HashCatalog.
func HashSweep(begin, end int, m fill.Mode, bsh int) ([]Operation, error) {
	return Select("gen_hash", HashCatalog(bsh), begin, end, m)
}
