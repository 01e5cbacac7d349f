// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sequence

import (
	"filippo.io/cryptotv/internal/errs"
	"filippo.io/cryptotv/internal/fill"
)

// MaxRandom is the largest number of operations Random generates.
const MaxRandom = 1000

// Ranges bounds the lengths drawn by Random, inclusive.
type Ranges struct {
	MinAD, MaxAD     int
	MinData, MaxData int
}

// Random returns n AEAD operations with uniformly drawn lengths, operation
// and key reuse, and random bytes.
func Random(n int, r Ranges, src *fill.Source) ([]Operation, error) {
	if n < 1 || n > MaxRandom {
		return nil, errs.Configf("gen_random", "number of tests has to be between 1 and %d: %d", MaxRandom, n)
	}
	if r.MinAD < 0 || r.MinAD > r.MaxAD {
		return nil, errs.Configf("min_ad", "invalid AD range [%d, %d]", r.MinAD, r.MaxAD)
	}
	if r.MinData < 0 || r.MinData > r.MaxData {
		return nil, errs.Configf("min_d", "invalid data range [%d, %d]", r.MinData, r.MaxData)
	}
	ops := make([]Operation, 0, n)
	for i := 0; i < n; i++ {
		op := Operation{
			Kind:    Encrypt,
			NewKey:  src.Bool(),
			ADLen:   src.Range(r.MinAD, r.MaxAD),
			DataLen: src.Range(r.MinData, r.MaxData),
			Fill:    fill.Random,
			Routine: "gen_random",
		}
		if src.Bool() {
			op.Kind = Decrypt
		}
		ops = append(ops, op)
	}
	return ops, nil
}
