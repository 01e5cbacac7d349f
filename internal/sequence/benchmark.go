// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sequence

import (
	"fmt"

	"filippo.io/cryptotv/internal/fill"
)

var powNames = map[Kind]string{Encrypt: "enc", Decrypt: "dec"}

// Suite is a named, independently numbered list of operations.
type Suite struct {
	Name string
	Ops  []Operation
}

// Benchmark returns the suites used to measure and cross-check hardware
// implementations. AEAD suites are omitted if aead is false, and hash
// suites if bsh is zero. Block sizes are in bytes.
//
// The pow_* suites hold a single message each, one suite per distinct
// basic size and operation, for power and energy measurements:
// pow_enc_AD_DATA, pow_dec_AD_DATA and pow_hash_N.
func Benchmark(aead bool, bsa, bsd, bsh int) []Suite {
	var suites []Suite
	if aead {
		sizes := [][2]int{
			{5 * bsa, 0}, {4 * bsa, 0}, {1536, 0}, {64, 0}, {16, 0},
			{0, 5 * bsd}, {0, 4 * bsd}, {0, 1536}, {0, 64}, {0, 16},
			{5 * bsa, 5 * bsd}, {4 * bsa, 4 * bsd}, {1536, 1536}, {64, 64}, {16, 16},
		}
		for _, reuse := range []bool{false, true} {
			s := Suite{Name: "generic_aead_sizes_new_key"}
			if reuse {
				s.Name = "generic_aead_sizes_reuse_key"
			}
			for _, sz := range sizes {
				for _, c := range encDec(sz[0], sz[1]) {
					c.NewKey = !reuse
					s.Ops = append(s.Ops, c.Operation(fill.Random))
				}
			}
			suites = append(suites, s)
		}

		kats := Suite{Name: "kats_for_verification"}
		for ad := 0; ad < 2*bsa; ad++ {
			for d := 0; d < 2*bsd; d++ {
				kats.Ops = append(kats.Ops, Operation{Kind: Encrypt, ADLen: ad, DataLen: d, Fill: fill.Random})
			}
		}
		suites = append(suites, kats)

		seen := make(map[[2]int]bool)
		for _, sz := range sizes {
			if seen[sz] {
				continue
			}
			seen[sz] = true
			for _, k := range []Kind{Encrypt, Decrypt} {
				name := fmt.Sprintf("pow_%s_%d_%d", powNames[k], sz[0], sz[1])
				suites = append(suites, Suite{Name: name, Ops: []Operation{
					{Kind: k, NewKey: true, ADLen: sz[0], DataLen: sz[1], Fill: fill.Random},
				}})
			}
		}
	}
	if bsh > 0 {
		basic := Suite{Name: "basic_hash_sizes"}
		for _, n := range []int{0, 16, 64, 1536, 4 * bsh, 5 * bsh} {
			basic.Ops = append(basic.Ops, Operation{Kind: Hash, DataLen: n, Fill: fill.Random})
		}
		blanket := Suite{Name: "blanket_hash_test"}
		for n := 0; n < 4*bsh; n++ {
			blanket.Ops = append(blanket.Ops, Operation{Kind: Hash, DataLen: n, Fill: fill.Random})
		}
		suites = append(suites, basic, blanket)
		seen := make(map[int]bool)
		for _, op := range basic.Ops {
			if seen[op.DataLen] {
				continue
			}
			seen[op.DataLen] = true
			suites = append(suites, Suite{Name: fmt.Sprintf("pow_hash_%d", op.DataLen), Ops: []Operation{op}})
		}
	}
	for i := range suites {
		for j := range suites[i].Ops {
			suites[i].Ops[j].Routine = suites[i].Name
			suites[i].Ops[j].Case = j + 1
		}
	}
	return suites
}
