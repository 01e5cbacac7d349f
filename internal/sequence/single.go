// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sequence

import (
	"encoding/hex"
	"strings"

	"filippo.io/cryptotv/internal/errs"
	"filippo.io/cryptotv/internal/fill"
)

// Sizes are the field sizes, in bits, single vectors are checked against.
type Sizes struct {
	KeyBits  int
	NpubBits int
	NsecBits int
}

// Single returns the operation described by six command line fields:
// MODE (0 encrypt, 1 decrypt, 2 hash; true and false select decrypt and
// encrypt), KEY, NPUB, NSEC, AD and DATA in hexadecimal.
//
// For AEAD operations KEY, NPUB and NSEC must match the configured sizes
// exactly; NSEC is ignored when its size is zero. KEY, NPUB, NSEC and AD
// are ignored for hash operations.
func Single(fields []string, sz Sizes) (Operation, error) {
	if len(fields) != 6 {
		return Operation{}, errs.Configf("gen_single", "expected 6 fields (MODE KEY NPUB NSEC AD DATA), got %d", len(fields))
	}
	var kind Kind
	switch strings.ToLower(fields[0]) {
	case "0", "false":
		kind = Encrypt
	case "1", "true":
		kind = Decrypt
	case "2":
		kind = Hash
	default:
		return Operation{}, errs.Configf("gen_single", "invalid MODE %q", fields[0])
	}

	names := []string{"KEY", "NPUB", "NSEC", "AD", "DATA"}
	fields = fields[1:]
	if kind == Hash {
		// Placeholders such as "0" are accepted for the unused fields.
		data, err := decodeField(names[4], fields[4])
		if err != nil {
			return Operation{}, err
		}
		return Operation{Kind: Hash, DataLen: len(data), Explicit: &Explicit{Data: data}, Routine: "gen_single"}, nil
	}
	values := make([][]byte, len(names))
	for i, name := range names {
		b, err := decodeField(name, fields[i])
		if err != nil {
			return Operation{}, err
		}
		values[i] = b
	}

	x := &Explicit{Data: values[4]}
	op := Operation{Kind: kind, DataLen: len(x.Data), Explicit: x, Routine: "gen_single"}
	for i, bits := range []int{sz.KeyBits, sz.NpubBits, sz.NsecBits} {
		if bits > 0 && len(values[i])*8 != bits {
			return Operation{}, errs.Configf("gen_single", "%s %s (size=%d) must have the size of %d bits",
				names[i], fields[i], len(values[i])*8, bits)
		}
	}
	x.Key, x.Npub, x.AD = values[0], values[1], values[3]
	if sz.NsecBits > 0 {
		x.Nsec = values[2]
	}
	op.NewKey = true
	op.ADLen = len(x.AD)
	op.Fill = fill.Fixed
	return op, nil
}

func decodeField(name, s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, errs.Configf("gen_single", "%s %q must have an even number of hexadecimal digits", name, s)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errs.Configf("gen_single", "%s %q is not hexadecimal: %v", name, s, err)
	}
	return b, nil
}
