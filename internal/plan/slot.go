// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package plan

import (
	"fmt"
	"strings"
)

// A Slot is one entry of the segment order of encryption and decryption
// inputs.
type Slot int

const (
	Npub Slot = iota + 1
	Nsec
	AD
	ADNpub
	NpubAD
	Data
	DataTag
	Tag
	HashTag
)

var slotTokens = map[Slot]string{
	Npub:    "npub",
	Nsec:    "nsec",
	AD:      "ad",
	ADNpub:  "ad_npub",
	NpubAD:  "npub_ad",
	Data:    "data",
	DataTag: "data_tag",
	Tag:     "tag",
	HashTag: "hash_tag",
}

func (s Slot) String() string {
	if t, ok := slotTokens[s]; ok {
		return t
	}
	return fmt.Sprintf("Slot(%d)", int(s))
}

// DefaultSlots is the segment order "npub ad data tag".
var DefaultSlots = []Slot{Npub, AD, Data, Tag}

// ParseSlots parses a list of case-insensitive segment tokens. The length
// segment is implied by the offline flag and can't be listed.
func ParseSlots(tokens []string) ([]Slot, error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty segment order")
	}
	var slots []Slot
	seen := make(map[Slot]bool)
Tokens:
	for _, tok := range tokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "len" {
			return nil, fmt.Errorf("the length segment is added by the offline flag and can't be listed")
		}
		for s, name := range slotTokens {
			if name != tok {
				continue
			}
			if seen[s] {
				return nil, fmt.Errorf("duplicate segment %q", tok)
			}
			seen[s] = true
			slots = append(slots, s)
			continue Tokens
		}
		return nil, fmt.Errorf("unknown segment %q", tok)
	}
	if seen[AD] && (seen[ADNpub] || seen[NpubAD]) || seen[ADNpub] && seen[NpubAD] {
		return nil, fmt.Errorf("associated data appears in more than one segment")
	}
	if seen[Npub] && (seen[ADNpub] || seen[NpubAD]) {
		return nil, fmt.Errorf("npub appears in more than one segment")
	}
	if seen[Data] && seen[DataTag] || seen[Tag] && seen[DataTag] {
		return nil, fmt.Errorf("data or tag appears in more than one segment")
	}
	if !seen[Data] && !seen[DataTag] {
		return nil, fmt.Errorf("segment order has no data segment")
	}
	return slots, nil
}

// FormatSlots returns the tokens of slots joined by spaces.
func FormatSlots(slots []Slot) string {
	s := make([]string, len(slots))
	for i, sl := range slots {
		s[i] = sl.String()
	}
	return strings.Join(s, " ")
}

// Has reports whether s is one of slots.
func Has(slots []Slot, s Slot) bool {
	for _, sl := range slots {
		if sl == s {
			return true
		}
	}
	return false
}
