// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"filippo.io/cryptotv/internal/errs"
	"filippo.io/cryptotv/internal/fill"
)

// ParseCustom parses a list of "NEW_KEY,DECRYPT,AD_LEN,DATA_LEN,HASH"
// tuples separated by ':'. Booleans may be spelled true, false, 1 or 0.
func ParseCustom(s string) ([]Case, error) {
	var cases []Case
	for i, tuple := range strings.Split(s, ":") {
		fields := strings.Split(tuple, ",")
		if len(fields) != 5 {
			return nil, errs.Configf("gen_custom", "test %d: expected 5 fields, got %d in %q", i+1, len(fields), strings.TrimSpace(tuple))
		}
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		var c Case
		var err error
		if c.NewKey, err = parseBool(fields[0]); err != nil {
			return nil, errs.Configf("gen_custom", "test %d: NEW_KEY: %v", i+1, err)
		}
		if c.Decrypt, err = parseBool(fields[1]); err != nil {
			return nil, errs.Configf("gen_custom", "test %d: DECRYPT: %v", i+1, err)
		}
		if c.ADLen, err = parseLength(fields[2]); err != nil {
			return nil, errs.Configf("gen_custom", "test %d: AD_LEN: %v", i+1, err)
		}
		if c.DataLen, err = parseLength(fields[3]); err != nil {
			return nil, errs.Configf("gen_custom", "test %d: DATA_LEN: %v", i+1, err)
		}
		if c.Hash, err = parseBool(fields[4]); err != nil {
			return nil, errs.Configf("gen_custom", "test %d: HASH: %v", i+1, err)
		}
		if c.Hash {
			// Hash operations have no key, operation or associated data.
			c.NewKey, c.Decrypt, c.ADLen = false, false, 0
		}
		cases = append(cases, c)
	}
	return cases, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func parseLength(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid length %q", s)
	}
	return n, nil
}

// Custom returns the operations for an explicit list of cases.
func Custom(cases []Case, m fill.Mode) []Operation {
	ops := make([]Operation, 0, len(cases))
	for i, c := range cases {
		op := c.Operation(m)
		op.Routine = "gen_custom"
		op.Case = i + 1
		ops = append(ops, op)
	}
	return ops
}
