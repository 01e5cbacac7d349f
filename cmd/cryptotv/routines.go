// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"filippo.io/cryptotv"
	"filippo.io/cryptotv/internal/errs"
	"filippo.io/cryptotv/internal/fill"
	"filippo.io/cryptotv/internal/sequence"
)

// routine is one generation flag, in command line order.
type routine struct {
	name string
	arg  string
}

// routineValue appends every occurrence of its flag to a list shared by all
// the generation flags, so that they run in the order they were given.
type routineValue struct {
	name string
	list *[]routine
}

func (v *routineValue) Set(s string) error {
	*v.list = append(*v.list, routine{name: v.name, arg: s})
	return nil
}

func (v *routineValue) String() string { return "" }
func (v *routineValue) Type() string   { return "string" }

func isRoutineFlag(f *pflag.Flag) bool {
	_, ok := f.Value.(*routineValue)
	return ok
}

func addRoutineFlags(fs *pflag.FlagSet, list *[]routine) {
	for _, r := range []struct{ name, usage string }{
		{"gen_random", "generate `N` random encryptions and decryptions"},
		{"gen_custom", "generate `TESTS`, a ':' separated list of NEW_KEY,DECRYPT,AD_LEN,DATA_LEN,HASH"},
		{"gen_test_routine", "generate cases `BEGIN,END,MODE` of the AEAD block boundary catalog"},
		{"gen_test_combined", "generate cases `BEGIN,END,MODE` of the AEAD and hash catalog"},
		{"gen_hash", "generate cases `BEGIN,END,MODE` of the hash block boundary catalog"},
		{"gen_single", "generate one vector from `MODE,KEY,NPUB,NSEC,AD,DATA` in hexadecimal"},
	} {
		fs.Var(&routineValue{name: r.name, list: list}, r.name, r.usage)
	}
}

func splitArgs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}

// singleFields splits the --gen_single argument on commas, which allow
// empty fields, or else on spaces as in "2 0 0 0 0 MSG".
func singleFields(s string) []string {
	if strings.Contains(s, ",") {
		return strings.Split(s, ",")
	}
	return strings.Fields(s)
}

// sweepArgs parses BEGIN,END,MODE.
func sweepArgs(name, s string) (begin, end int, m fill.Mode, err error) {
	fields := splitArgs(s)
	if len(fields) != 3 {
		return 0, 0, 0, errs.Configf(name, "expected BEGIN,END,MODE, got %q", s)
	}
	var n [3]int
	for i, f := range fields {
		if n[i], err = strconv.Atoi(f); err != nil {
			return 0, 0, 0, errs.Configf(name, "invalid number %q", f)
		}
	}
	if m, err = fill.ParseMode(n[2]); err != nil {
		return 0, 0, 0, &errs.ConfigurationError{Field: name, Err: err}
	}
	return n[0], n[1], m, nil
}

// operations expands the generation flags into a single operation list.
func operations(cfg *cryptotv.Config, routines []routine, customMode int) ([]cryptotv.Operation, error) {
	opts := cfg.Options()
	bsa, bsd, bsh := cfg.BlockBytes()
	src := fill.NewSource(append(cfg.Seed(), "sequence"...))

	var ops []cryptotv.Operation
	for _, r := range routines {
		var more []cryptotv.Operation
		var err error
		switch r.name {
		case "gen_random":
			n, perr := strconv.Atoi(strings.TrimSpace(r.arg))
			if perr != nil {
				return nil, errs.Configf(r.name, "invalid number %q", r.arg)
			}
			more, err = sequence.Random(n, sequence.Ranges{
				MinAD: opts.MinAD, MaxAD: opts.MaxAD,
				MinData: opts.MinData, MaxData: opts.MaxData,
			}, src)
		case "gen_custom":
			m, merr := fill.ParseMode(customMode)
			if merr != nil {
				return nil, &errs.ConfigurationError{Field: "gen_custom_mode", Err: merr}
			}
			cases, cerr := sequence.ParseCustom(r.arg)
			if cerr != nil {
				return nil, cerr
			}
			more = sequence.Custom(cases, m)
		case "gen_test_routine", "gen_test_combined", "gen_hash":
			begin, end, m, serr := sweepArgs(r.name, r.arg)
			if serr != nil {
				return nil, serr
			}
			switch r.name {
			case "gen_test_routine":
				more, err = sequence.Routine(begin, end, m, bsa, bsd)
			case "gen_test_combined":
				more, err = sequence.Combined(begin, end, m, bsa, bsd)
			default:
				more, err = sequence.HashSweep(begin, end, m, bsh)
			}
		case "gen_single":
			var op cryptotv.Operation
			op, err = sequence.Single(singleFields(r.arg), cfg.Sizes())
			more = []cryptotv.Operation{op}
		default:
			panic(fmt.Sprintf("unknown routine %q", r.name))
		}
		if err != nil {
			return nil, err
		}
		ops = append(ops, more...)
	}
	return ops, nil
}
