// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cryptotv generates test vectors for hardware implementations of
// authenticated encryption and hash algorithms.
//
// Usage:
//
//	cryptotv --aead aes128gcm --gen_test_routine 1,22,0 --dest kat/
//	cryptotv --hash sha3_256 --gen_hash 1,21,2
//	cryptotv --config lwc.yaml --gen_random 100 --gen_test_combined 1,33,1
//
// Generation flags may be repeated and are executed in command line
// order. Expected outputs come from the built-in oracle, or from an
// external cryptotv-oracle-NAME binary selected with --oracle_plugin.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"filippo.io/cryptotv"
	"filippo.io/cryptotv/internal/logger"
	"filippo.io/cryptotv/internal/sequence"
	"filippo.io/cryptotv/internal/term"
	"filippo.io/cryptotv/oracle"
)

// Version can be set at link time to override debug.BuildInfo.Main.Version,
// which is "(devel)" when building from within the module. See
// golang.org/issue/29814 and golang.org/issue/29228.
var Version string

func main() {
	os.Exit(Main())
}

// Main runs the command with os.Args and returns its exit code.
func Main() int {
	cmd := newCommand()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		reportError(err)
		return 1
	}
	return 0
}

type flags struct {
	config   string
	plugin   string
	verbose  bool
	custom   int
	bench    bool
	io       []int
	routines []routine
}

func newCommand() *cobra.Command {
	opts := cryptotv.DefaultOptions()
	f := &flags{io: []int{opts.PDIWidth, opts.SDIWidth}}

	cmd := &cobra.Command{
		Use:   "cryptotv",
		Short: "Generate test vectors for AEAD and hash hardware",
		Long: `cryptotv generates the public data input (pdi.txt), secret data input
(sdi.txt) and expected data output (do.txt) files consumed by hardware
testbenches of authenticated encryption and hash algorithms.

Built-in variants: ` + fmt.Sprint(oracle.Variants()),
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, &opts, f)
		},
	}
	if Version != "" {
		cmd.Version = Version
	}

	fs := cmd.Flags()
	fs.SortFlags = false
	fs.StringVar(&f.config, "config", "", "YAML file of options, overridden by flags")
	fs.StringVar(&opts.AEAD, "aead", "", "AEAD variant to generate vectors for")
	fs.StringVar(&opts.Hash, "hash", "", "hash variant to generate vectors for")
	fs.StringVar(&f.plugin, "oracle_plugin", "", "compute expected outputs with cryptotv-oracle-`NAME`")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log every operation")

	fs.IntSliceVar(&f.io, "io", f.io, "`PDI,SDI` bus widths in bits; the DO width is the PDI width")
	fs.IntVar(&opts.DOWidth, "do_width", 0, "DO bus width in bits, if different from the PDI width")
	fs.IntVar(&opts.KeySize, "key_size", 0, "key size in `BITS`")
	fs.IntVar(&opts.NpubSize, "npub_size", 0, "public message number size in `BITS`")
	fs.IntVar(&opts.NsecSize, "nsec_size", 0, "secret message number size in `BITS`")
	fs.IntVar(&opts.TagSize, "tag_size", 0, "tag size in `BITS`")
	fs.IntVar(&opts.MessageDigestSize, "message_digest_size", 0, "message digest size in `BITS`")
	fs.IntVar(&opts.BlockSize, "block_size", 0, "data block size in `BITS`")
	fs.IntVar(&opts.BlockSizeAD, "block_size_ad", 0, "associated data block size in `BITS` (default block_size)")
	fs.IntVar(&opts.BlockSizeMsgDigest, "block_size_msg_digest", 0, "hash message block size in `BITS`")
	fs.BoolVar(&opts.CiphExp, "ciph_exp", false, "ciphertext expansion: the last data block is its own segment")
	fs.BoolVar(&opts.CiphExpNoExt, "ciph_exp_noext", false, "no extra segment when the data is block aligned")
	fs.BoolVar(&opts.AddPartial, "add_partial", false, "flag partial last blocks")
	fs.BoolVar(&opts.Offline, "offline", false, "prepend the length segment to every encryption and decryption")
	fs.BoolVar(&opts.Padding, "padding", opts.Padding, "send empty segments")

	fs.StringSliceVar(&opts.MsgFormat, "msg_format", opts.MsgFormat, "segment order of encryption and decryption inputs")
	fs.IntVar(&opts.MaxBlockPerSgmt, "max_block_per_sgmt", opts.MaxBlockPerSgmt, "maximum number of blocks in a segment")
	fs.IntVar(&opts.MaxIOPerLine, "max_io_per_line", opts.MaxIOPerLine, "maximum number of bus words on a data line")
	fs.IntVar(&opts.MinAD, "min_ad", opts.MinAD, "minimum random AD length in `BYTES`")
	fs.IntVar(&opts.MaxAD, "max_ad", opts.MaxAD, "maximum random AD length in `BYTES`")
	fs.IntVar(&opts.MinData, "min_d", opts.MinData, "minimum random data length in `BYTES`")
	fs.IntVar(&opts.MaxData, "max_d", opts.MaxData, "maximum random data length in `BYTES`")
	fs.StringVar(&opts.Layout, "layout", opts.Layout, "header layout (lwc or caesar)")
	fs.StringVar(&opts.Seed, "seed", "", "hexadecimal seed of the random bytes (default random)")
	fs.IntVar(&opts.Workers, "workers", opts.Workers, "number of concurrent oracle calls")
	fs.BoolVar(&opts.Verify, "verify_lib", false, "check that every decryption inverts its encryption")

	fs.BoolVar(&opts.HumanReadable, "human_readable", false, "also write the vectors in NIST format")
	fs.StringVar(&opts.PDIFile, "pdi_file", opts.PDIFile, "public data input `FILENAME`")
	fs.StringVar(&opts.SDIFile, "sdi_file", opts.SDIFile, "secret data input `FILENAME`")
	fs.StringVar(&opts.DOFile, "do_file", opts.DOFile, "expected data output `FILENAME`")
	fs.StringVar(&opts.TVFile, "tv_file", opts.TVFile, "human readable `FILENAME`")
	fs.StringVar(&opts.Dest, "dest", opts.Dest, "destination `PATH`")

	addRoutineFlags(fs, &f.routines)
	fs.IntVar(&f.custom, "gen_custom_mode", 0, "fill `MODE` of --gen_custom vectors")
	fs.BoolVar(&f.bench, "gen_benchmark", false, "generate the benchmark suites, each in its own directory")
	return cmd
}

// noOverride lists the flags that don't map to an Options field.
var noOverride = map[string]bool{
	"config": true, "oracle_plugin": true, "verbose": true, "io": true,
	"gen_custom_mode": true, "gen_benchmark": true,
}

// loadConfig replaces opts with the contents of the config file, then
// applies the flags that were set on the command line on top.
func loadConfig(fs *pflag.FlagSet, opts *cryptotv.Options, path string) error {
	type saved struct {
		value string
		slice []string
	}
	set := make(map[string]saved)
	fs.Visit(func(f *pflag.Flag) {
		if noOverride[f.Name] || isRoutineFlag(f) {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			set[f.Name] = saved{slice: sv.GetSlice()}
		} else {
			set[f.Name] = saved{value: f.Value.String()}
		}
	})

	fileOpts, err := cryptotv.LoadOptions(path)
	if err != nil {
		return err
	}
	*opts = fileOpts

	for name, s := range set {
		f := fs.Lookup(name)
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			if err := sv.Replace(s.slice); err != nil {
				return err
			}
		} else if err := f.Value.Set(s.value); err != nil {
			return err
		}
	}
	return nil
}

func run(cmd *cobra.Command, opts *cryptotv.Options, f *flags) error {
	logger.Global.SetVerbose(f.verbose)
	fs := cmd.Flags()

	if f.config != "" {
		if err := loadConfig(fs, opts, f.config); err != nil {
			return err
		}
	}
	if fs.Changed("io") || f.config == "" {
		if len(f.io) != 2 {
			return &cryptotv.ConfigurationError{Field: "io", Err: errors.New("expected two widths, PDI,SDI")}
		}
		opts.PDIWidth, opts.SDIWidth = f.io[0], f.io[1]
	}

	cfg, err := opts.Build()
	if err != nil {
		return err
	}
	if opts.Seed == "" {
		logger.Global.Printf("using random seed %s", cfg.Options().Seed)
	}

	o := oracle.Builtin()
	if f.plugin != "" {
		if o, err = oracle.Plugin(f.plugin); err != nil {
			return err
		}
	}

	if f.bench {
		if len(f.routines) > 0 {
			return &cryptotv.ConfigurationError{Field: "gen_benchmark",
				Err: errors.New("can't be combined with other generation flags")}
		}
		return runBenchmark(cmd.Context(), cfg, o)
	}

	ops, err := operations(cfg, f.routines, f.custom)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		return errNoVectors
	}
	return generate(cmd.Context(), cfg, o, ops, cfg.Options().Dest)
}

var errNoVectors = errors.New("no test vectors requested")

func generate(ctx context.Context, cfg *cryptotv.Config, o oracle.Oracle, ops []cryptotv.Operation, dir string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	progress := term.NewProgress(os.Stderr, "generating")
	g := cryptotv.New(cfg, o,
		cryptotv.WithLogger(logger.Global.Zap()),
		cryptotv.WithProgress(progress.Update))
	err := g.WriteFiles(ctx, ops, dir)
	progress.Done()
	if err != nil {
		return err
	}
	logger.Global.Printf("wrote %d test vectors to %s", len(ops), dir)
	return nil
}

func runBenchmark(ctx context.Context, cfg *cryptotv.Config, o oracle.Oracle) error {
	bsa, bsd, bsh := cfg.BlockBytes()
	opts := cfg.Options()
	if opts.AEAD == "" {
		logger.Global.Warningf("no --aead selected, skipping the AEAD benchmark suites")
	}
	if opts.Hash == "" {
		logger.Global.Warningf("no --hash selected, skipping the hash benchmark suites")
	}
	for _, s := range sequence.Benchmark(opts.AEAD != "", bsa, bsd, bsh) {
		if err := generate(ctx, cfg, o, s.Ops, filepath.Join(opts.Dest, s.Name)); err != nil {
			return fmt.Errorf("%s: %w", s.Name, err)
		}
	}
	return nil
}

func reportError(err error) {
	var ce *cryptotv.ConfigurationError
	var be *cryptotv.BoundaryError
	var nf *oracle.NotFoundError
	var oe *oracle.Error
	switch {
	case errors.Is(err, errNoVectors):
		logger.Global.ErrorWithHint(err.Error(),
			"use one or more of --gen_random, --gen_custom, --gen_test_routine,",
			"--gen_test_combined, --gen_hash, --gen_single or --gen_benchmark")
	case errors.As(err, &nf):
		logger.Global.ErrorWithHint(err.Error(),
			fmt.Sprintf("install cryptotv-oracle-%s in $PATH, or drop --oracle_plugin", nf.Name))
	case errors.As(err, &oe) && oe.Kind == oracle.UnknownVariant:
		logger.Global.ErrorWithHint(err.Error(),
			fmt.Sprintf("built-in variants are %v", oracle.Variants()))
	case errors.As(err, &be):
		logger.Global.ErrorWithHint(err.Error(),
			"sweep ranges are 1-indexed and inclusive, see --help for the catalog sizes")
	case errors.As(err, &ce):
		logger.Global.ErrorWithHint(err.Error(), "see cryptotv --help")
	default:
		logger.Global.Errorf("%v", err)
	}
}
