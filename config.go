// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cryptotv

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"filippo.io/cryptotv/internal/errs"
	"filippo.io/cryptotv/internal/frame"
	"filippo.io/cryptotv/internal/plan"
	"filippo.io/cryptotv/internal/segment"
	"filippo.io/cryptotv/internal/sequence"
	"filippo.io/cryptotv/oracle"
)

// Options describe a generation run. Sizes are in bits, lengths in bytes.
//
// A zero size, block size or width is replaced by Build with the value of
// the built-in oracle variant of the same name, if any, or with the
// cryptotvgen default.
type Options struct {
	AEAD string `yaml:"aead"`
	Hash string `yaml:"hash"`

	PDIWidth int `yaml:"pdi_width"`
	SDIWidth int `yaml:"sdi_width"`
	DOWidth  int `yaml:"do_width"`

	KeySize           int `yaml:"key_size"`
	NpubSize          int `yaml:"npub_size"`
	NsecSize          int `yaml:"nsec_size"`
	TagSize           int `yaml:"tag_size"`
	MessageDigestSize int `yaml:"message_digest_size"`

	BlockSize          int `yaml:"block_size"`
	BlockSizeAD        int `yaml:"block_size_ad"`
	BlockSizeMsgDigest int `yaml:"block_size_msg_digest"`

	CiphExp      bool `yaml:"ciph_exp"`
	CiphExpNoExt bool `yaml:"ciph_exp_noext"`
	AddPartial   bool `yaml:"add_partial"`
	Offline      bool `yaml:"offline"`
	Padding      bool `yaml:"padding"`

	MsgFormat       []string `yaml:"msg_format"`
	MaxBlockPerSgmt int      `yaml:"max_block_per_sgmt"`
	MaxIOPerLine    int      `yaml:"max_io_per_line"`

	MinAD   int `yaml:"min_ad"`
	MaxAD   int `yaml:"max_ad"`
	MinData int `yaml:"min_d"`
	MaxData int `yaml:"max_d"`

	Layout  string `yaml:"layout"`
	Seed    string `yaml:"seed"`
	Workers int    `yaml:"workers"`

	Verify        bool   `yaml:"verify_lib"`
	HumanReadable bool   `yaml:"human_readable"`
	PDIFile       string `yaml:"pdi_file"`
	SDIFile       string `yaml:"sdi_file"`
	DOFile        string `yaml:"do_file"`
	TVFile        string `yaml:"tv_file"`
	Dest          string `yaml:"dest"`
}

// DefaultOptions returns the options cryptotvgen uses when none are given.
func DefaultOptions() Options {
	return Options{
		PDIWidth:        32,
		SDIWidth:        32,
		Padding:         true,
		MsgFormat:       []string{"npub", "ad", "data", "tag"},
		MaxBlockPerSgmt: 9999,
		MaxIOPerLine:    9999,
		MaxAD:           sequence.MaxRandom,
		MaxData:         sequence.MaxRandom,
		Layout:          "lwc",
		Workers:         1,
		PDIFile:         "pdi.txt",
		SDIFile:         "sdi.txt",
		DOFile:          "do.txt",
		TVFile:          "test_vectors.txt",
		Dest:            ".",
	}
}

// LoadOptions reads a YAML file on top of DefaultOptions. Unknown keys
// are an error.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("failed to read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		return opts, &errs.ConfigurationError{Field: path, Err: err}
	}
	return opts, nil
}

// Config is a validated, immutable set of Options.
type Config struct {
	opts   Options
	seed   []byte
	layout *frame.Layout
	schema plan.Schema
}

// Options returns the resolved options, with every default filled in.
func (c *Config) Options() Options {
	o := c.opts
	o.MsgFormat = append([]string(nil), c.opts.MsgFormat...)
	return o
}

// Seed returns the seed of the random byte stream.
func (c *Config) Seed() []byte {
	return append([]byte(nil), c.seed...)
}

// BlockBytes returns the AD, data and hash message block sizes in bytes.
// The hash block size is zero if no hash variant is configured.
func (c *Config) BlockBytes() (ad, data, hash int) {
	return c.schema.BlockSizeAD, c.schema.BlockSize, c.schema.BlockSizeHash
}

// Sizes returns the field sizes single vectors are checked against.
func (c *Config) Sizes() sequence.Sizes {
	return sequence.Sizes{KeyBits: c.opts.KeySize, NpubBits: c.opts.NpubSize, NsecBits: c.opts.NsecSize}
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// Build validates o and resolves its defaults.
func (o Options) Build() (*Config, error) {
	if o.AEAD == "" && o.Hash == "" {
		return nil, errs.Configf("aead", "at least one of aead and hash must be set")
	}

	aead, _ := oracle.Sizes(o.AEAD)
	hash, _ := oracle.Sizes(o.Hash)
	if o.AEAD != "" {
		o.KeySize = orDefault(o.KeySize, orDefault(aead.KeyBits, 128))
		o.NpubSize = orDefault(o.NpubSize, orDefault(aead.NpubBits, 128))
		o.TagSize = orDefault(o.TagSize, orDefault(aead.TagBits, 128))
		o.BlockSize = orDefault(o.BlockSize, orDefault(aead.BlockBits, 128))
		o.BlockSizeAD = orDefault(o.BlockSizeAD, o.BlockSize)
	}
	if o.Hash != "" {
		o.MessageDigestSize = orDefault(o.MessageDigestSize, orDefault(hash.DigestBits, 64))
		o.BlockSizeMsgDigest = orDefault(o.BlockSizeMsgDigest, hash.BlockBits)
		if o.BlockSizeMsgDigest == 0 {
			return nil, errs.Configf("block_size_msg_digest", "required for hash variant %q", o.Hash)
		}
	}
	o.DOWidth = orDefault(o.DOWidth, o.PDIWidth)

	for _, w := range []struct {
		name string
		v    int
	}{{"pdi_width", o.PDIWidth}, {"sdi_width", o.SDIWidth}, {"do_width", o.DOWidth}} {
		if w.v != 8 && w.v != 16 && w.v != 32 {
			return nil, errs.Configf(w.name, "bus width must be 8, 16 or 32 bits, got %d", w.v)
		}
	}
	for _, s := range []struct {
		name     string
		v        int
		positive bool
	}{
		{"key_size", o.KeySize, o.AEAD != ""},
		{"npub_size", o.NpubSize, false},
		{"nsec_size", o.NsecSize, false},
		{"tag_size", o.TagSize, o.AEAD != ""},
		{"message_digest_size", o.MessageDigestSize, o.Hash != ""},
		{"block_size", o.BlockSize, o.AEAD != ""},
		{"block_size_ad", o.BlockSizeAD, o.AEAD != ""},
		{"block_size_msg_digest", o.BlockSizeMsgDigest, o.Hash != ""},
	} {
		if s.v < 0 || s.v%8 != 0 || s.positive && s.v == 0 {
			return nil, errs.Configf(s.name, "must be a positive multiple of 8 bits, got %d", s.v)
		}
	}

	if o.AddPartial && !o.CiphExp {
		return nil, errs.Configf("add_partial", "requires ciph_exp")
	}
	if o.CiphExpNoExt && !o.CiphExp {
		return nil, errs.Configf("ciph_exp_noext", "requires ciph_exp")
	}
	if o.MaxBlockPerSgmt < 1 {
		return nil, errs.Configf("max_block_per_sgmt", "must be at least 1, got %d", o.MaxBlockPerSgmt)
	}
	if o.MaxIOPerLine < 1 {
		return nil, errs.Configf("max_io_per_line", "must be at least 1, got %d", o.MaxIOPerLine)
	}
	if o.MinAD < 0 || o.MinAD > o.MaxAD {
		return nil, errs.Configf("min_ad", "invalid AD range [%d, %d]", o.MinAD, o.MaxAD)
	}
	if o.MinData < 0 || o.MinData > o.MaxData {
		return nil, errs.Configf("min_d", "invalid data range [%d, %d]", o.MinData, o.MaxData)
	}
	if o.Workers < 1 {
		return nil, errs.Configf("workers", "must be at least 1, got %d", o.Workers)
	}

	layout, err := frame.LayoutByName(o.Layout)
	if err != nil {
		return nil, &errs.ConfigurationError{Field: "layout", Err: err}
	}
	if _, ok := layout.Types[segment.HashMessage]; o.Hash != "" && !ok {
		return nil, errs.Configf("layout", "layout %s can't express hash segments", layout.Name)
	}

	slots, err := plan.ParseSlots(o.MsgFormat)
	if err != nil {
		return nil, &errs.ConfigurationError{Field: "msg_format", Err: err}
	}
	if o.AEAD != "" {
		hasNpub := plan.Has(slots, plan.Npub) || plan.Has(slots, plan.NpubAD) || plan.Has(slots, plan.ADNpub)
		if o.NpubSize > 0 && !hasNpub {
			return nil, errs.Configf("msg_format", "%q has no npub segment", plan.FormatSlots(slots))
		}
		if o.NsecSize > 0 && !plan.Has(slots, plan.Nsec) {
			return nil, errs.Configf("msg_format", "%q has no nsec segment", plan.FormatSlots(slots))
		}
		if !plan.Has(slots, plan.Tag) && !plan.Has(slots, plan.DataTag) {
			return nil, errs.Configf("msg_format", "%q has no tag segment", plan.FormatSlots(slots))
		}
	}

	var seed []byte
	if o.Seed == "" {
		seed = make([]byte, 16)
		if _, err := rand.Read(seed); err != nil {
			return nil, fmt.Errorf("failed to generate seed: %w", err)
		}
		o.Seed = hex.EncodeToString(seed)
	} else if seed, err = hex.DecodeString(o.Seed); err != nil {
		return nil, errs.Configf("seed", "must be hexadecimal: %v", err)
	}

	c := &Config{opts: o, seed: seed, layout: layout}
	c.opts.MsgFormat = make([]string, len(slots))
	for i, s := range slots {
		c.opts.MsgFormat[i] = s.String()
	}
	c.schema = plan.Schema{
		Slots:               slots,
		Offline:             o.Offline,
		CiphExp:             o.CiphExp,
		CiphExpNoExt:        o.CiphExpNoExt,
		AddPartial:          o.AddPartial,
		Padding:             o.Padding,
		BlockSize:           o.BlockSize / 8,
		BlockSizeAD:         o.BlockSizeAD / 8,
		BlockSizeHash:       o.BlockSizeMsgDigest / 8,
		MaxBlocksPerSegment: o.MaxBlockPerSgmt,
		MaxFrameLength:      layout.MaxLength(),
	}
	return c, nil
}
