// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cryptotv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildDefaults(t *testing.T) {
	o := DefaultOptions()
	o.AEAD = "aes128gcm"
	o.Seed = "00"
	c, err := o.Build()
	if err != nil {
		t.Fatal(err)
	}
	got := c.Options()
	if got.KeySize != 128 || got.NpubSize != 96 || got.TagSize != 128 || got.BlockSize != 128 || got.BlockSizeAD != 128 {
		t.Errorf("unexpected sizes: %+v", got)
	}
	if got.DOWidth != 32 {
		t.Errorf("DO width = %d, want the PDI width", got.DOWidth)
	}
	if ad, data, hash := c.BlockBytes(); ad != 16 || data != 16 || hash != 0 {
		t.Errorf("BlockBytes() = %d, %d, %d", ad, data, hash)
	}

	o = DefaultOptions()
	o.AEAD = "some_plugin_variant"
	o.Hash = "sha3_256"
	o.BlockSizeAD = 64
	c, err = o.Build()
	if err != nil {
		t.Fatal(err)
	}
	got = c.Options()
	if got.KeySize != 128 || got.NpubSize != 128 || got.BlockSize != 128 || got.BlockSizeAD != 64 {
		t.Errorf("unexpected cryptotvgen defaults: %+v", got)
	}
	if got.MessageDigestSize != 256 || got.BlockSizeMsgDigest != 1088 {
		t.Errorf("unexpected hash sizes: %+v", got)
	}
	if len(c.Seed()) != 16 || got.Seed == "" {
		t.Errorf("expected a fresh seed, got %x (%q)", c.Seed(), got.Seed)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		f    func(o *Options)
	}{
		{"no variant", func(o *Options) { o.AEAD = "" }},
		{"add_partial", func(o *Options) { o.AddPartial = true }},
		{"ciph_exp_noext", func(o *Options) { o.CiphExpNoExt = true }},
		{"len token", func(o *Options) { o.MsgFormat = []string{"len", "npub", "ad", "data", "tag"} }},
		{"duplicate token", func(o *Options) { o.MsgFormat = []string{"npub", "ad", "ad", "data", "tag"} }},
		{"unknown token", func(o *Options) { o.MsgFormat = []string{"npub", "header", "data", "tag"} }},
		{"no npub", func(o *Options) { o.MsgFormat = []string{"ad", "data", "tag"} }},
		{"no tag", func(o *Options) { o.MsgFormat = []string{"npub", "ad", "data"} }},
		{"no nsec", func(o *Options) { o.NsecSize = 32 }},
		{"width", func(o *Options) { o.PDIWidth = 24 }},
		{"sdi width", func(o *Options) { o.SDIWidth = 64 }},
		{"block size", func(o *Options) { o.BlockSize = 12 }},
		{"key size", func(o *Options) { o.KeySize = -8 }},
		{"ad range", func(o *Options) { o.MinAD, o.MaxAD = 10, 5 }},
		{"data range", func(o *Options) { o.MinData = -1 }},
		{"layout", func(o *Options) { o.Layout = "lwc2" }},
		{"caesar hash", func(o *Options) { o.Layout, o.Hash = "caesar", "sha3_256" }},
		{"hash block size", func(o *Options) { o.Hash = "plugin_hash" }},
		{"max blocks", func(o *Options) { o.MaxBlockPerSgmt = 0 }},
		{"max io", func(o *Options) { o.MaxIOPerLine = 0 }},
		{"workers", func(o *Options) { o.Workers = 0 }},
		{"seed", func(o *Options) { o.Seed = "not hex" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			o.AEAD = "chacha20poly1305"
			tt.f(&o)
			_, err := o.Build()
			var e *ConfigurationError
			if !errors.As(err, &e) {
				t.Errorf("expected a ConfigurationError, got %v", err)
			}
		})
	}
}

func TestBuildMsgFormat(t *testing.T) {
	o := DefaultOptions()
	o.AEAD = "chacha20poly1305"
	o.MsgFormat = []string{"NPUB_AD", "Data_Tag"}
	c, err := o.Build()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"npub_ad", "data_tag"}, c.Options().MsgFormat); diff != "" {
		t.Errorf("MsgFormat (-want +got):\n%s", diff)
	}
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cryptotv.yaml")
	if err := os.WriteFile(path, []byte(`
aead: xchacha20poly1305
pdi_width: 16
msg_format: [npub, ad, data, tag]
ciph_exp: true
add_partial: true
padding: false
seed: "0102"
`), 0644); err != nil {
		t.Fatal(err)
	}
	o, err := LoadOptions(path)
	if err != nil {
		t.Fatal(err)
	}
	want := DefaultOptions()
	want.AEAD = "xchacha20poly1305"
	want.PDIWidth = 16
	want.CiphExp, want.AddPartial, want.Padding = true, true, false
	want.Seed = "0102"
	if diff := cmp.Diff(want, o); diff != "" {
		t.Errorf("LoadOptions (-want +got):\n%s", diff)
	}
	c, err := o.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Options().NpubSize; got != 192 {
		t.Errorf("npub size = %d, want 192", got)
	}

	if err := os.WriteFile(path, []byte("aead: x\nblock_sise: 64\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadOptions(path)
	var e *ConfigurationError
	if !errors.As(err, &e) {
		t.Errorf("expected a ConfigurationError for an unknown key, got %v", err)
	}

	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if o, err := LoadOptions(path); err != nil {
		t.Errorf("empty file: %v", err)
	} else if diff := cmp.Diff(DefaultOptions(), o); diff != "" {
		t.Errorf("empty file (-want +got):\n%s", diff)
	}

	if _, err := LoadOptions(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
