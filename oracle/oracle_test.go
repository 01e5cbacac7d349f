// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package oracle

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	switch filepath.Base(os.Args[0]) {
	case "cryptotv-oracle-test":
		if err := Serve(context.Background(), Builtin(), os.Stdin, os.Stdout); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	case "cryptotv-oracle-broken":
		os.Stdout.WriteString("-> nonsense\n\n")
		os.Exit(0)
	default:
		os.Exit(m.Run())
	}
}

func fromHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

func TestBuiltinHash(t *testing.T) {
	tests := []struct {
		variant string
		digest  string
	}{
		{"sha3_256", "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"},
		{"blake2s256", "69217a3079908094e11121d042354a7c1f55b6482ca1a51e1b250dfd1ed0eef9"},
		{"blake2b256", "0e5751c026e543b2e8ab2eb06099daa1d1e5df47778f7787faab45cdf12fe3a8"},
	}
	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			out, err := Builtin().Compute(context.Background(), &Request{Variant: tt.variant, Kind: Hash})
			require.NoError(t, err)
			require.Equal(t, fromHex(t, tt.digest), out.Digest)
		})
	}
}

func TestBuiltinAscon(t *testing.T) {
	// Count = 1 of the Ascon-128 v1.2 LWC_AEAD_KAT_128_128.txt.
	out, err := Builtin().Compute(context.Background(), &Request{
		Variant: "ascon128v12", Kind: Encrypt,
		Key:  fromHex(t, "000102030405060708090a0b0c0d0e0f"),
		Npub: fromHex(t, "000102030405060708090a0b0c0d0e0f"),
	})
	require.NoError(t, err)
	require.Empty(t, out.Ciphertext)
	require.Equal(t, fromHex(t, "e355159f292911f794cb1432a0103a8a"), out.Tag)

	p, ok := Sizes("ascon128av12")
	require.True(t, ok)
	require.Equal(t, Params{BlockBits: 128, KeyBits: 128, NpubBits: 128, TagBits: 128}, p)
}

func TestBuiltinRoundTrip(t *testing.T) {
	for _, name := range Variants() {
		p, ok := Sizes(name)
		require.True(t, ok)
		if p.IsHash() {
			continue
		}
		t.Run(name, func(t *testing.T) {
			req := &Request{
				Variant: name, Kind: Encrypt,
				Key:  bytes.Repeat([]byte{0xFF}, p.KeyBits/8),
				Npub: bytes.Repeat([]byte{0x55}, p.NpubBits/8),
				AD:   []byte("associated"),
				Data: []byte("some plaintext bytes"),
			}
			enc, err := Builtin().Compute(context.Background(), req)
			require.NoError(t, err)
			require.Len(t, enc.Ciphertext, len(req.Data))
			require.Len(t, enc.Tag, p.TagBits/8)

			dec := *req
			dec.Kind, dec.Data, dec.Tag = Decrypt, enc.Ciphertext, enc.Tag
			out, err := Builtin().Compute(context.Background(), &dec)
			require.NoError(t, err)
			require.True(t, out.AuthOK)
			require.Equal(t, req.Data, out.Plaintext)

			dec.Tag = append([]byte{}, enc.Tag...)
			dec.Tag[0] ^= 1
			out, err = Builtin().Compute(context.Background(), &dec)
			require.NoError(t, err)
			require.False(t, out.AuthOK)
			require.Empty(t, out.Plaintext)
		})
	}
}

func TestBuiltinErrors(t *testing.T) {
	ctx := context.Background()
	_, err := Builtin().Compute(ctx, &Request{Variant: "rot13", Kind: Encrypt})
	var e *Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, UnknownVariant, e.Kind)

	_, err = Builtin().Compute(ctx, &Request{Variant: "sha3_256", Kind: Encrypt})
	require.True(t, errors.As(err, &e))
	require.Equal(t, UnknownVariant, e.Kind)

	_, err = Builtin().Compute(ctx, &Request{Variant: "aes128gcm", Kind: Encrypt,
		Key: make([]byte, 32), Npub: make([]byte, 12)})
	require.True(t, errors.As(err, &e))
	require.Equal(t, SizeMismatch, e.Kind)

	_, err = Builtin().Compute(ctx, &Request{Variant: "chacha20poly1305", Kind: Encrypt,
		Key: make([]byte, 32), Npub: make([]byte, 12), Nsec: make([]byte, 4)})
	require.True(t, errors.As(err, &e))
	require.Equal(t, SizeMismatch, e.Kind)
}

func TestServe(t *testing.T) {
	in := &bytes.Buffer{}
	require.NoError(t, writeRequest(in, &Request{Kind: Hash, Variant: "sha3_256"}))
	require.NoError(t, writeRequest(in, &Request{Kind: Hash, Variant: "md5"}))
	out := &bytes.Buffer{}
	require.NoError(t, Serve(context.Background(), Builtin(), in, out))

	require.Contains(t, out.String(), "-> digest\n")
	require.Contains(t, out.String(), "-> error unknown-variant\n")
}

func linkPlugin(t *testing.T, name string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("Windows support is TODO")
	}
	temp := t.TempDir()
	testOnlyPluginPath = temp
	t.Cleanup(func() { testOnlyPluginPath = "" })
	ex, err := os.Executable()
	require.NoError(t, err)
	path := filepath.Join(temp, "cryptotv-oracle-"+name)
	require.NoError(t, os.Link(ex, path))
	require.NoError(t, os.Chmod(path, 0755))
}

func TestPlugin(t *testing.T) {
	linkPlugin(t, "test")
	o, err := Plugin("test")
	require.NoError(t, err)
	ctx := context.Background()

	req := &Request{
		Variant: "chacha20poly1305", Kind: Encrypt,
		Key:  make([]byte, 32),
		Npub: make([]byte, 12),
		AD:   []byte{},
		Data: []byte("hello"),
	}
	want, err := Builtin().Compute(ctx, req)
	require.NoError(t, err)
	got, err := o.Compute(ctx, req)
	require.NoError(t, err)
	require.Equal(t, want.Ciphertext, got.Ciphertext)
	require.Equal(t, want.Tag, got.Tag)

	dec := *req
	dec.Kind, dec.Data, dec.Tag = Decrypt, got.Ciphertext, make([]byte, 16)
	out, err := o.Compute(ctx, &dec)
	require.NoError(t, err)
	require.False(t, out.AuthOK)

	_, err = o.Compute(ctx, &Request{Variant: "nope", Kind: Hash})
	var e *Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, UnknownVariant, e.Kind)
}

func TestPluginBroken(t *testing.T) {
	linkPlugin(t, "broken")
	o, err := Plugin("broken")
	require.NoError(t, err)
	_, err = o.Compute(context.Background(), &Request{Variant: "sha3_256", Kind: Hash})
	var e *Error
	require.True(t, errors.As(err, &e))
	require.Equal(t, ProviderFailure, e.Kind)
}

func TestPluginNotFound(t *testing.T) {
	o, err := Plugin("nonexistentoracle")
	require.NoError(t, err)
	_, err = o.Compute(context.Background(), &Request{Variant: "sha3_256", Kind: Hash})
	var e *NotFoundError
	require.True(t, errors.As(err, &e))
	require.Equal(t, "nonexistentoracle", e.Name)

	_, err = Plugin("../evil")
	require.Error(t, err)
}
