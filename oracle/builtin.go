// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package oracle

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"hash"
	"sort"

	"github.com/cloudflare/circl/cipher/ascon"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/sha3"
)

// Params are the field sizes of a variant, in bits.
type Params struct {
	BlockBits  int
	KeyBits    int
	NpubBits   int
	TagBits    int
	DigestBits int
}

// IsHash reports whether the variant is a hash function.
func (p Params) IsHash() bool {
	return p.DigestBits != 0
}

type variant struct {
	Params
	aead func(key []byte) (cipher.AEAD, error)
	hash func() hash.Hash
}

func newGCM(key []byte) (cipher.AEAD, error) {
	b, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(b)
}

func newAscon(m ascon.Mode) func(key []byte) (cipher.AEAD, error) {
	return func(key []byte) (cipher.AEAD, error) {
		c, err := ascon.New(key, m)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

func mustHash(f func([]byte) (hash.Hash, error)) func() hash.Hash {
	return func() hash.Hash {
		h, err := f(nil)
		if err != nil {
			panic("oracle: internal error: " + err.Error())
		}
		return h
	}
}

var builtins = map[string]variant{
	"chacha20poly1305": {
		Params: Params{BlockBits: 512, KeyBits: 256, NpubBits: 96, TagBits: 128},
		aead:   chacha20poly1305.New,
	},
	"xchacha20poly1305": {
		Params: Params{BlockBits: 512, KeyBits: 256, NpubBits: 192, TagBits: 128},
		aead:   chacha20poly1305.NewX,
	},
	"aes128gcm": {
		Params: Params{BlockBits: 128, KeyBits: 128, NpubBits: 96, TagBits: 128},
		aead:   newGCM,
	},
	"aes256gcm": {
		Params: Params{BlockBits: 128, KeyBits: 256, NpubBits: 96, TagBits: 128},
		aead:   newGCM,
	},
	"ascon128v12": {
		Params: Params{BlockBits: 64, KeyBits: 128, NpubBits: 128, TagBits: 128},
		aead:   newAscon(ascon.Ascon128),
	},
	"ascon128av12": {
		Params: Params{BlockBits: 128, KeyBits: 128, NpubBits: 128, TagBits: 128},
		aead:   newAscon(ascon.Ascon128a),
	},
	"ascon80pqv12": {
		Params: Params{BlockBits: 64, KeyBits: 160, NpubBits: 128, TagBits: 128},
		aead:   newAscon(ascon.Ascon80pq),
	},
	"blake2b256": {Params: Params{BlockBits: 1024, DigestBits: 256}, hash: mustHash(blake2b.New256)},
	"blake2b512": {Params: Params{BlockBits: 1024, DigestBits: 512}, hash: mustHash(blake2b.New512)},
	"blake2s256": {Params: Params{BlockBits: 512, DigestBits: 256}, hash: mustHash(blake2s.New256)},
	"sha3_256":   {Params: Params{BlockBits: 1088, DigestBits: 256}, hash: sha3.New256},
	"sha3_512":   {Params: Params{BlockBits: 576, DigestBits: 512}, hash: sha3.New512},
}

// Variants returns the names of the built-in variants.
func Variants() []string {
	var names []string
	for n := range builtins {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Sizes returns the field sizes of a built-in variant.
func Sizes(name string) (Params, bool) {
	v, ok := builtins[name]
	return v.Params, ok
}

// Builtin returns an Oracle backed by the built-in variants.
func Builtin() Oracle {
	return builtinOracle{}
}

type builtinOracle struct{}

func (builtinOracle) Compute(ctx context.Context, req *Request) (*Output, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := builtins[req.Variant]
	if !ok {
		return nil, errorf(UnknownVariant, req.Variant, "no built-in variant with this name")
	}
	if req.Kind == Hash {
		if v.hash == nil {
			return nil, errorf(UnknownVariant, req.Variant, "not a hash function")
		}
		h := v.hash()
		h.Write(req.Data)
		return &Output{Digest: h.Sum(nil)}, nil
	}

	if v.aead == nil {
		return nil, errorf(UnknownVariant, req.Variant, "not an AEAD")
	}
	if err := checkSize(req.Variant, "key", req.Key, v.KeyBits); err != nil {
		return nil, err
	}
	if err := checkSize(req.Variant, "npub", req.Npub, v.NpubBits); err != nil {
		return nil, err
	}
	if err := checkSize(req.Variant, "nsec", req.Nsec, 0); err != nil {
		return nil, err
	}
	a, err := v.aead(req.Key)
	if err != nil {
		return nil, errorf(ProviderFailure, req.Variant, "%v", err)
	}
	switch req.Kind {
	case Encrypt:
		sealed := a.Seal(nil, req.Npub, req.Data, req.AD)
		n := len(req.Data)
		return &Output{Ciphertext: sealed[:n:n], Tag: sealed[n:]}, nil
	case Decrypt:
		if err := checkSize(req.Variant, "tag", req.Tag, v.TagBits); err != nil {
			return nil, err
		}
		ct := make([]byte, 0, len(req.Data)+len(req.Tag))
		ct = append(append(ct, req.Data...), req.Tag...)
		pt, err := a.Open(nil, req.Npub, ct, req.AD)
		if err != nil {
			return &Output{AuthOK: false}, nil
		}
		if pt == nil {
			pt = []byte{}
		}
		return &Output{Plaintext: pt, AuthOK: true}, nil
	}
	return nil, errorf(ProviderFailure, req.Variant, "invalid operation %v", req.Kind)
}

func checkSize(variant, field string, b []byte, bits int) error {
	if len(b)*8 == bits {
		return nil
	}
	return errorf(SizeMismatch, variant, "%s is %d bits, expected %d", field, len(b)*8, bits)
}
