// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package oracle defines the contract between cryptotv and the reference
// implementations that supply the expected outputs of test vectors.
//
// An Oracle is assumed to be correct and deterministic: cryptotv never
// checks its results against anything but itself, and never retries a
// failed call.
package oracle

import (
	"context"
	"fmt"
)

// Kind is the operation an Oracle is asked to compute.
type Kind int

const (
	Encrypt Kind = iota + 1
	Decrypt
	Hash
)

var kindNames = map[Kind]string{
	Encrypt: "encrypt",
	Decrypt: "decrypt",
	Hash:    "hash",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func parseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// A Request asks for one computation. For Decrypt, Data is the ciphertext,
// Tag the authentication tag and Nsec the encrypted secret message number.
// Key, Npub, Nsec, AD and Tag are unused for Hash.
type Request struct {
	Variant string
	Kind    Kind

	Key  []byte
	Npub []byte
	Nsec []byte
	AD   []byte
	Data []byte
	Tag  []byte
}

// Output holds the result of a Request. Only the fields of the requested
// Kind are set.
type Output struct {
	// Encrypt.
	Ciphertext []byte
	Tag        []byte
	EncNsec    []byte

	// Decrypt. Plaintext and Nsec are empty unless AuthOK is true.
	Plaintext []byte
	Nsec      []byte
	AuthOK    bool

	// Hash.
	Digest []byte
}

// An Oracle computes the expected outputs of test vectors. Compute may be
// called concurrently.
type Oracle interface {
	Compute(ctx context.Context, req *Request) (*Output, error)
}

// ErrorKind classifies oracle failures.
type ErrorKind int

const (
	UnknownVariant ErrorKind = iota + 1
	SizeMismatch
	ProviderFailure
)

var errorKindNames = map[ErrorKind]string{
	UnknownVariant:  "unknown-variant",
	SizeMismatch:    "size-mismatch",
	ProviderFailure: "provider-failure",
}

func (k ErrorKind) String() string {
	if s, ok := errorKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

func parseErrorKind(s string) ErrorKind {
	for k, name := range errorKindNames {
		if name == s {
			return k
		}
	}
	return ProviderFailure
}

// Error is returned by an Oracle when a computation fails. Variant is the
// name of the algorithm.
type Error struct {
	Kind    ErrorKind
	Variant string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("oracle %s: %v: %v", e.Variant, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func errorf(kind ErrorKind, variant, format string, a ...interface{}) error {
	return &Error{Kind: kind, Variant: variant, Err: fmt.Errorf(format, a...)}
}
