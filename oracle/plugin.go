// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package oracle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	exec "golang.org/x/sys/execabs"

	"filippo.io/cryptotv/internal/stanza"
)

// PluginProtocol is the value of the --cryptotv-oracle flag passed to
// plugin binaries.
const PluginProtocol = "compute-v1"

// NotFoundError is returned when the binary of a plugin oracle can't be
// found in $PATH.
type NotFoundError struct {
	Name string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cryptotv-oracle-%s not found in $PATH", e.Name)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

type pluginOracle struct {
	name string
}

// Plugin returns an Oracle that runs the cryptotv-oracle-NAME binary once
// per request and talks to it over stdin and stdout.
func Plugin(name string) (Oracle, error) {
	if name == "" || strings.ContainsAny(name, `/\ `) {
		return nil, fmt.Errorf("invalid oracle plugin name: %q", name)
	}
	return &pluginOracle{name: name}, nil
}

var testOnlyPluginPath string

func (p *pluginOracle) Compute(ctx context.Context, req *Request) (out *Output, err error) {
	defer func() {
		if err != nil && !errors.As(err, new(*Error)) && !errors.As(err, new(*NotFoundError)) {
			err = &Error{Kind: ProviderFailure, Variant: req.Variant,
				Err: fmt.Errorf("%s plugin: %w", p.name, err)}
		}
	}()

	path := "cryptotv-oracle-" + p.name
	if testOnlyPluginPath != "" {
		path = filepath.Join(testOnlyPluginPath, path)
	}
	cmd := exec.CommandContext(ctx, path, "--cryptotv-oracle="+PluginProtocol)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	var r io.Reader = stdout
	var w io.Writer = stdin
	if os.Getenv("CRYPTOTVDEBUG") == "plugin" {
		r = io.TeeReader(r, os.Stderr)
		w = io.MultiWriter(w, os.Stderr)
		cmd.Stderr = os.Stderr
	}
	cmd.Dir = os.TempDir()
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, &NotFoundError{Name: p.name, Err: err}
		}
		return nil, err
	}
	defer func() {
		stdin.Close()
		if werr := cmd.Wait(); werr != nil && err == nil {
			err = werr
		}
	}()

	if err := writeRequest(w, req); err != nil {
		return nil, err
	}
	return readOutput(stanza.NewReader(bufio.NewReader(r)), req)
}

func writeStanza(w io.Writer, t string, args ...string) error {
	s := &stanza.Stanza{Type: t, Args: args}
	return s.Marshal(w)
}

func writeStanzaWithBody(w io.Writer, t string, body []byte) error {
	s := &stanza.Stanza{Type: t, Body: body}
	return s.Marshal(w)
}

func writeRequest(w io.Writer, req *Request) error {
	if err := writeStanza(w, "compute", req.Kind.String(), req.Variant); err != nil {
		return err
	}
	fields := []struct {
		name string
		b    []byte
	}{
		{"key", req.Key}, {"npub", req.Npub}, {"nsec", req.Nsec},
		{"ad", req.AD}, {"data", req.Data}, {"tag", req.Tag},
	}
	for _, f := range fields {
		if f.b == nil {
			continue
		}
		if err := writeStanzaWithBody(w, f.name, f.b); err != nil {
			return err
		}
	}
	return writeStanza(w, "done")
}

func readOutput(sr *stanza.Reader, req *Request) (*Output, error) {
	out := &Output{}
	for {
		s, err := sr.ReadStanza()
		if err == io.EOF {
			return nil, errors.New("unexpected end of plugin output")
		}
		if err != nil {
			return nil, err
		}
		switch s.Type {
		case "ciphertext":
			out.Ciphertext = s.Body
		case "tag":
			out.Tag = s.Body
		case "enc-nsec":
			out.EncNsec = s.Body
		case "plaintext":
			out.Plaintext = s.Body
		case "nsec":
			out.Nsec = s.Body
		case "digest":
			out.Digest = s.Body
		case "auth":
			if len(s.Args) != 1 || (s.Args[0] != "ok" && s.Args[0] != "fail") {
				return nil, errors.New("malformed auth stanza")
			}
			out.AuthOK = s.Args[0] == "ok"
		case "error":
			if len(s.Args) != 1 {
				return nil, errors.New("malformed error stanza")
			}
			return nil, &Error{Kind: parseErrorKind(s.Args[0]), Variant: req.Variant,
				Err: errors.New(string(s.Body))}
		case "done":
			if !out.AuthOK && req.Kind == Decrypt {
				out.Plaintext, out.Nsec = nil, nil
			}
			return out, nil
		default:
			return nil, fmt.Errorf("unexpected stanza %q", s.Type)
		}
	}
}

// Serve implements the plugin side of the protocol: it reads requests
// from in, computes them with o, and writes the outputs to out, until in
// is exhausted. Oracle errors are reported to the client, not returned.
func Serve(ctx context.Context, o Oracle, in io.Reader, out io.Writer) error {
	sr := stanza.NewReader(bufio.NewReader(in))
	for {
		req, err := readRequest(sr)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		res, err := o.Compute(ctx, req)
		if err != nil {
			kind, msg := ProviderFailure, err.Error()
			var e *Error
			if errors.As(err, &e) {
				kind, msg = e.Kind, e.Err.Error()
			}
			s := &stanza.Stanza{Type: "error", Args: []string{kind.String()}, Body: []byte(msg)}
			if err := s.Marshal(out); err != nil {
				return err
			}
			continue
		}
		if err := writeOutput(out, req.Kind, res); err != nil {
			return err
		}
	}
}

func readRequest(sr *stanza.Reader) (*Request, error) {
	s, err := sr.ReadStanza()
	if err != nil {
		return nil, err
	}
	if s.Type != "compute" || len(s.Args) != 2 {
		return nil, fmt.Errorf("expected compute stanza, got %q", s.Type)
	}
	kind, ok := parseKind(s.Args[0])
	if !ok {
		return nil, fmt.Errorf("unknown operation %q", s.Args[0])
	}
	req := &Request{Kind: kind, Variant: s.Args[1]}
	for {
		s, err := sr.ReadStanza()
		if err == io.EOF {
			return nil, io.ErrUnexpectedEOF
		}
		if err != nil {
			return nil, err
		}
		switch s.Type {
		case "key":
			req.Key = s.Body
		case "npub":
			req.Npub = s.Body
		case "nsec":
			req.Nsec = s.Body
		case "ad":
			req.AD = s.Body
		case "data":
			req.Data = s.Body
		case "tag":
			req.Tag = s.Body
		case "done":
			return req, nil
		default:
			return nil, fmt.Errorf("unexpected stanza %q", s.Type)
		}
	}
}

func writeOutput(w io.Writer, kind Kind, out *Output) error {
	var err error
	body := func(t string, b []byte) {
		if err == nil && b != nil {
			err = writeStanzaWithBody(w, t, b)
		}
	}
	switch kind {
	case Encrypt:
		body("ciphertext", out.Ciphertext)
		body("tag", out.Tag)
		body("enc-nsec", out.EncNsec)
	case Decrypt:
		auth := "fail"
		if out.AuthOK {
			auth = "ok"
			body("plaintext", out.Plaintext)
			body("nsec", out.Nsec)
		}
		if err == nil {
			err = writeStanza(w, "auth", auth)
		}
	case Hash:
		body("digest", out.Digest)
	}
	if err != nil {
		return err
	}
	return writeStanza(w, "done")
}
