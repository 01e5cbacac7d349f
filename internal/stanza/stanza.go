// Copyright 2019 Google LLC
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file or at
// https://developers.google.com/open-source/licenses/bsd

// Package stanza implements the line-oriented message encoding spoken
// between cryptotv and oracle plugins.
//
// A stanza is an argument line starting with "->", followed by a base64
// body wrapped at ColumnsPerLine columns. The body always ends with a
// line shorter than ColumnsPerLine, which is empty if the body length is
// a multiple of BytesPerLine.
package stanza

import (
	"bufio"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Stanza struct {
	Type string
	Args []string
	Body []byte
}

var b64 = base64.RawStdEncoding.Strict()

func DecodeString(s string) ([]byte, error) {
	// CR and LF are ignored by DecodeString, but we don't want any malleability.
	if strings.ContainsAny(s, "\n\r") {
		return nil, errors.New(`unexpected newline character`)
	}
	return b64.DecodeString(s)
}

var EncodeToString = b64.EncodeToString

const ColumnsPerLine = 64
const BytesPerLine = ColumnsPerLine / 4 * 3

var stanzaPrefix = []byte("->")

// Marshal writes s to w. Type and Args must be non-empty strings of
// printable ASCII without spaces.
func (s *Stanza) Marshal(w io.Writer) error {
	for _, a := range append([]string{s.Type}, s.Args...) {
		if !isValidString(a) {
			return fmt.Errorf("invalid stanza argument %q", a)
		}
	}
	if _, err := w.Write(stanzaPrefix); err != nil {
		return err
	}
	for _, a := range append([]string{s.Type}, s.Args...) {
		if _, err := io.WriteString(w, " "+a); err != nil {
			return err
		}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	body := s.Body
	for {
		line := body
		if len(line) > BytesPerLine {
			line = line[:BytesPerLine]
		}
		if _, err := io.WriteString(w, EncodeToString(line)+"\n"); err != nil {
			return err
		}
		body = body[len(line):]
		if len(line) < BytesPerLine {
			return nil
		}
	}
}

type ParseError string

func (e ParseError) Error() string {
	return "parsing stanza: " + string(e)
}

func errorf(format string, a ...interface{}) error {
	return ParseError(fmt.Sprintf(format, a...))
}

// Reader reads stanzas from a buffered stream.
type Reader struct {
	r *bufio.Reader
}

func NewReader(r *bufio.Reader) *Reader {
	return &Reader{r: r}
}

// ReadStanza returns the next stanza. It returns io.EOF only if the
// stream ends cleanly before a new stanza.
func (r *Reader) ReadStanza() (*Stanza, error) {
	line, err := r.r.ReadString('\n')
	if err == io.EOF && line == "" {
		return nil, io.EOF
	}
	if err != nil {
		return nil, errorf("failed to read line: %v", err)
	}
	prefix, args := splitArgs(line)
	if prefix != string(stanzaPrefix) || len(args) < 1 {
		return nil, errorf("malformed stanza opening line: %q", line)
	}
	for _, a := range args {
		if !isValidString(a) {
			return nil, errorf("malformed stanza: %q", line)
		}
	}
	s := &Stanza{Type: args[0], Args: args[1:]}
	for {
		line, err := r.r.ReadString('\n')
		if err != nil {
			return nil, errorf("failed to read body line: %v", err)
		}
		b, err := DecodeString(strings.TrimSuffix(line, "\n"))
		if err != nil {
			return nil, errorf("malformed body line %q: %v", line, err)
		}
		if len(b) > BytesPerLine {
			return nil, errorf("malformed body line %q: too long", line)
		}
		s.Body = append(s.Body, b...)
		if len(b) < BytesPerLine {
			// A stanza body always ends with a short line.
			return s, nil
		}
	}
}

func splitArgs(line string) (string, []string) {
	l := strings.TrimSuffix(line, "\n")
	parts := strings.Split(l, " ")
	return parts[0], parts[1:]
}

func isValidString(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if c < 33 || c > 126 {
			return false
		}
	}
	return true
}
