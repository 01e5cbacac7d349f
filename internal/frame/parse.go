// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package frame

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type ParseError string

func (e ParseError) Error() string {
	return "parsing test vector stream: " + string(e)
}

func errorf(format string, a ...interface{}) error {
	return ParseError(fmt.Sprintf(format, a...))
}

// Parse decodes a stream written by Writer for a bus of width bits.
// Comments are discarded.
func Parse(input io.Reader, l *Layout, width int) ([]Record, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	wordSize := width / 8

	var records []Record
	var (
		pending *Frame // frame waiting for DAT lines
		length  int    // announced payload length of pending
		data    []byte // padded payload read so far
	)
	sc := bufio.NewScanner(input)
	sc.Buffer(nil, 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSuffix(sc.Text(), "\r")
		if line == eofLine {
			if pending != nil {
				return nil, errorf("line %d: end of file inside %v payload", lineNo, pending.Type)
			}
			return records, nil
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, " = ")
		if !ok {
			return nil, errorf("line %d: malformed line %q", lineNo, line)
		}

		if key == "DAT" {
			if pending == nil {
				return nil, errorf("line %d: DAT without a header", lineNo)
			}
			b, err := hex.DecodeString(value)
			if err != nil {
				return nil, errorf("line %d: malformed data %q: %v", lineNo, value, err)
			}
			if len(b) == 0 || len(b)%wordSize != 0 {
				return nil, errorf("line %d: data is not a whole number of %d-bit words", lineNo, width)
			}
			data = append(data, b...)
			padded := PaddedLength(length, width)
			if len(data) > padded {
				return nil, errorf("line %d: %v payload longer than announced %d bytes", lineNo, pending.Type, length)
			}
			if len(data) == padded {
				for _, c := range data[length:] {
					if c != 0 {
						return nil, errorf("line %d: non-zero padding", lineNo)
					}
				}
				pending.Payload = data[:length:length]
				records = append(records, pending)
				pending, data = nil, nil
			}
			continue
		}
		if pending != nil {
			return nil, errorf("line %d: %v payload truncated", lineNo, pending.Type)
		}

		if len(value) != 8 {
			return nil, errorf("line %d: malformed word %q", lineNo, value)
		}
		v, err := strconv.ParseUint(value, 16, 32)
		if err != nil {
			return nil, errorf("line %d: malformed word %q: %v", lineNo, value, err)
		}
		word := uint32(v)
		switch key {
		case "INS":
			op, err := l.parseInstruction(word)
			if err != nil {
				return nil, errorf("line %d: %v", lineNo, err)
			}
			records = append(records, &Instruction{Op: op})
		case "STT":
			ok, err := l.parseStatus(word)
			if err != nil {
				return nil, errorf("line %d: %v", lineNo, err)
			}
			records = append(records, &Status{OK: ok})
		case "HDR":
			f, n, err := l.ParseHeader(word)
			if err != nil {
				return nil, errorf("line %d: %v", lineNo, err)
			}
			if n == 0 {
				f.Payload = []byte{}
				records = append(records, f)
				continue
			}
			pending, length = f, n
		default:
			return nil, errorf("line %d: unknown line type %q", lineNo, key)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errorf("failed to read stream: %v", err)
	}
	return nil, errorf("missing %s trailer", eofLine)
}
