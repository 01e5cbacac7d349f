// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs defines the fatal error classes shared by the generation
// engine. The root package re-exports them.
package errs

import "fmt"

// ConfigurationError reports an inconsistent configuration or generation
// request. It aborts the run before anything is generated.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return "invalid configuration: " + e.Err.Error()
	}
	return fmt.Sprintf("invalid configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func Configf(field, format string, a ...interface{}) error {
	return &ConfigurationError{Field: field, Err: fmt.Errorf(format, a...)}
}

// BoundaryError reports a request outside the limits of a catalog or of
// the segment framing, such as a sweep index out of range or a segment
// with more blocks than allowed.
type BoundaryError struct {
	Where string
	Err   error
}

func (e *BoundaryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Where, e.Err)
}

func (e *BoundaryError) Unwrap() error { return e.Err }

func Boundaryf(where, format string, a ...interface{}) error {
	return &BoundaryError{Where: where, Err: fmt.Errorf(format, a...)}
}
