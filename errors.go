// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cryptotv

import (
	"fmt"

	"filippo.io/cryptotv/internal/errs"
)

// ConfigurationError is returned for inconsistent options or generation
// requests. Nothing is generated.
type ConfigurationError = errs.ConfigurationError

// BoundaryError is returned for a catalog range out of bounds, or for a
// segment longer than the configured limits.
type BoundaryError = errs.BoundaryError

// OperationError reports the failure of one operation of a suite. Err is
// usually an *oracle.Error or a *BoundaryError.
type OperationError struct {
	// Index is the 0-based position of the operation in the suite.
	Index int
	Op    Operation
	Err   error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("operation %d (%v): %v", e.Index, &e.Op, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }
