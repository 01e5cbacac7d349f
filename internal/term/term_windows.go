// Copyright 2022 The age Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package term

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

func init() {
	enableVirtualTerminalProcessing = enableConsoleEscapes
}

// enableConsoleEscapes turns on escape sequence handling for consoles that
// start without it, like cmd.exe and Windows PowerShell.
func enableConsoleEscapes(out *os.File) error {
	h := windows.Handle(out.Fd())
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return fmt.Errorf("failed to read console mode: %w", err)
	}
	want := mode | windows.ENABLE_PROCESSED_OUTPUT | windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING
	if want == mode {
		return nil
	}
	if err := windows.SetConsoleMode(h, want); err != nil {
		return fmt.Errorf("failed to enable virtual terminal processing: %w", err)
	}
	return nil
}
