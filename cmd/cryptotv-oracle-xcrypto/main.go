// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cryptotv-oracle-xcrypto is a cryptotv oracle plugin that computes
// expected outputs with the golang.org/x/crypto implementations.
//
// It is not meant to be run directly: install it in $PATH and select it
// with cryptotv --oracle_plugin xcrypto. It serves the same variants as
// the built-in oracle, and is mostly useful as a template for plugins
// wrapping other implementations.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"filippo.io/cryptotv/internal/logger"
	"filippo.io/cryptotv/oracle"
)

func main() {
	fs := pflag.NewFlagSet("cryptotv-oracle-xcrypto", pflag.ContinueOnError)
	protocol := fs.String("cryptotv-oracle", "", "oracle `PROTOCOL` to speak on standard input and output")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "cryptotv-oracle-xcrypto is a cryptotv oracle plugin, run it with cryptotv --oracle_plugin xcrypto.\n")
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		logger.Global.Errorf("%v", err)
	}
	if *protocol != oracle.PluginProtocol {
		logger.Global.ErrorWithHint(fmt.Sprintf("unsupported protocol %q", *protocol),
			fmt.Sprintf("this plugin speaks --cryptotv-oracle=%s", oracle.PluginProtocol))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := oracle.Serve(ctx, oracle.Builtin(), os.Stdin, os.Stdout); err != nil {
		logger.Global.Errorf("%v", err)
	}
}
