// Copyright 2026 The cryptotv Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cryptotv generates conformance test vectors for hardware
// implementations of authenticated encryption and hash algorithms.
//
// A run produces three coordinated text files for the testbench: the
// public data input (pdi.txt), the secret data input (sdi.txt) and the
// expected data output (do.txt). Operations come from the sequences in
// the cmd/cryptotv command line, their expected outputs from an
// [oracle.Oracle], and their framing from a [Config].
package cryptotv

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"filippo.io/cryptotv/internal/fill"
	"filippo.io/cryptotv/internal/frame"
	"filippo.io/cryptotv/internal/kat"
	"filippo.io/cryptotv/internal/plan"
	"filippo.io/cryptotv/internal/sequence"
	"filippo.io/cryptotv/oracle"
)

// Operation is one abstract encryption, decryption or hash, before its
// bytes are materialized.
type Operation = sequence.Operation

// A Generator turns operations into framed test vectors for one Config,
// using an Oracle for the expected outputs.
type Generator struct {
	cfg      *Config
	oracle   oracle.Oracle
	logger   *zap.Logger
	workers  int
	progress func(done, total int)
}

// An Option configures a Generator.
type Option func(*Generator)

// WithLogger makes the Generator log each operation at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithWorkers overrides the number of concurrent oracle calls of the
// configuration.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.workers = n
		}
	}
}

// WithProgress registers a function called after each operation is
// framed.
func WithProgress(f func(done, total int)) Option {
	return func(g *Generator) { g.progress = f }
}

// New returns a Generator for cfg. By default it logs nothing and makes
// as many concurrent oracle calls as cfg allows.
func New(cfg *Config, o oracle.Oracle, opts ...Option) *Generator {
	g := &Generator{cfg: cfg, oracle: o, logger: zap.NewNop(), workers: cfg.opts.Workers}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// job is an operation moving through the pipeline.
type job struct {
	index int
	op    Operation

	key, npub, nsec, ad, data []byte

	// enc is the encryption of a decryption operation's plaintext.
	enc *oracle.Output
	out *oracle.Output

	// err is set before done is closed.
	err  error
	done chan struct{}
}

func (j *job) fail(err error) error {
	return &OperationError{Index: j.index, Op: j.op, Err: err}
}

// Streams are the destinations of a run. TestVectors is written only if
// human readable vectors are enabled, and may be nil.
type Streams struct {
	PDI, SDI, DO io.Writer
	TestVectors  io.Writer
}

// Run numbers ops, and writes their framed vectors to dst in order.
//
// Each operation is materialized just before its oracle call and framed
// as soon as it and every operation before it are computed, after which
// it is dropped. At most a few times the number of workers operations
// are held at once. Any failure aborts the run, and dst is left with a
// truncated suite.
func (g *Generator) Run(ctx context.Context, ops []Operation, dst Streams) error {
	e, err := g.newEncoder(dst, len(ops))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var eg errgroup.Group
	eg.SetLimit(g.workers)
	pending := make(chan *job, g.workers)
	go g.produce(ctx, ops, &eg, pending)

	for j := range pending {
		if err != nil {
			// Drain, so that produce can return.
			continue
		}
		<-j.done
		if j.err == nil {
			j.err = e.encode(j)
		}
		if j.err != nil {
			err = j.fail(j.err)
			cancel()
		}
	}
	eg.Wait()
	if err != nil {
		return err
	}
	return e.close()
}

// produce materializes ops in order and starts their oracle calls,
// sending each job to pending before its call completes.
func (g *Generator) produce(ctx context.Context, ops []Operation, eg *errgroup.Group, pending chan<- *job) {
	defer close(pending)
	m := &materializer{opts: &g.cfg.opts, src: fill.NewSource(g.cfg.seed)}
	for i, op := range ops {
		j := &job{index: i, op: op, done: make(chan struct{})}
		if err := m.fill(j); err != nil {
			j.err = err
			close(j.done)
			pending <- j
			return
		}
		select {
		case pending <- j:
		case <-ctx.Done():
			return
		}
		eg.Go(func() error {
			defer close(j.done)
			j.err = g.compute(ctx, j)
			return nil
		})
	}
}

// Generate runs ops and returns the suite in memory.
func (g *Generator) Generate(ctx context.Context, ops []Operation) (*Suite, error) {
	s := &Suite{cfg: g.cfg}
	if err := g.Run(ctx, ops, Streams{PDI: &s.pdi, SDI: &s.sdi, DO: &s.do, TestVectors: &s.tv}); err != nil {
		return nil, err
	}
	return s, nil
}

// WriteFiles runs ops straight into the configured files in dir, creating
// it if needed. If dir is empty, the configured destination is used. The
// files are only replaced if the whole run succeeds.
func (g *Generator) WriteFiles(ctx context.Context, ops []Operation, dir string) error {
	o := g.cfg.opts
	if dir == "" {
		dir = o.Dest
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	names := []string{o.PDIFile, o.SDIFile, o.DOFile}
	if o.HumanReadable {
		names = append(names, o.TVFile)
	}
	files := make([]*outputFile, 0, len(names))
	defer func() {
		for _, f := range files {
			f.abort()
		}
	}()
	for _, name := range names {
		f, err := createOutput(dir, name)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	dst := Streams{PDI: files[0], SDI: files[1], DO: files[2]}
	if o.HumanReadable {
		dst.TestVectors = files[3]
	}
	if err := g.Run(ctx, ops, dst); err != nil {
		return err
	}
	for _, f := range files {
		if err := f.commit(); err != nil {
			return err
		}
	}
	return nil
}

// outputFile is a buffered temporary file renamed into place on commit.
type outputFile struct {
	*bufio.Writer
	f         *os.File
	name      string
	committed bool
}

func createOutput(dir, name string) (*outputFile, error) {
	f, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}
	return &outputFile{Writer: bufio.NewWriter(f), f: f, name: filepath.Join(dir, name)}, nil
}

func (f *outputFile) commit() error {
	if err := f.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.name, err)
	}
	if err := f.f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.name, err)
	}
	if err := os.Rename(f.f.Name(), f.name); err != nil {
		return fmt.Errorf("failed to write %s: %w", f.name, err)
	}
	f.committed = true
	return nil
}

func (f *outputFile) abort() {
	if f.committed {
		return
	}
	f.f.Close()
	os.Remove(f.f.Name())
}

// materializer produces the bytes of operations, in order, from the run's
// random stream.
type materializer struct {
	opts *Options
	src  *fill.Source
	num  sequence.Numbering
	key  []byte
}

func (m *materializer) fill(j *job) error {
	o, op := m.opts, &j.op
	m.num.Next(op)
	if op.Kind.IsAEAD() && o.AEAD == "" {
		return errors.New("no AEAD variant configured")
	}
	if op.Kind == sequence.Hash && o.Hash == "" {
		return errors.New("no hash variant configured")
	}

	if x := op.Explicit; x != nil {
		j.data = x.Data
		if op.Kind.IsAEAD() {
			m.key = x.Key
			j.key, j.npub, j.nsec, j.ad = x.Key, x.Npub, x.Nsec, x.AD
		}
		return nil
	}

	f := op.Fill
	if op.Kind == sequence.Hash {
		j.data = fill.Bytes(f, fill.Hash, op.DataLen, m.src)
		return nil
	}
	if op.NewKey {
		m.key = fill.Bytes(f, fill.Key, o.KeySize/8, m.src)
	}
	j.key = m.key
	j.npub = fill.Bytes(f, fill.Npub, o.NpubSize/8, m.src)
	if o.NsecSize > 0 {
		j.nsec = fill.Bytes(f, fill.Nsec, o.NsecSize/8, m.src)
	}
	j.ad = fill.Bytes(f, fill.AD, op.ADLen, m.src)
	j.data = fill.Bytes(f, fill.Data, op.DataLen, m.src)
	return nil
}

func (g *Generator) compute(ctx context.Context, j *job) error {
	variant := g.cfg.opts.AEAD
	if j.op.Kind == sequence.Hash {
		out, err := g.oracle.Compute(ctx, &oracle.Request{
			Variant: g.cfg.opts.Hash, Kind: oracle.Hash, Data: j.data})
		if err != nil {
			return err
		}
		if len(out.Digest)*8 != g.cfg.opts.MessageDigestSize {
			return fmt.Errorf("digest is %d bits, expected %d", len(out.Digest)*8, g.cfg.opts.MessageDigestSize)
		}
		j.out = out
		return nil
	}

	enc, err := g.oracle.Compute(ctx, &oracle.Request{
		Variant: variant, Kind: oracle.Encrypt,
		Key: j.key, Npub: j.npub, Nsec: j.nsec, AD: j.ad, Data: j.data,
	})
	if err != nil {
		return err
	}
	if len(enc.Tag)*8 != g.cfg.opts.TagSize {
		return fmt.Errorf("tag is %d bits, expected %d", len(enc.Tag)*8, g.cfg.opts.TagSize)
	}
	if j.op.Kind == sequence.Encrypt && !g.cfg.opts.Verify {
		j.out = enc
		return nil
	}

	dec, err := g.oracle.Compute(ctx, &oracle.Request{
		Variant: variant, Kind: oracle.Decrypt,
		Key: j.key, Npub: j.npub, Nsec: enc.EncNsec, AD: j.ad, Data: enc.Ciphertext, Tag: enc.Tag,
	})
	if err != nil {
		return err
	}
	if g.cfg.opts.Verify && (!dec.AuthOK || !bytes.Equal(dec.Plaintext, j.data) || !bytes.Equal(dec.Nsec, j.nsec)) {
		return errors.New("verification failed: decryption does not invert encryption")
	}
	if j.op.Kind == sequence.Encrypt {
		j.out = enc
	} else {
		j.enc, j.out = enc, dec
	}
	return nil
}

// encoder frames computed jobs onto the output streams.
type encoder struct {
	g            *Generator
	pdi, sdi, do *frame.Writer
	tv           *kat.Writer
	n, total     int
}

func (g *Generator) newEncoder(dst Streams, total int) (*encoder, error) {
	o := g.cfg.opts
	e := &encoder{g: g, total: total}
	var err error
	if e.pdi, err = frame.NewWriter(dst.PDI, g.cfg.layout, o.PDIWidth, o.MaxIOPerLine); err != nil {
		return nil, err
	}
	if e.sdi, err = frame.NewWriter(dst.SDI, g.cfg.layout, o.SDIWidth, o.MaxIOPerLine); err != nil {
		return nil, err
	}
	if e.do, err = frame.NewWriter(dst.DO, g.cfg.layout, o.DOWidth, o.MaxIOPerLine); err != nil {
		return nil, err
	}
	if o.HumanReadable && dst.TestVectors != nil {
		e.tv = kat.NewWriter(dst.TestVectors)
	}

	header := g.header()
	for _, w := range []*frame.Writer{e.pdi, e.sdi, e.do} {
		if err := w.Comment(header); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *encoder) encode(j *job) error {
	g := e.g
	v := &plan.Vector{
		Kind: j.op.Kind, NewKey: j.op.NewKey,
		Key: j.key, Npub: j.npub, Nsec: j.nsec, AD: j.ad, Data: j.data,
		Output: j.out,
	}
	if j.op.Kind == sequence.Decrypt {
		v.Data, v.Tag, v.EncNsec = j.enc.Ciphertext, j.enc.Tag, j.enc.EncNsec
	}
	st, err := plan.Plan(&g.cfg.schema, v)
	if err != nil {
		return err
	}

	g.logger.Debug("operation",
		zap.Int("msg_id", j.op.MsgID),
		zap.Int("key_id", j.op.KeyID),
		zap.Stringer("kind", j.op.Kind),
		zap.Bool("new_key", j.op.NewKey),
		zap.Int("ad_len", len(j.ad)),
		zap.Int("data_len", len(j.data)),
		zap.Stringer("fill", j.op.Fill),
		zap.String("routine", j.op.Routine),
		zap.Int("case", j.op.Case))

	comment := operationComment(&j.op, len(j.ad), len(j.data))
	for _, c := range []struct {
		w       *frame.Writer
		records []frame.Record
	}{{e.pdi, st.Public}, {e.sdi, st.Secret}, {e.do, st.Output}} {
		c.w.Comment(comment)
		for _, r := range c.records {
			if err := c.w.Write(r); err != nil {
				return err
			}
		}
	}

	if e.tv != nil {
		if err := e.tv.Write(j.entry(g.cfg.opts.NsecSize > 0)); err != nil {
			return err
		}
	}
	e.n++
	if g.progress != nil {
		g.progress(e.n, e.total)
	}
	return nil
}

func (e *encoder) close() error {
	for _, w := range []*frame.Writer{e.pdi, e.sdi, e.do} {
		if err := w.Close(); err != nil {
			return err
		}
	}
	return nil
}

func (g *Generator) header() string {
	o := g.cfg.opts
	var b strings.Builder
	fmt.Fprintf(&b, "## cryptotv\n")
	if o.AEAD != "" {
		fmt.Fprintf(&b, "## aead: %s\n", o.AEAD)
	}
	if o.Hash != "" {
		fmt.Fprintf(&b, "## hash: %s\n", o.Hash)
	}
	fmt.Fprintf(&b, "## layout: %s\n", g.cfg.layout.Name)
	fmt.Fprintf(&b, "## msg_format: %s\n", strings.Join(o.MsgFormat, " "))
	fmt.Fprintf(&b, "## seed: %s", o.Seed)
	return b.String()
}

const rule = "##############################################################################"

func operationComment(op *Operation, adLen, dataLen int) string {
	var title string
	switch op.Kind {
	case sequence.Encrypt:
		title = frame.Encrypt.String()
	case sequence.Decrypt:
		title = frame.Decrypt.String()
	default:
		title = frame.Hash.String()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n### %s\n", rule, title)
	if op.Kind.IsAEAD() {
		fmt.Fprintf(&b, "### MsgID=%3d, KeyID=%3d, Ad Size =%5d, Data Size =%5d\n", op.MsgID, op.KeyID, adLen, dataLen)
	} else {
		fmt.Fprintf(&b, "### MsgID=%3d, Hash Size =%5d\n", op.MsgID, dataLen)
	}
	b.WriteString(rule)
	return b.String()
}

func (j *job) entry(hasNsec bool) *kat.Entry {
	e := &kat.Entry{MsgID: j.op.MsgID, KeyID: j.op.KeyID, HasNsec: hasNsec}
	if j.op.Kind == sequence.Hash {
		e.Hash, e.Message, e.Digest = true, j.data, j.out.Digest
		return e
	}
	enc := j.out
	if j.op.Kind == sequence.Decrypt {
		enc = j.enc
	}
	e.Key, e.Npub, e.Nsec, e.AD, e.Plaintext = j.key, j.npub, j.nsec, j.ad, j.data
	e.EncNsec, e.Ciphertext, e.Tag = enc.EncNsec, enc.Ciphertext, enc.Tag
	return e
}

// Suite is the output of a run.
type Suite struct {
	cfg              *Config
	pdi, sdi, do, tv bytes.Buffer
}

// PDI returns the public data input stream.
func (s *Suite) PDI() []byte { return s.pdi.Bytes() }

// SDI returns the secret data input stream.
func (s *Suite) SDI() []byte { return s.sdi.Bytes() }

// DO returns the expected data output stream.
func (s *Suite) DO() []byte { return s.do.Bytes() }

// TestVectors returns the human readable vectors, or nil if they were not
// requested.
func (s *Suite) TestVectors() []byte { return s.tv.Bytes() }

// WriteFiles writes the streams to their configured file names in dir,
// creating it if needed. If dir is empty, the configured destination is
// used.
func (s *Suite) WriteFiles(dir string) error {
	o := s.cfg.opts
	if dir == "" {
		dir = o.Dest
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	files := []struct {
		name string
		data []byte
	}{{o.PDIFile, s.PDI()}, {o.SDIFile, s.SDI()}, {o.DOFile, s.DO()}}
	if o.HumanReadable {
		files = append(files, struct {
			name string
			data []byte
		}{o.TVFile, s.TestVectors()})
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	return nil
}
