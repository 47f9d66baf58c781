// elCortex: a colored de Bruijn graph store and traversal engine.
// Copyright (c) 2026 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/elcortex/blob/master/LICENSE.txt>.


// Package fasta reads the FASTA and FASTQ files that graphs are built
// from.
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/exascience/elcortex/internal"
)

var iupacUpperTable [256]byte

func init() {
	for i := range iupacUpperTable {
		iupacUpperTable[i] = byte(i)
	}
	for _, c := range "ACGTN" {
		iupacUpperTable[c] = byte(c)
		iupacUpperTable[c+'a'-'A'] = byte(c)
	}
	for _, c := range "RYMKWSBDHV" {
		iupacUpperTable[c] = 'N'
		iupacUpperTable[c+'a'-'A'] = 'N'
	}
}

// ToUpperAndN converts a base to upper case and normalizes ambiguity
// codes to N.
func ToUpperAndN(base byte) byte {
	return iupacUpperTable[base]
}

// Sequence is one entry of a FASTA or FASTQ file.
type Sequence struct {
	Name  string
	Bases []byte
}

func nameFromHeader(b []byte) string {
	i := 1
	for ; i < len(b); i++ {
		if c := b[i]; c >= '!' && c <= '~' {
			break
		}
	}
	j := i + 1
	for ; j < len(b); j++ {
		if c := b[j]; c < '!' || c > '~' {
			break
		}
	}
	if j > len(b) {
		j = len(b)
	}
	return string(b[i:j])
}

// Reader reads sequences one at a time. The format is determined by
// the first header: '>' for FASTA, '@' for FASTQ.
type Reader struct {
	name    string
	scanner *bufio.Scanner
	closers []io.Closer
	fastq   bool
	line    int
	header  []byte
	current Sequence
	err     error
}

// Open opens a possibly gzipped FASTA or FASTQ file.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(file, path)
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	r.closers = append(r.closers, file)
	return r, nil
}

// NewReader reads sequences from r. The name is only used in error
// messages.
func NewReader(r io.Reader, name string) (*Reader, error) {
	in := bufio.NewReader(r)
	result := &Reader{name: name}
	var lines io.Reader = in
	if gz, err := internal.IsGzip(in); err != nil && err != io.EOF {
		return nil, err
	} else if gz {
		zr, err := gzip.NewReader(in)
		if err != nil {
			return nil, fmt.Errorf("%v, while opening gzipped sequence file %v", err, name)
		}
		result.closers = append(result.closers, zr)
		lines = zr
	}
	result.scanner = bufio.NewScanner(lines)
	result.scanner.Buffer(make([]byte, 0, 64*1024), 1<<30)
	return result, nil
}

func (r *Reader) scan() ([]byte, bool) {
	for r.scanner.Scan() {
		r.line++
		if b := r.scanner.Bytes(); len(b) > 0 {
			return b, true
		}
	}
	if err := r.scanner.Err(); err != nil && r.err == nil {
		r.err = fmt.Errorf("%v, while reading %v", err, r.name)
	}
	return nil, false
}

func (r *Reader) fail(format string, args ...interface{}) bool {
	r.err = fmt.Errorf("invalid sequence file %v in line %v - %v", r.name, r.line, fmt.Sprintf(format, args...))
	return false
}

// Next reads the next sequence and reports whether there is one.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	if r.header == nil {
		b, ok := r.scan()
		if !ok {
			return false
		}
		switch b[0] {
		case '>':
		case '@':
			r.fastq = true
		default:
			return r.fail("missing first header")
		}
		r.header = append([]byte(nil), b...)
	}
	if len(r.header) == 0 {
		return false
	}
	r.current = Sequence{Name: nameFromHeader(r.header)}
	if r.fastq {
		return r.nextFastq()
	}
	for {
		b, ok := r.scan()
		if !ok {
			r.header = r.header[:0]
			return r.err == nil
		}
		if b[0] == '>' {
			r.header = append(r.header[:0], b...)
			return true
		}
		for _, c := range b {
			r.current.Bases = append(r.current.Bases, ToUpperAndN(c))
		}
	}
}

func (r *Reader) nextFastq() bool {
	if r.header[0] != '@' {
		return r.fail("expected '@' header")
	}
	bases, ok := r.scan()
	if !ok {
		return r.fail("missing bases")
	}
	r.current.Bases = make([]byte, len(bases))
	for i, c := range bases {
		r.current.Bases[i] = ToUpperAndN(c)
	}
	if plus, ok := r.scan(); !ok || plus[0] != '+' {
		return r.fail("missing '+' separator")
	}
	if quals, ok := r.scan(); !ok || len(quals) != len(bases) {
		return r.fail("qualities do not match bases")
	}
	if next, ok := r.scan(); ok {
		r.header = append(r.header[:0], next...)
	} else {
		r.header = r.header[:0]
	}
	return r.err == nil
}

// Sequence returns the sequence read by the last call to Next.
func (r *Reader) Sequence() Sequence {
	return r.current
}

// Err returns the first error encountered.
func (r *Reader) Err() error {
	return r.err
}

// Close closes the underlying files.
func (r *Reader) Close() (err error) {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if nerr := r.closers[i].Close(); err == nil {
			err = nerr
		}
	}
	r.closers = nil
	return
}
