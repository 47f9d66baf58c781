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

package links

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/exascience/elcortex/internal"
	"github.com/exascience/elcortex/kmer"
)

// HeaderTag starts the first line of every link file.
const HeaderTag = "CORTEXLINKS"

// Open reads a link file. Gzipped files are recognized by their first
// byte and decompressed transparently.
func Open(path string) (m *Model, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if nerr := file.Close(); err == nil {
			err = nerr
		}
	}()
	return Read(file, path)
}

// Read parses a link file from r. The name is only used in error
// messages.
func Read(r io.Reader, name string) (*Model, error) {
	in := bufio.NewReader(r)
	gz, err := internal.IsGzip(in)
	if err != nil {
		if err == io.EOF {
			return nil, &FormatError{Path: name, Line: 1, Reason: "missing header"}
		}
		return nil, err
	}
	var lines io.Reader = in
	if gz {
		zr, err := gzip.NewReader(in)
		if err != nil {
			return nil, fmt.Errorf("%v, while opening gzipped links file %v", err, name)
		}
		defer zr.Close()
		lines = zr
	}
	p := &parser{name: name, scanner: bufio.NewScanner(lines)}
	p.scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return p.parse()
}

type parser struct {
	name    string
	scanner *bufio.Scanner
	line    int
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return &FormatError{Path: p.name, Line: p.line, Reason: fmt.Sprintf(format, args...)}
}

// next returns the next line that is neither empty nor a comment.
func (p *parser) next() ([]string, bool, error) {
	for p.scanner.Scan() {
		p.line++
		line := strings.TrimSpace(p.scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		return strings.Fields(line), true, nil
	}
	if err := p.scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("%v, while reading links file %v", err, p.name)
	}
	return nil, false, nil
}

func (p *parser) parse() (*Model, error) {
	fields, ok, err := p.next()
	if err != nil {
		return nil, err
	}
	if !ok || len(fields) != 3 || fields[0] != HeaderTag {
		return nil, p.errorf("missing %v header", HeaderTag)
	}
	version, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, p.errorf("invalid version %q", fields[1])
	}
	if version < MinVersion || version > MaxVersion {
		return nil, &UnsupportedVersionError{Path: p.name, Version: version}
	}
	if !strings.HasPrefix(fields[2], "k=") {
		return nil, p.errorf("missing k-mer size")
	}
	k, err := strconv.Atoi(fields[2][2:])
	if err != nil || k <= 0 {
		return nil, p.errorf("invalid k-mer size %q", fields[2])
	}
	m := NewModel(k)
	m.name, m.version = p.name, version
	for {
		fields, ok, err := p.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return m, nil
		}
		if len(fields) != 2 {
			return nil, p.errorf("expected a k-mer and a junction count")
		}
		km, err := kmer.New(fields[0])
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		if km.Len() != k {
			return nil, p.errorf("k-mer %v does not have size %v", fields[0], k)
		}
		count, err := strconv.Atoi(fields[1])
		if err != nil || count < 0 {
			return nil, p.errorf("invalid junction count %q", fields[1])
		}
		for i := 0; i < count; i++ {
			fields, ok, err := p.next()
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, p.errorf("%v junctions missing for %v", count-i, km.Oriented())
			}
			j, err := p.junction(fields, version)
			if err != nil {
				return nil, err
			}
			if err := m.Add(km, j); err != nil {
				return nil, p.errorf("%v", err)
			}
		}
	}
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	result := make([]int, len(parts))
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		result[i] = n
	}
	return result, nil
}

// junction parses
//
//	v3: <F|R> <kmers_traversed> <num_choices> <coverage> <choices> <positions>
//	v4: <F|R> <kmers_traversed> <num_choices> <cov,cov,...> <choices> <positions> [src=<c,c,...>]
func (p *parser) junction(fields []string, version int) (j Junction, err error) {
	if len(fields) < 6 || len(fields) > 7 || (version < 4 && len(fields) != 6) {
		return j, p.errorf("junction has %v fields", len(fields))
	}
	switch fields[0] {
	case "F":
		j.Orientation = kmer.Forward
	case "R":
		j.Orientation = kmer.Reverse
	default:
		return j, p.errorf("invalid junction orientation %q", fields[0])
	}
	if j.KmersTraversed, err = strconv.Atoi(fields[1]); err != nil || j.KmersTraversed < 0 {
		return j, p.errorf("invalid number of traversed k-mers %q", fields[1])
	}
	numChoices, err := strconv.Atoi(fields[2])
	if err != nil {
		return j, p.errorf("invalid number of choices %q", fields[2])
	}
	coverage, err := parseInts(fields[3])
	if err != nil || (version < 4 && len(coverage) != 1) {
		return j, p.errorf("invalid coverage %q", fields[3])
	}
	j.Coverage = make([]uint32, len(coverage))
	for i, c := range coverage {
		if c < 0 {
			return j, p.errorf("negative coverage %q", fields[3])
		}
		j.Coverage[i] = uint32(c)
	}
	j.Choices = fields[4]
	if len(j.Choices) != numChoices {
		return j, p.errorf("expected %v choices, got %q", numChoices, j.Choices)
	}
	if j.Positions, err = parseInts(fields[5]); err != nil {
		return j, p.errorf("invalid positions %q", fields[5])
	}
	if len(fields) == 7 {
		if !strings.HasPrefix(fields[6], "src=") {
			return j, p.errorf("unexpected field %q", fields[6])
		}
		if j.Sources, err = parseInts(fields[6][4:]); err != nil {
			return j, p.errorf("invalid sources %q", fields[6])
		}
	}
	return j, nil
}

func formatInts(buf []byte, values []int) []byte {
	for i, v := range values {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendInt(buf, int64(v), 10)
	}
	return buf
}

// Write writes the model in the given file version, with entries in
// canonical k-mer order. Version 3 files carry the summed coverage of
// every junction and no sources.
func (m *Model) Write(w io.Writer, version int) error {
	if version < MinVersion || version > MaxVersion {
		return &UnsupportedVersionError{Path: m.name, Version: version}
	}
	out := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(out, "%v %v k=%v\n", HeaderTag, version, m.k); err != nil {
		return err
	}
	var buf []byte
	for _, k := range m.Kmers() {
		entry := m.entries[k.String()]
		buf = append(buf[:0], k.String()...)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(len(entry.Junctions)), 10)
		buf = append(buf, '\n')
		for i := range entry.Junctions {
			j := &entry.Junctions[i]
			buf = append(buf, j.Orientation.String()...)
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(j.KmersTraversed), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(len(j.Choices)), 10)
			buf = append(buf, ' ')
			if version < 4 {
				buf = strconv.AppendUint(buf, j.TotalCoverage(), 10)
			} else {
				for c, cov := range j.Coverage {
					if c > 0 {
						buf = append(buf, ',')
					}
					buf = strconv.AppendUint(buf, uint64(cov), 10)
				}
			}
			buf = append(buf, ' ')
			buf = append(buf, j.Choices...)
			buf = append(buf, ' ')
			buf = formatInts(buf, j.Positions)
			if version >= 4 && len(j.Sources) > 0 {
				buf = append(buf, " src="...)
				buf = formatInts(buf, j.Sources)
			}
			buf = append(buf, '\n')
		}
		if _, err := out.Write(buf); err != nil {
			return err
		}
	}
	return out.Flush()
}

// WriteFile writes the model to the given path, gzipped if the path
// ends in ".gz".
func (m *Model) WriteFile(path string, version int) (funcErr error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if err := file.Close(); funcErr == nil {
			funcErr = err
		}
	}()
	if !strings.HasSuffix(path, ".gz") {
		return m.Write(file, version)
	}
	zw := gzip.NewWriter(file)
	defer func() {
		if err := zw.Close(); funcErr == nil {
			funcErr = err
		}
	}()
	return m.Write(zw, version)
}
