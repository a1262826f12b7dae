// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// A Files reads records from a sequence of CSV files, such as the
// per-run result files of a repeated sweep.
//
// Files adds a ".file" field to each Record naming the input it came
// from. By default this is the path as given in Paths, with duplicate
// paths disambiguated by appending "#N". If AllowLabels is set,
// entries in Paths may be of the form label=path, and the label is
// used for ".file" instead.
type Files struct {
	// Paths is the list of files to read, in order.
	Paths []string

	// AllowStdin indicates that the path "-" should be treated as
	// stdin and if the file list is empty, it should be treated
	// as consisting of stdin.
	AllowStdin bool

	// AllowLabels indicates that custom labels are allowed in
	// Paths.
	AllowLabels bool

	started bool
	queue   []Input
	reader  Reader
	cur     io.ReadCloser // nil between inputs
	err     error
}

// An Input is one file planned by Files.
type Input struct {
	Path  string
	Label string // the ".file" value of the input's records
	Stdin bool
}

// Open opens in for reading.
func (in Input) Open() (io.ReadCloser, error) {
	if in.Stdin {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(in.Path)
}

// Inputs resolves f.Paths into the sequence of inputs Scan reads,
// for callers that read the files in some other format.
func (f *Files) Inputs() []Input {
	if f.AllowStdin && len(f.Paths) == 0 {
		return []Input{{"-", "-", true}}
	}
	var ins []Input
	count := make(map[string]int)
	labeled := make([]bool, len(f.Paths))
	for i, p := range f.Paths {
		in := Input{Path: p, Label: p}
		if f.AllowLabels {
			if label, path, ok := strings.Cut(p, "="); ok {
				in.Label, in.Path = label, path
				labeled[i] = true
			}
		}
		if !labeled[i] {
			count[in.Path]++
		}
		in.Stdin = f.AllowStdin && in.Path == "-"
		ins = append(ins, in)
	}

	// Reading the same file twice would silently double its
	// samples, so give each copy its own .file.
	seen := make(map[string]int)
	for i := range ins {
		in := &ins[i]
		if labeled[i] || count[in.Path] < 2 {
			continue
		}
		in.Label = fmt.Sprintf("%s#%d", in.Path, seen[in.Path])
		seen[in.Path]++
	}
	return ins
}

// open starts reading the next queued input. It reports false when
// there are no more inputs or the input cannot be opened.
func (f *Files) open() bool {
	if len(f.queue) == 0 {
		return false
	}
	in := f.queue[0]
	f.queue = f.queue[1:]
	r, err := in.Open()
	if err != nil {
		f.err = err
		return false
	}
	f.cur = r
	f.reader.Reset(f.cur, in.Path, ".file", in.Label)
	return true
}

// Scan advances to the next entry in the sequence of files and
// reports whether one was read. If Scan reaches the end of the file
// sequence, or if an I/O error occurs, it returns false. In this
// case, the caller should use the Err method to check for errors.
func (f *Files) Scan() bool {
	if !f.started {
		f.started = true
		f.queue = f.Inputs()
	}
	for f.err == nil {
		if f.cur == nil && !f.open() {
			return false
		}
		if f.reader.Scan() {
			return true
		}
		f.cur.Close()
		f.cur = nil
		f.err = f.reader.Err()
	}
	return false
}

// Entry returns the entry that was just read by Scan.
// See Reader.Entry.
func (f *Files) Entry() Entry {
	return f.reader.Entry()
}

// Err returns the I/O error that stopped Scan, if any.
func (f *Files) Err() error {
	return f.err
}
