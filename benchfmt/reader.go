// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchfmt

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// A Reader reads raw records from CSV benchmark output.
//
// The first row is the header naming each column. Every later row
// becomes a Record keyed by those names. Cells are kept as strings,
// including any embedded "label=" prefixes. Rows shorter than the
// header simply lack the trailing fields; rows longer than the header
// are reported as a *SyntaxError. Lines starting with '#' are
// comments.
//
// Its API is modeled on bufio.Scanner. To construct a new Reader,
// either call NewReader, or call Reset on a zeroed Reader.
type Reader struct {
	csv      *csv.Reader
	fileName string
	header   []string
	extra    []string // alternating initial key/value fields
	err      error

	entry Entry
}

// An Entry is a single item read by a Reader: either a *Record or a
// *SyntaxError describing a row that could not be read. Syntax errors
// do not stop the Reader.
type Entry interface {
	// Pos returns the position of this entry in its input.
	Pos() (fileName string, line int)
}

// A SyntaxError represents a syntax error on a particular line of a
// benchmark results file.
type SyntaxError struct {
	FileName string
	Line     int
	Msg      string
}

func (e *SyntaxError) Pos() (fileName string, line int) {
	return e.FileName, e.Line
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, e.Msg)
}

var noEntry = &SyntaxError{"", 0, "Reader.Scan has not been called"}

// NewReader constructs a reader to parse CSV records from r.
// fileName is used in error messages; it is purely diagnostic.
func NewReader(r io.Reader, fileName string) *Reader {
	reader := new(Reader)
	reader.Reset(r, fileName)
	return reader
}

// Reset resets the reader to begin reading from a new input,
// including a new header row.
//
// initFields is an alternating sequence of keys and values. Reset
// adds these fields to every Record read from the input. Columns of
// the input with the same names take precedence.
func (r *Reader) Reset(ior io.Reader, fileName string, initFields ...string) {
	if len(initFields)%2 != 0 {
		panic("len(initFields) must be a multiple of 2")
	}
	if fileName == "" {
		fileName = "<unknown>"
	}
	r.csv = csv.NewReader(ior)
	r.csv.FieldsPerRecord = -1
	r.csv.TrimLeadingSpace = true
	r.csv.Comment = '#'
	r.fileName = fileName
	r.header = nil
	r.extra = append(r.extra[:0], initFields...)
	r.err = nil
	r.entry = noEntry
}

// Header returns the column names read from the header row, or nil
// if the header has not been read yet.
func (r *Reader) Header() []string {
	return r.header
}

// Scan advances the reader to the next entry and reports whether an
// entry was read. The caller should use the Entry method to get it.
// If Scan reaches EOF or an I/O error occurs, it returns false, in
// which case the caller should use the Err method to check for
// errors.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	for {
		row, err := r.csv.Read()
		if err == io.EOF {
			return false
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			r.entry = &SyntaxError{r.fileName, perr.Line, perr.Err.Error()}
			return true
		} else if err != nil {
			r.err = fmt.Errorf("%s: %w", r.fileName, err)
			return false
		}
		line, _ := r.csv.FieldPos(0)

		if r.header == nil {
			if err := r.setHeader(row, line); err != nil {
				r.err = err
				return false
			}
			continue
		}

		if len(row) > len(r.header) {
			r.entry = &SyntaxError{r.fileName, line, fmt.Sprintf("expected at most %d fields, got %d", len(r.header), len(row))}
			return true
		}
		rec := &Record{
			Fields:   make(map[string]any, len(r.header)+len(r.extra)/2),
			fileName: r.fileName,
			line:     line,
		}
		for i := 0; i < len(r.extra); i += 2 {
			rec.Fields[r.extra[i]] = r.extra[i+1]
		}
		for i, cell := range row {
			rec.Fields[r.header[i]] = strings.TrimSpace(cell)
		}
		r.entry = rec
		return true
	}
}

func (r *Reader) setHeader(row []string, line int) error {
	seen := make(map[string]bool, len(row))
	header := make([]string, len(row))
	for i, name := range row {
		name = strings.TrimSpace(name)
		if name == "" {
			return &SyntaxError{r.fileName, line, fmt.Sprintf("empty name for column %d", i+1)}
		}
		if seen[name] {
			return &SyntaxError{r.fileName, line, fmt.Sprintf("duplicate column %q", name)}
		}
		seen[name] = true
		header[i] = name
	}
	r.header = header
	return nil
}

// Entry returns the entry that was just read by Scan. It is either a
// *Record or a *SyntaxError.
func (r *Reader) Entry() Entry {
	return r.entry
}

// Err returns the first non-EOF I/O or header error that was
// encountered by the Reader.
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every record from r. Rows that could not be read are
// returned as warnings; err reports only failures that stopped
// reading.
func ReadAll(r io.Reader, fileName string) (recs []*Record, warnings []error, err error) {
	rd := NewReader(r, fileName)
	for rd.Scan() {
		switch e := rd.Entry().(type) {
		case *Record:
			recs = append(recs, e)
		case *SyntaxError:
			warnings = append(warnings, e)
		}
	}
	return recs, warnings, rd.Err()
}
