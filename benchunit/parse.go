// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package benchunit manipulates the units of raw microbenchmark
// measurements: it strips the "label=" prefixes that benchmark drivers
// embed in their output, parses numbers and block sizes, converts
// pre-scaled units to base units, and formats values for display.
package benchunit

import (
	"fmt"
	"unicode"
)

// A Class specifies what class of unit prefixes are in use.
type Class int

const (
	// Decimal indicates values of a given unit should be scaled
	// by powers of 1000, using SI prefixes such as "k" and "G".
	Decimal Class = iota
	// Binary indicates values of a given unit should be scaled by
	// powers of 1024, using IEC prefixes such as "Ki" and "Gi".
	Binary
)

func (c Class) String() string {
	switch c {
	case Decimal:
		return "Decimal"
	case Binary:
		return "Binary"
	}
	return fmt.Sprintf("Class(%d)", int(c))
}

// ClassOf returns the Class of unit. If unit measures bytes in the
// numerator (for example "B", "GiB/s" or "bytes"), this is Binary.
// Otherwise, including for "ns/B", it is Decimal.
func ClassOf(unit string) Class {
	p := newParser(unit)
	for p.next() {
		if p.denom {
			continue
		}
		if _, ok := byteUnits[p.tok]; ok {
			return Binary
		}
	}
	return Decimal
}

// byteUnits maps byte-valued unit tokens to their size in bytes.
var byteUnits = map[string]float64{
	"B":     1,
	"bytes": 1,
	"KiB":   1 << 10,
	"MiB":   1 << 20,
	"GiB":   1 << 30,
	"TiB":   1 << 40,
	"kB":    1e3,
	"KB":    1e3,
	"MB":    1e6,
	"GB":    1e9,
}

// parser tokenizes units such as "GiB/s" or "disk-B*B/sec".
type parser struct {
	rest string // unparsed unit
	rpos int    // bytes consumed from original unit

	// Current token
	tok   string
	pos   int  // byte offset of tok in original unit
	denom bool // current token is in denominator
}

func newParser(unit string) *parser {
	return &parser{rest: unit}
}

func isSep(r rune) bool {
	return r == '*' || r == '/' || r == '-' || unicode.IsSpace(r)
}

func (p *parser) next() bool {
	// Consume separators, tracking which side of a '/' we're on.
	skip := len(p.rest)
	for i, r := range p.rest {
		if r == '*' {
			p.denom = false
		} else if r == '/' {
			p.denom = true
		} else if !isSep(r) {
			skip = i
			break
		}
	}
	p.rpos += skip
	p.rest = p.rest[skip:]
	if p.rest == "" {
		return false
	}

	end := len(p.rest)
	for i, r := range p.rest {
		if isSep(r) {
			end = i
			break
		}
	}
	p.tok = p.rest[:end]
	p.pos = p.rpos
	p.rpos += end
	p.rest = p.rest[end:]
	return true
}
