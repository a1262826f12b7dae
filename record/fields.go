// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/microperf/benchfmt"
	"golang.org/x/microperf/benchunit"
)

// A Value is a single normalized field: either a number or a
// category such as a kernel name.
type Value struct {
	Str   string
	Num   Num
	IsNum bool
}

// NumValue returns a numeric Value.
func NumValue(n Num) Value { return Value{Num: n, IsNum: true} }

// StrValue returns a categorical Value.
func StrValue(s string) Value { return Value{Str: s} }

// Valid reports whether v holds a usable value: a valid number or a
// non-empty category.
func (v Value) Valid() bool {
	if v.IsNum {
		return v.Num.Valid
	}
	return v.Str != ""
}

func (v Value) String() string {
	if v.IsNum {
		return v.Num.String()
	}
	return v.Str
}

// Compare orders a and b. Numbers sort before categories, numbers
// compare numerically and categories lexically. Missing numbers sort
// before valid ones.
func Compare(a, b Value) int {
	switch {
	case a.IsNum && !b.IsNum:
		return -1
	case !a.IsNum && b.IsNum:
		return 1
	case !a.IsNum:
		return strings.Compare(a.Str, b.Str)
	}
	switch {
	case a.Num.Valid != b.Num.Valid:
		if !a.Num.Valid {
			return -1
		}
		return 1
	case a.Num.Value < b.Num.Value:
		return -1
	case a.Num.Value > b.Num.Value:
		return 1
	}
	return 0
}

// Fields is a normalized record: a mapping from field name to Value.
type Fields map[string]Value

// Num returns the numeric field name, or Missing if it is absent or
// categorical.
func (f Fields) Num(name string) Num {
	v, ok := f[name]
	if !ok || !v.IsNum {
		return Missing
	}
	return v.Num
}

// Str returns field name formatted as a string, or "" if absent.
func (f Fields) Str(name string) string {
	return f[name].String()
}

// SetNum sets the numeric field name.
func (f Fields) SetNum(name string, n Num) { f[name] = NumValue(n) }

// SetStr sets the categorical field name.
func (f Fields) SetStr(name string, s string) { f[name] = StrValue(s) }

// Keys returns the field names of f in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of f.
func (f Fields) Clone() Fields {
	f2 := make(Fields, len(f))
	for k, v := range f {
		f2[k] = v
	}
	return f2
}

// Map returns f as a raw field map. Normalizing the result with the
// same numeric fields returns f unchanged.
func (f Fields) Map() map[string]any {
	m := make(map[string]any, len(f))
	for k, v := range f {
		m[k] = v
	}
	return m
}

// A FieldError records a field that could not be normalized. The
// field is marked missing; the rest of the record is kept.
type FieldError struct {
	FileName string // may be ""
	Line     int
	Field    string
	Raw      any
	Err      error
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("field %s: %v", e.Field, e.Err)
	if e.FileName != "" {
		return fmt.Sprintf("%s:%d: %s", e.FileName, e.Line, msg)
	}
	return msg
}

func (e *FieldError) Unwrap() error { return e.Err }

var errNotNumber = errors.New("not a number")

// Normalize converts a raw field map to Fields.
//
// Each field named in numeric becomes a Num: strings have any label
// prefix removed and are parsed, numbers pass through, and absent,
// empty or unparseable values are missing. Parse failures are
// returned as *FieldError warnings. Other fields become categories
// with any "key=" prefix removed, except that raw numbers stay
// numeric. Nested values in non-numeric fields are dropped.
//
// Normalize is idempotent: normalizing the Map of its result yields
// the same Fields.
func Normalize(raw map[string]any, numeric []string) (Fields, []error) {
	var warnings []error
	f := make(Fields, len(raw)+len(numeric))
	isNumeric := make(map[string]bool, len(numeric))
	for _, name := range numeric {
		isNumeric[name] = true
		n, err := coerce(raw[name])
		if err != nil {
			warnings = append(warnings, &FieldError{Field: name, Raw: raw[name], Err: err})
		}
		f[name] = NumValue(n)
	}
	for name, rv := range raw {
		if isNumeric[name] {
			continue
		}
		if v, ok := category(rv); ok {
			f[name] = v
		}
	}
	return f, warnings
}

// NormalizeRecord normalizes r like Normalize, attaching r's position
// to any warnings.
func NormalizeRecord(r *benchfmt.Record, numeric []string) (Fields, []error) {
	f, warnings := Normalize(r.Fields, numeric)
	file, line := r.Pos()
	for _, w := range warnings {
		if fe, ok := w.(*FieldError); ok {
			fe.FileName, fe.Line = file, line
		}
	}
	return f, warnings
}

func coerce(raw any) (Num, error) {
	switch v := raw.(type) {
	case nil:
		return Missing, nil
	case Num:
		return v, nil
	case Value:
		if v.IsNum {
			return v.Num, nil
		}
		return coerce(v.Str)
	case float64:
		return Some(v), nil
	case float32:
		return Some(float64(v)), nil
	case int:
		return Some(float64(v)), nil
	case int64:
		return Some(float64(v)), nil
	case uint64:
		return Some(float64(v)), nil
	case json.Number:
		return coerce(string(v))
	case string:
		if strings.TrimSpace(v) == "" {
			return Missing, nil
		}
		x, err := benchunit.ParseNumber(v)
		if err != nil {
			return Missing, err
		}
		return Some(x), nil
	}
	return Missing, fmt.Errorf("%w: %T", errNotNumber, raw)
}

func category(raw any) (Value, bool) {
	switch v := raw.(type) {
	case Value:
		return v, true
	case Num:
		return NumValue(v), true
	case string:
		return StrValue(benchunit.StripKey(strings.TrimSpace(v))), true
	case bool:
		return StrValue(strconv.FormatBool(v)), true
	case float64, float32, int, int64, uint64, json.Number:
		n, err := coerce(v)
		return NumValue(n), err == nil
	}
	return Value{}, false
}
