// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

func isLabelByte(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' ||
		c == '_' || c == '%' || c == '/'
}

// labelLen returns the length of the label run at the start of s.
func labelLen(s string) int {
	i := 0
	for i < len(s) && isLabelByte(s[i]) {
		i++
	}
	return i
}

// StripLabel removes a leading label from a raw numeric field, as
// written by drivers that print fields like "stride=16",
// "N_bytes=65536", "read%=70" or "GiB/s=3.2". A label is a run of
// letters, underscores, '%' and '/' characters, optionally followed by
// '=' signs. Values that already start with a digit, sign or '.' are
// returned unchanged, so StripLabel(StripLabel(s)) == StripLabel(s).
func StripLabel(s string) string {
	i := labelLen(s)
	if i == 0 {
		return s
	}
	for i < len(s) && s[i] == '=' {
		i++
	}
	return s[i:]
}

// StripKey removes a "key=" prefix from a raw categorical field, such
// as "pattern=seq". Unlike StripLabel, it leaves values without an '='
// alone, so that "saxpy" stays "saxpy".
func StripKey(s string) string {
	i := labelLen(s)
	if i == 0 || i == len(s) || s[i] != '=' {
		return s
	}
	for i < len(s) && s[i] == '=' {
		i++
	}
	return s[i:]
}

// ParseNumber strips any label from s and parses the remainder as a
// finite float64. NaN and infinities are rejected.
func ParseNumber(s string) (float64, error) {
	num := strings.TrimSpace(StripLabel(strings.TrimSpace(s)))
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %q: %w", s, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("parsing %q: value is not finite", s)
	}
	return v, nil
}
