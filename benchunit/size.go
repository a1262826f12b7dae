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

// sizeSuffixes maps lower-cased block-size suffixes to multipliers.
// fio treats "k" and "kb" as binary unless told otherwise.
var sizeSuffixes = map[string]int64{
	"":    1,
	"b":   1,
	"k":   1 << 10,
	"kb":  1 << 10,
	"kib": 1 << 10,
	"m":   1 << 20,
	"mb":  1 << 20,
	"mib": 1 << 20,
	"g":   1 << 30,
	"gb":  1 << 30,
	"gib": 1 << 30,
	"t":   1 << 40,
	"tb":  1 << 40,
	"tib": 1 << 40,
}

// A SizeError reports a block size string that could not be parsed.
type SizeError struct {
	Size string
	Msg  string
}

func (e *SizeError) Error() string {
	return fmt.Sprintf("malformed block size %q: %s", e.Size, e.Msg)
}

// ParseSize parses a block size such as "4k", "64KiB", "1M" or "4096"
// into bytes. Suffixes are case-insensitive and binary. Per-direction
// lists like "4k,64k" are rejected.
func ParseSize(s string) (int64, error) {
	t := strings.TrimSpace(s)
	i := 0
	for i < len(t) && '0' <= t[i] && t[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, &SizeError{s, "no leading digits"}
	}
	mult, ok := sizeSuffixes[strings.ToLower(t[i:])]
	if !ok {
		return 0, &SizeError{s, fmt.Sprintf("unknown suffix %q", t[i:])}
	}
	n, err := strconv.ParseInt(t[:i], 10, 64)
	if err != nil {
		return 0, &SizeError{s, err.Error()}
	}
	if n > math.MaxInt64/mult {
		return 0, &SizeError{s, "overflows int64"}
	}
	return n * mult, nil
}
