// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package benchunit

import "testing"

func TestStripLabel(t *testing.T) {
	test := func(raw, want string) {
		t.Helper()
		got := StripLabel(raw)
		if got != want {
			t.Errorf("StripLabel(%q) = %q, want %q", raw, got, want)
		}
		// Stripping is a fixed point.
		if again := StripLabel(got); again != got {
			t.Errorf("StripLabel(%q) = %q, not a fixed point", got, again)
		}
	}
	test("stride=16", "16")
	test("N_bytes=65536", "65536")
	test("ws_KiB=32", "32")
	test("read%=70", "70")
	test("GiB/s=3.25", "3.25")
	test("time==0.5", "0.5")
	test("stride16", "16")
	test("16", "16")
	test("-1.5", "-1.5")
	test(".5", ".5")
	test("1e9", "1e9")
	test("", "")
}

func TestStripKey(t *testing.T) {
	test := func(raw, want string) {
		t.Helper()
		if got := StripKey(raw); got != want {
			t.Errorf("StripKey(%q) = %q, want %q", raw, got, want)
		}
	}
	test("pattern=seq", "seq")
	test("kernel=saxpy", "saxpy")
	test("saxpy", "saxpy")
	test("f32", "f32")
	test("R70W30", "R70W30")
	test("=x", "=x")
	test("a=", "")
}

func TestParseNumber(t *testing.T) {
	test := func(raw string, want float64) {
		t.Helper()
		got, err := ParseNumber(raw)
		if err != nil {
			t.Errorf("ParseNumber(%q): unexpected error %v", raw, err)
			return
		}
		if got != want {
			t.Errorf("ParseNumber(%q) = %v, want %v", raw, got, want)
		}
	}
	test("stride=16", 16)
	test("16", 16)
	test(" threads=8 ", 8)
	test("GiB/s=12.5", 12.5)
	test("time=1e-3", 1e-3)

	bad := func(raw string) {
		t.Helper()
		if got, err := ParseNumber(raw); err == nil {
			t.Errorf("ParseNumber(%q) = %v, want error", raw, got)
		}
	}
	bad("")
	bad("stride=")
	bad("NaN")
	bad("inf")
	bad("+Inf")
	bad("16KiB")
	bad("1e400")
}

func TestStripRoundTrip(t *testing.T) {
	// A prefixed field and a bare field normalize to the same value.
	a, err := ParseNumber("stride=16")
	if err != nil {
		t.Fatal(err)
	}
	b, err := ParseNumber("16")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("prefixed %v != bare %v", a, b)
	}
}
