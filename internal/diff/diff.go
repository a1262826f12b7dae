// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diff describes differences between expected and actual
// report text in tests.
package diff

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Diff returns a human-readable description of the differences
// between want and got, or "" if they are equal. It uses the system
// diff command if there is one and otherwise quotes both strings.
func Diff(want, got string) string {
	if want == got {
		return ""
	}
	quoted := fmt.Sprintf("want:\n%s\ngot:\n%s", want, got)
	if _, err := exec.LookPath("diff"); err != nil {
		return quoted
	}
	dir, err := os.MkdirTemp("", "microperf-diff")
	if err != nil {
		return quoted
	}
	defer os.RemoveAll(dir)
	for name, s := range map[string]string{"want": want, "got": got} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(s), 0666); err != nil {
			return quoted
		}
	}
	cmd := exec.Command("diff", "-u", "want", "got")
	cmd.Dir = dir
	// diff exits non-zero when the inputs differ, so only the
	// output matters.
	out, _ := cmd.CombinedOutput()
	if len(out) == 0 {
		return quoted
	}
	return string(out)
}
