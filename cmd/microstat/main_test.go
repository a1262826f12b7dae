// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/microperf/internal/diff"
	"golang.org/x/microperf/storage/db"
)

const kernelCSV = `kernel,variant,dtype,N,time_ms,gflops
saxpy,scalar,f32,1024,4,0.5
saxpy,scalar,f32,1024,6,0.5
saxpy,simd,f32,1024,1,2
saxpy,simd,f32,1024,3,2
`

const sweepCSV = `N_bytes,stride,repeats,read_pct,threads,time,GiB/s
N_bytes=67108864,stride=1,repeats=5,read%=100,threads=1,time=0.0125,GiB/s=25
N_bytes=67108864,stride=1,repeats=5,read%=100,threads=1,time=0.0125,GiB/s=27
N_bytes=67108864,stride=1,repeats=5,read%=100,threads=2,time=0.0125,GiB/s=50
`

const fioJSON = `{
  "fio version": "fio-3.36",
  "jobs": [
    {
      "jobname": "R70W30",
      "job options": {"iodepth": "32", "bs": "4k"},
      "read": {"io_bytes": 286720, "bw_bytes": 28672000, "iops": 7000, "total_ios": 70,
        "clat_ns": {"mean": 100000, "percentile": {"99.000000": 400000}}},
      "write": {"io_bytes": 122880, "bw_bytes": 12288000, "iops": 3000, "total_ios": 30,
        "clat_ns": {"mean": 200000, "percentile": {"99.000000": 900000}}}
    },
    {
      "jobname": "W100",
      "job options": {"iodepth": "x", "bs": "4k"},
      "write": {"io_bytes": 4096, "bw_bytes": 4096, "iops": 1, "total_ios": 1, "clat_ns": {"mean": 1000}}
    }
  ]
}`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0666); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var got, gotErr bytes.Buffer
	t.Logf("microstat %s", strings.Join(args, " "))
	if err := microstat(&got, &gotErr, args); err != nil {
		t.Fatalf("unexpected error: %s\nstderr:\n%s", err, gotErr.String())
	}
	return got.String(), gotErr.String()
}

func TestKernelCSV(t *testing.T) {
	in := writeFile(t, "kernels.csv", kernelCSV)
	out, errs := run(t, "-format", "csv", "-target", "time_ms", in)
	want := `kernel,variant,dtype,N,mean_time_ms,std_time_ms,count
saxpy,scalar,f32,1024,5,1.4142135623730951,2
saxpy,simd,f32,1024,2,1.4142135623730951,2
`
	if d := diff.Diff(want, out); d != "" {
		t.Errorf("output differs:\n%s", d)
	}
	if errs != "" {
		t.Errorf("unexpected stderr:\n%s", errs)
	}
}

func TestKernelMarkdown(t *testing.T) {
	in := writeFile(t, "kernels.csv", kernelCSV)
	out, _ := run(t, "-roofline", "10,100", in)
	for _, want := range []string{
		"| kernel | variant | dtype |",
		"mean_time_ms (sec)",
		"5.00m",
		"## SIMD speedup",
		"|     2.5 |",
		"## Roofline",
		"memory-bound-limited",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestFileLabels(t *testing.T) {
	header := "kernel,variant,dtype,N,misalign,time_ms\n"
	a := writeFile(t, "a.csv", header+"saxpy,simd,f32,1024,0,2\nsaxpy,simd,f32,1024,1,4\n")
	b := writeFile(t, "b.csv", header+"saxpy,simd,f32,1024,0,1\n")
	out, _ := run(t, "-format", "csv", "-group", ".file,kernel", "-target", "time_ms", "old="+a, "new="+b)
	want := `.file,kernel,mean_time_ms,std_time_ms,count
new,saxpy,1,,1
old,saxpy,3,1.4142135623730951,2
`
	if d := diff.Diff(want, out); d != "" {
		t.Errorf("output differs:\n%s", d)
	}

	// Columns outside the schema can be grouped and filtered on.
	out, _ = run(t, "-format", "csv", "-group", "misalign", "-target", "time_ms", "-where", "misalign=1", a, b)
	if want := "misalign,mean_time_ms,std_time_ms,count\n1,4,,1\n"; out != want {
		t.Errorf("got:\n%s\nwant:\n%s", out, want)
	}

	in := writeFile(t, "rwmix_qd32.json", fioJSON)
	out, _ = run(t, "-mode", "fio", "-format", "csv", "-group", ".file,jobname", "-target", "iops", "base="+in)
	for _, want := range []string{"\nbase,R70W30,", "\nbase,W100,1,,1\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	out, _ = run(t, "-mode", "fio", "base="+in)
	if !strings.Contains(out, "| base | R70W30 |") {
		t.Errorf("mix table not labeled:\n%s", out)
	}
}

func TestSweepWhere(t *testing.T) {
	in := writeFile(t, "run0.csv", sweepCSV)
	out, _ := run(t, "-mode", "sweep", "-format", "csv", "-group", "stride,threads", "-target", "GiB/s", "-where", "threads=1", in)
	want := "stride,threads,mean_GiB/s,std_GiB/s,count\n1,1,26,1.4142135623730951,2\n"
	if d := diff.Diff(want, out); d != "" {
		t.Errorf("output differs:\n%s", d)
	}

	var buf bytes.Buffer
	if err := microstat(&buf, &buf, []string{"-mode", "sweep", "-where", "threads=8", in}); err == nil {
		t.Errorf("empty -where selection succeeded")
	}
}

func TestCache(t *testing.T) {
	in := writeFile(t, "l1.csv", "ws_KiB,stride,pattern,repeats,cycles,bytes\nws_KiB=32,stride=1,pattern=0,repeats=10,cycles=3000000,bytes=1048576\n")
	out, _ := run(t, "-mode", "cache", "-format", "csv", "-target", "time_s", in)
	want := "ws_KiB,stride,pattern,mean_time_s,std_time_s,count\n32,1,0,0.001,,1\n"
	if d := diff.Diff(want, out); d != "" {
		t.Errorf("output differs:\n%s", d)
	}
}

func TestFio(t *testing.T) {
	in := writeFile(t, "rwmix_qd32.json", fioJSON)
	out, errs := run(t, "-mode", "fio", in)
	for _, want := range []string{
		"## Jobs by queue depth",
		"## Read/write mixes",
		"| rwmix_qd32.json | R70W30 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// The W100 job has a bad iodepth.
	if errs == "" {
		t.Errorf("no warning for bad iodepth")
	}
}

func TestArchive(t *testing.T) {
	in := writeFile(t, "kernels.csv", kernelCSV)
	dbPath := filepath.Join(t.TempDir(), "results.db")
	run(t, "-format", "csv", "-db", "sqlite3:"+dbPath, "-label", "nightly", in)

	d, err := db.OpenSQL("sqlite3", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	ctx := context.Background()
	runs, err := d.Runs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Label != "nightly" {
		t.Fatalf("got runs %+v", runs)
	}
	stats, err := d.QueryStats(ctx, runs[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 || stats[0].Key.Get("variant").Str != "scalar" {
		t.Errorf("got stats %+v", stats)
	}
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	if err := microstat(&buf, &buf, nil); err != flag.ErrHelp {
		t.Errorf("no inputs: got %v, want flag.ErrHelp", err)
	}
	if err := microstat(&buf, &buf, []string{"-mode", "gpu", "x.csv"}); err == nil || !strings.Contains(err.Error(), "unknown mode") {
		t.Errorf("bad mode: got %v", err)
	}
	if err := microstat(&buf, &buf, []string{"-roofline", "10", "x.csv"}); err == nil {
		t.Errorf("bad -roofline accepted")
	}
}
