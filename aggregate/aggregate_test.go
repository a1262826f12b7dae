// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package aggregate

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tidwall/gjson"

	"golang.org/x/microperf/record"
)

func row(g string, v record.Num) record.Fields {
	f := record.Fields{}
	f.SetStr("g", g)
	f.SetNum("v", v)
	return f
}

func TestAggregate(t *testing.T) {
	rows := []record.Fields{
		row("b", record.Some(5)),
		row("a", record.Some(10)),
		row("a", record.Some(20)),
	}
	stats, err := Aggregate(rows, []string{"g"}, []string{"v"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 2 {
		t.Fatalf("got %d groups, want 2", len(stats))
	}
	a, b := stats[0], stats[1]
	if a.Key.Get("g").Str != "a" || b.Key.Get("g").Str != "b" {
		t.Fatalf("groups out of order: %v, %v", a.Key, b.Key)
	}
	sa := a.Values["v"]
	if sa.Mean != record.Some(15) || sa.Count != 2 || math.Abs(sa.StdDev.Value-7.0710678) > 1e-7 {
		t.Errorf("group a = %+v", sa)
	}
	sb := b.Values["v"]
	if sb.Mean != record.Some(5) || sb.Count != 1 || sb.StdDev.Valid {
		t.Errorf("group b = %+v, want missing std", sb)
	}
	if a.Key.String() != "g:a" {
		t.Errorf("key string = %q", a.Key.String())
	}
}

func TestAggregateEmpty(t *testing.T) {
	stats, err := Aggregate(nil, []string{"g"}, []string{"v"})
	if err != nil || len(stats) != 0 {
		t.Errorf("got %v, %v for empty input", stats, err)
	}
}

func TestAggregateMissing(t *testing.T) {
	rows := []record.Fields{
		row("a", record.Some(1)),
		row("a", record.Missing),
		row("a", record.Some(3)),
		row("", record.Some(100)),
	}
	stats, err := Aggregate(rows, []string{"g"}, []string{"v"})
	if err != nil {
		t.Fatal(err)
	}
	if len(stats) != 1 {
		t.Fatalf("got %d groups, want 1", len(stats))
	}
	// The row with no valid target is dropped and the row with no
	// group key is left out.
	if s := stats[0].Values["v"]; stats[0].N != 2 || s.Count != 2 || s.Mean != record.Some(2) {
		t.Errorf("got N=%d %+v", stats[0].N, s)
	}

	_, err = Aggregate(rows, []string{"threads"}, []string{"v"})
	var mf *MissingFieldError
	if !errors.As(err, &mf) || mf.Field != "threads" {
		t.Errorf("got error %v, want MissingFieldError", err)
	}
}

func TestAggregateOrder(t *testing.T) {
	var rows []record.Fields
	for _, ws := range []float64{1024, 32, 256, 32} {
		for _, stride := range []float64{16, 2} {
			f := record.Fields{}
			f.SetNum("ws_KiB", record.Some(ws))
			f.SetNum("stride", record.Some(stride))
			f.SetNum("tp", record.Some(ws/stride))
			rows = append(rows, f)
		}
	}
	// A categorical "16" is distinct from the number 16.
	f := record.Fields{}
	f.SetNum("ws_KiB", record.Some(32))
	f.SetStr("stride", "16")
	f.SetNum("tp", record.Some(1))
	rows = append(rows, f)

	stats, err := Aggregate(rows, []string{"ws_KiB", "stride"}, []string{"tp"})
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, st := range stats {
		got = append(got, st.Key.String())
	}
	want := []string{
		"ws_KiB:32 stride:2", "ws_KiB:32 stride:16", "ws_KiB:32 stride:16",
		"ws_KiB:256 stride:2", "ws_KiB:256 stride:16",
		"ws_KiB:1024 stride:2", "ws_KiB:1024 stride:16",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got order %q, want %q", got, want)
	}
	if stats[2].Key.Values[1].IsNum || stats[1].N != 2 {
		t.Errorf("numeric 16 group should sort before categorical 16: %+v %+v", stats[1], stats[2])
	}
}

func TestFilter(t *testing.T) {
	rows := []record.Fields{row("a", record.Some(1)), row("b", record.Some(2)), row("a", record.Some(3))}
	got, err := Filter(rows, EqStr("g", "a"), EqNum("v", 3))
	if err != nil || len(got) != 1 || got[0].Num("v") != record.Some(3) {
		t.Errorf("Filter = %v, %v", got, err)
	}
	if _, err := Filter(rows, EqStr("g", "c")); err != record.ErrEmpty {
		t.Errorf("got error %v, want ErrEmpty", err)
	}
	// Numbers never match categories.
	if _, err := Filter(rows, EqNum("g", 1)); err != record.ErrEmpty {
		t.Errorf("got error %v, want ErrEmpty", err)
	}
	got, err = Filter(rows, Any(EqStr("g", "b"), EqNum("v", 3)))
	if err != nil || len(got) != 2 || got[0].Str("g") != "b" {
		t.Errorf("Filter(Any) = %v, %v", got, err)
	}
}

func TestWriteCSV(t *testing.T) {
	rows := []record.Fields{row("a", record.Some(10)), row("a", record.Some(20)), row("b", record.Some(5))}
	stats, err := Aggregate(rows, []string{"g"}, []string{"v"})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, stats, []string{"g"}, []string{"v"}); err != nil {
		t.Fatal(err)
	}
	want := "g,mean_v,std_v,count\na,15,7.0710678118654755,2\nb,5,,1\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}

	buf.Reset()
	if err := WriteJSON(&buf, stats, []string{"g"}, []string{"v"}); err != nil {
		t.Fatal(err)
	}
	js := buf.Bytes()
	if !gjson.ValidBytes(js) {
		t.Fatalf("invalid JSON: %s", js)
	}
	check := func(path string, want string) {
		t.Helper()
		if got := gjson.GetBytes(js, path).Raw; got != want {
			t.Errorf("%s = %s, want %s", path, got, want)
		}
	}
	if n := gjson.GetBytes(js, "#").Int(); n != 2 {
		t.Errorf("got %d objects, want 2", n)
	}
	check("0.g", `"a"`)
	check("0.mean_v", "15")
	check("0.count", "2")
	check("1.std_v", "null")
}

func TestWriteJSONEscapes(t *testing.T) {
	f := record.Fields{}
	f.SetStr("kernel", "dot")
	f.SetNum("lat_p99.9_us", record.Some(4))
	stats, err := Aggregate([]record.Fields{f}, []string{"kernel"}, []string{"lat_p99.9_us"})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, stats, []string{"kernel"}, []string{"lat_p99.9_us"}); err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(buf.Bytes(), `0.mean_lat_p99\.9_us`).Float(); got != 4 {
		t.Errorf("escaped field = %v in %s", got, buf.Bytes())
	}
}

func TestCountFirstTarget(t *testing.T) {
	var rows []record.Fields
	for i, v := range []record.Num{record.Some(1), record.Missing, record.Missing} {
		f := record.Fields{}
		f.SetStr("g", "a")
		f.SetNum("time", v)
		f.SetNum("bw", record.Some(float64(10*(i+1))))
		rows = append(rows, f)
	}
	targets := []string{"time", "bw"}
	stats, err := Aggregate(rows, []string{"g"}, targets)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, stats, []string{"g"}, targets); err != nil {
		t.Fatal(err)
	}
	// The mean time is over one value, so count is 1 though all
	// three records have a bandwidth.
	want := "g,mean_time,std_time,mean_bw,std_bw,count\na,1,,20,10,1\n"
	if got := buf.String(); got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if stats[0].N != 3 {
		t.Errorf("N = %d, want 3", stats[0].N)
	}
	if n := stats[0].Count(nil); n != 3 {
		t.Errorf("Count with no targets = %d, want 3", n)
	}

	buf.Reset()
	if err := WriteJSON(&buf, stats, []string{"g"}, targets); err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(buf.Bytes(), "0.count").Int(); got != 1 {
		t.Errorf("JSON count = %d, want 1", got)
	}
}
