// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Microstat normalizes and aggregates microbenchmark results.
//
// Usage:
//
//	microstat [flags] inputs...
//
// The -mode flag selects the kind of input:
//
//	kernel  SIMD kernel timings (kernel, variant, dtype, N, time_ms, gflops, cpe)
//	sweep   memory sweep runs (N_bytes, stride, repeats, read%=, threads, time=, GiB/s=)
//	cache   cycle-counted cache and TLB sweeps (ws_KiB, stride, pattern, repeats, cycles, bytes)
//	fio     fio JSON reports written with --output-format=json
//
// All modes but fio read CSV files with a header row. Field values may
// carry a "name=" prefix, as in "stride=64", which is stripped. In
// every mode an input of the form label=path records label in the
// ".file" field, and "-" reads standard input.
//
// Records are grouped by the -group fields and each -target field is
// summarized by its mean and sample standard deviation. Groups are
// printed sorted by key. The -where flag keeps only records whose
// fields equal the given values, as in
//
//	microstat -mode sweep -where threads=1,read_pct=100 run*.csv
//
// In kernel mode, Markdown output also includes the SIMD speedup of
// each kernel, and with -roofline a classification of each kernel's
// achieved throughput against the given machine limits:
//
//	microstat -roofline 25,200 results.csv
//
// In fio mode, Markdown output also includes the per-job rows sorted
// by queue depth and the combined read/write mix results.
//
// The -db flag archives the aggregated groups in a SQL database, as in
// -db sqlite3:results.db or -db mysql:user@tcp(host)/microperf.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"golang.org/x/net/context"

	"golang.org/x/microperf/aggregate"
	"golang.org/x/microperf/benchfmt"
	"golang.org/x/microperf/benchunit"
	"golang.org/x/microperf/derive"
	"golang.org/x/microperf/fio"
	"golang.org/x/microperf/internal/mdtab"
	"golang.org/x/microperf/record"
	"golang.org/x/microperf/roofline"
	"golang.org/x/microperf/storage/db"
	_ "golang.org/x/microperf/storage/db/sqlite3"
)

func main() {
	log.SetPrefix("microstat: ")
	log.SetFlags(0)
	if err := microstat(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if err != flag.ErrHelp {
			log.Print(err)
		}
		os.Exit(2)
	}
}

// A mode describes how to read one kind of input.
type mode struct {
	group, targets []string
	read           func(c *config, paths []string) (*input, error)
}

var modes = map[string]mode{
	"kernel": {
		group:   []string{"kernel", "variant", "dtype", "N"},
		targets: []string{"time_ms", "gflops", derive.FieldGFLOPs, derive.FieldThroughput},
		read:    readKernel,
	},
	"sweep": {
		group:   []string{"N_bytes", "stride", "repeats", "read_pct", "threads"},
		targets: []string{"time", "GiB/s"},
		read:    readSweep,
	},
	"cache": {
		group:   []string{"ws_KiB", "stride", "pattern"},
		targets: []string{"cycles", derive.FieldTimeS, derive.FieldThroughput, derive.FieldNsPerByte},
		read:    readCache,
	},
	"fio": {
		group:   []string{"kind", "jobname", "bs"},
		targets: []string{"iops", "bw_MiBps", "lat_avg_us", "lat_p99_us"},
		read:    readFio,
	},
}

type config struct {
	clock     derive.Clock
	extractor fio.Extractor
	roof      *roofline.Classifier
	log       *log.Logger
}

// An input is the normalized records of one invocation, plus any
// mode-specific tables.
type input struct {
	rows   []record.Fields
	extras []extra
}

type extra struct {
	title string
	tab   *mdtab.Table
}

func microstat(w, wErr io.Writer, args []string) error {
	flags := flag.NewFlagSet("microstat", flag.ContinueOnError)
	flags.SetOutput(wErr)
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "usage: microstat [flags] inputs...\n")
		flags.PrintDefaults()
	}
	flagMode := flags.String("mode", "kernel", "input `kind`: kernel, sweep, cache, or fio")
	flagFormat := flags.String("format", "md", "print results in `format`: md, csv, or json")
	flagGroup := flags.String("group", "", "group records by comma-separated `fields` (default depends on -mode)")
	flagTarget := flags.String("target", "", "summarize comma-separated `fields` (default depends on -mode)")
	flagWhere := flags.String("where", "", "keep only records matching comma-separated `field=value` conditions")
	flagGHz := flags.Float64("ghz", derive.DefaultClock.GHz, "convert cycles to seconds at `GHz`")
	flagTolerance := flags.Float64("tolerance", fio.DefaultTolerance, "match fio percentile labels within `tol`")
	flagRoofline := flags.String("roofline", "", "classify kernels against `bw,peak` in GB/s and GFLOP/s")
	flagMargin := flags.Float64("margin", roofline.DefaultMargin, "treat points within `margin` of a roof as reaching it")
	flagDB := flags.String("db", "", "archive results in `driver:dsn`")
	flagLabel := flags.String("label", "", "label the archived run")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if flags.NArg() == 0 {
		flags.Usage()
		return flag.ErrHelp
	}

	m, ok := modes[*flagMode]
	if !ok {
		return fmt.Errorf("unknown mode %q", *flagMode)
	}
	group, targets := m.group, m.targets
	if *flagGroup != "" {
		group = strings.Split(*flagGroup, ",")
	}
	if *flagTarget != "" {
		targets = strings.Split(*flagTarget, ",")
	}
	conds, err := parseWhere(*flagWhere)
	if err != nil {
		return err
	}

	c := &config{
		clock:     derive.Clock{GHz: *flagGHz},
		extractor: fio.Extractor{Tolerance: *flagTolerance},
		log:       log.New(wErr, "microstat: ", 0),
	}
	if *flagRoofline != "" {
		b, err := parseBound(*flagRoofline)
		if err != nil {
			return err
		}
		c.roof = &roofline.Classifier{Bound: b, Margin: *flagMargin}
	}

	in, err := m.read(c, flags.Args())
	if err != nil {
		return err
	}
	rows := in.rows
	if len(conds) > 0 {
		if rows, err = aggregate.Filter(rows, conds...); err != nil {
			return fmt.Errorf("-where %s: %w", *flagWhere, err)
		}
	}
	stats, err := aggregate.Aggregate(rows, group, targets)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch *flagFormat {
	case "csv":
		err = aggregate.WriteCSV(&buf, stats, group, targets)
	case "json":
		err = aggregate.WriteJSON(&buf, stats, group, targets)
	case "md":
		statsTable(stats, group, targets).Format(&buf)
		for _, x := range in.extras {
			if x.tab.Len() == 0 {
				continue
			}
			fmt.Fprintf(&buf, "\n## %s\n\n", x.title)
			x.tab.Format(&buf)
		}
	default:
		return fmt.Errorf("unknown format %q", *flagFormat)
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return err
	}

	if *flagDB != "" {
		label := *flagLabel
		if label == "" {
			label = *flagMode
		}
		if err := archive(*flagDB, label, stats, targets); err != nil {
			return fmt.Errorf("archiving results: %w", err)
		}
	}
	return nil
}

// parseWhere parses field=value conditions. Values that parse as
// numbers match numeric fields or the same text in a category, all
// others match categories.
func parseWhere(s string) ([]aggregate.Cond, error) {
	if s == "" {
		return nil, nil
	}
	var conds []aggregate.Cond
	for _, kv := range strings.Split(s, ",") {
		i := strings.Index(kv, "=")
		if i <= 0 {
			return nil, fmt.Errorf("bad -where condition %q: want field=value", kv)
		}
		field, val := kv[:i], kv[i+1:]
		if x, err := strconv.ParseFloat(val, 64); err == nil {
			conds = append(conds, aggregate.Any(aggregate.EqNum(field, x), aggregate.EqStr(field, val)))
		} else {
			conds = append(conds, aggregate.EqStr(field, val))
		}
	}
	return conds, nil
}

func parseBound(s string) (roofline.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return roofline.Bound{}, fmt.Errorf("bad -roofline %q: want bw,peak", s)
	}
	var v [2]float64
	for i, p := range parts {
		x, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return roofline.Bound{}, fmt.Errorf("bad -roofline %q: %v", s, err)
		}
		v[i] = x
	}
	b := roofline.GB(v[0], v[1])
	return b, b.Validate()
}

// readCSV calls fn for each record in the CSV files paths, logging
// syntax errors and warnings.
func readCSV(c *config, paths []string, fn func(*benchfmt.Record) []error) error {
	files := benchfmt.Files{Paths: paths, AllowStdin: true, AllowLabels: true}
	for files.Scan() {
		switch e := files.Entry().(type) {
		case *benchfmt.SyntaxError:
			c.log.Print(e)
		case *benchfmt.Record:
			for _, w := range fn(e) {
				c.log.Print(w)
			}
		}
	}
	return files.Err()
}

func readKernel(c *config, paths []string) (*input, error) {
	var recs []record.Kernel
	in := new(input)
	err := readCSV(c, paths, func(r *benchfmt.Record) []error {
		k, warnings := record.ParseKernel(r)
		f := k.Fields()
		m, err := derive.Kernel(k)
		if err != nil {
			file, line := r.Pos()
			warnings = append(warnings, fmt.Errorf("%s:%d: %w", file, line, err))
		} else {
			m.Apply(f)
		}
		recs = append(recs, k)
		in.rows = append(in.rows, f)
		return warnings
	})
	if err != nil {
		return nil, err
	}
	in.extras = append(in.extras, extra{"SIMD speedup", speedupTable(recs)})
	if c.roof != nil {
		tab, warnings := rooflineTable(c.roof, recs)
		for _, w := range warnings {
			c.log.Print(w)
		}
		in.extras = append(in.extras, extra{"Roofline", tab})
	}
	return in, nil
}

// kernelTypes returns the distinct (kernel, dtype) pairs in recs, in
// Configs order.
func kernelTypes(recs []record.Kernel) []derive.Config {
	var out []derive.Config
	seen := make(map[derive.Config]bool)
	for _, cfg := range derive.Configs(recs) {
		cfg.Variant = ""
		if !seen[cfg] {
			seen[cfg] = true
			out = append(out, cfg)
		}
	}
	return out
}

// fieldUnits gives the units of well-known fields for display.
// Fields not listed are printed as is.
var fieldUnits = map[string]string{
	"time":                 "sec",
	"time_ms":              "ms",
	derive.FieldTimeS:      "sec",
	"GiB/s":                "GiB/s",
	derive.FieldThroughput: "GiB/s",
	derive.FieldNsPerByte:  "ns/B",
	"gflops":               "GFLOP/s",
	derive.FieldGFLOPs:     "GFLOP/s",
	"cycles":               "",
	"iops":                 "",
	"bw_MiBps":             "MiB/s",
	"lat_avg_us":           "us",
	"lat_p50_us":           "us",
	"lat_p95_us":           "us",
	"lat_p99_us":           "us",
	"lat_p99.9_us":         "us",
}

// statsTable lays out stats like aggregate.WriteCSV, but with each
// target column converted to base units and given a common scale.
func statsTable(stats []aggregate.Stat, group, targets []string) *mdtab.Table {
	header := aggregate.Header(group, targets)
	n := len(group)
	cols := make([][]string, len(stats))
	for i := range stats {
		cols[i] = stats[i].Row(targets)
	}
	for ti, t := range targets {
		unit, ok := fieldUnits[t]
		if !ok {
			continue
		}
		_, tidied := benchunit.Tidy(1, unit)
		if tidied != "" {
			header[n+2*ti] += " (" + tidied + ")"
			header[n+2*ti+1] += " (" + tidied + ")"
		}
		var vals []float64
		for i := range stats {
			s := stats[i].Values[t]
			for _, x := range []record.Num{s.Mean, s.StdDev} {
				if x.Valid {
					v, _ := benchunit.Tidy(x.Value, unit)
					vals = append(vals, v)
				}
			}
		}
		scaler := benchunit.CommonScale(vals, benchunit.ClassOf(unit))
		for i := range stats {
			s := stats[i].Values[t]
			for k, x := range []record.Num{s.Mean, s.StdDev} {
				cell := ""
				if x.Valid {
					v, _ := benchunit.Tidy(x.Value, unit)
					cell = scaler.Format(v)
				}
				cols[i][n+2*ti+k] = cell
			}
		}
	}
	tab := mdtab.New(header...).Right(header[n:]...)
	for _, row := range cols {
		tab.Row(row...)
	}
	return tab
}

func speedupTable(recs []record.Kernel) *mdtab.Table {
	tab := mdtab.New("kernel", "dtype", "N", "scalar ms", "simd ms", "±", "speedup", "delta", "p").
		Right("N", "scalar ms", "simd ms", "speedup", "delta")
	for _, cfg := range kernelTypes(recs) {
		for _, p := range derive.Speedup(recs, cfg.Kernel, cfg.DType) {
			delta, pval := "", ""
			if p.Comparison != nil {
				delta = p.Comparison.FormatDelta(p.ScalarMs, p.SIMDMs)
				pval = "(" + p.Comparison.String() + ")"
			}
			tab.Row(cfg.Kernel, cfg.DType, fmtFloat(p.N), fmtFloat(p.ScalarMs), fmtFloat(p.SIMDMs), p.SIMDCI.PctRangeString(), fmtNum(p.Speedup), delta, pval)
		}
	}
	return tab
}

func rooflineTable(c *roofline.Classifier, recs []record.Kernel) (*mdtab.Table, []error) {
	var warnings []error
	tab := mdtab.New("kernel", "dtype", "AI", "N", "GFLOP/s", "ceiling", "class").
		Right("AI", "N", "GFLOP/s", "ceiling")
	for _, cfg := range kernelTypes(recs) {
		res, err := c.Analyze(recs, cfg.Kernel, cfg.DType)
		if errors.Is(err, record.ErrEmpty) {
			continue
		} else if err != nil {
			warnings = append(warnings, err)
			continue
		}
		for i, p := range res.Points {
			ceiling := c.Ceiling(p.AI)
			tab.Row(res.Kernel, res.DType, fmtFloat(p.AI), fmtFloat(res.N[i]), fmtFloat(p.Achieved), fmtFloat(ceiling), p.Class.String())
		}
	}
	return tab, warnings
}

func readSweep(c *config, paths []string) (*input, error) {
	in := new(input)
	err := readCSV(c, paths, func(r *benchfmt.Record) []error {
		s, warnings := record.ParseSweep(r)
		in.rows = append(in.rows, s.Fields())
		return warnings
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

func readCache(c *config, paths []string) (*input, error) {
	in := new(input)
	err := readCSV(c, paths, func(r *benchfmt.Record) []error {
		cr, warnings := record.ParseCache(r)
		f := cr.Fields()
		derive.Cache(cr, c.clock).Apply(f)
		in.rows = append(in.rows, f)
		return warnings
	})
	if err != nil {
		return nil, err
	}
	return in, nil
}

func readFio(c *config, paths []string) (*input, error) {
	in := new(input)
	var all []fio.Row
	mixes := mdtab.New("file", "job", "read MiB/s", "write MiB/s", "total MiB/s", "IOPS", "mean lat us", "p99 lat us").
		Right("read MiB/s", "write MiB/s", "total MiB/s", "IOPS", "mean lat us", "p99 lat us")
	files := benchfmt.Files{Paths: paths, AllowStdin: true, AllowLabels: true}
	for _, src := range files.Inputs() {
		data, err := readAll(src)
		if err != nil {
			return nil, err
		}
		rep, err := fio.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", src.Path, err)
		}
		// The job kind comes from the file name, even when labeled.
		rows, warnings := c.extractor.Rows(rep, src.Path)
		for _, w := range warnings {
			c.log.Printf("%s: %v", src.Path, w)
		}
		name := filepath.Base(src.Label)
		for i := range rows {
			rows[i].File = name
			f := rows[i].Fields()
			f.SetStr(".file", src.Label)
			in.rows = append(in.rows, f)
		}
		all = append(all, rows...)
		for _, m := range c.extractor.Mixes(rep, nil) {
			mib := func(b float64) string { return fmtFloat(b / (1 << 20)) }
			mixes.Row(name, m.Name, mib(m.Read.BWBytes), mib(m.Write.BWBytes), mib(m.TotalBW),
				fmtFloat(m.TotalIOPS), fmtNum(m.WeightedMeanLat.Div(record.Some(1000))), fmtNum(m.TailLat.Div(record.Some(1000))))
		}
	}

	fio.SortByQueueDepth(all)
	tail := []string{"job", "kind", "bs", "qd", "IOPS", "MiB/s", "avg us"}
	for _, p := range fio.TailPercentiles {
		tail = append(tail, "p"+strconv.FormatFloat(p, 'g', -1, 64)+" us")
	}
	rowTab := mdtab.New(tail...).Right(tail[3:]...)
	for i := range all {
		r := &all[i]
		cells := []string{r.Job, r.Kind.String(), r.BS, fmtNum(r.QD), fmtFloat(r.IOPS), fmtFloat(r.BWMiBps), fmtNum(r.LatAvgUs)}
		for _, t := range r.Tail {
			cells = append(cells, fmtNum(t))
		}
		rowTab.Row(cells...)
	}
	in.extras = append(in.extras, extra{"Jobs by queue depth", rowTab}, extra{"Read/write mixes", mixes})
	return in, nil
}

func readAll(src benchfmt.Input) ([]byte, error) {
	r, err := src.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func archive(dbFlag, label string, stats []aggregate.Stat, targets []string) error {
	i := strings.Index(dbFlag, ":")
	if i < 0 {
		return fmt.Errorf("bad -db %q: want driver:dsn", dbFlag)
	}
	d, err := db.OpenSQL(dbFlag[:i], dbFlag[i+1:])
	if err != nil {
		return err
	}
	defer d.Close()
	ctx := context.Background()
	run, err := d.NewRun(ctx, label)
	if err != nil {
		return err
	}
	return run.InsertStats(ctx, stats, targets)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', 4, 64)
}

func fmtNum(n record.Num) string {
	if !n.Valid {
		return "-"
	}
	return fmtFloat(n.Value)
}
