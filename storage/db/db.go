// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package db archives aggregated microbenchmark statistics in a SQL
// database, where a visualization layer can read them back.
package db

import (
	"bytes"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"golang.org/x/net/context"

	"golang.org/x/microperf/aggregate"
	"golang.org/x/microperf/record"
)

// DB is a high-level interface to a statistics archive. It's safe for
// concurrent use by multiple goroutines.
type DB struct {
	sql *sql.DB // underlying database connection
	// prepared statements
	insertRun  *sql.Stmt
	insertStat *sql.Stmt
}

// OpenSQL creates a DB backed by a SQL database. The parameters are
// the same as the parameters for sql.Open. Only mysql and sqlite3 are
// explicitly supported; other database engines will receive MySQL
// query syntax which may or may not be compatible.
func OpenSQL(driverName, dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if hook := openHooks[driverName]; hook != nil {
		if err := hook(db); err != nil {
			db.Close()
			return nil, err
		}
	}
	d := &DB{sql: db}
	if err := d.createTables(driverName); err != nil {
		db.Close()
		return nil, err
	}
	if err := d.prepareStatements(driverName); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

var openHooks = make(map[string]func(*sql.DB) error)

// RegisterOpenHook registers a hook to be called after opening a connection to driverName.
// This is used by the sqlite3 package to configure its connections.
// It must be called from an init function.
func RegisterOpenHook(driverName string, hook func(*sql.DB) error) {
	openHooks[driverName] = hook
}

// createTmpl is the template used to prepare the CREATE statements
// for the database. It is evaluated with . as a map containing one
// entry whose key is the driver name.
var createTmpl = template.Must(template.New("create").Parse(`
CREATE TABLE IF NOT EXISTS Runs (
	RunID {{if .sqlite3}}INTEGER PRIMARY KEY AUTOINCREMENT{{else}}SERIAL PRIMARY KEY AUTO_INCREMENT{{end}},
	Label VARCHAR(255),
	Created VARCHAR(32)
);
CREATE TABLE IF NOT EXISTS Stats (
	RunID BIGINT UNSIGNED,
	StatID BIGINT UNSIGNED,
	Target VARCHAR(255),
	Mean DOUBLE,
	StdDev DOUBLE,
	Median DOUBLE,
	Count BIGINT,
	N BIGINT,
	PRIMARY KEY (RunID, StatID, Target),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS StatKeys (
	RunID BIGINT UNSIGNED,
	StatID BIGINT UNSIGNED,
	Pos INTEGER,
	Name VARCHAR(255),
	Value VARCHAR(8192),
	IsNum BOOLEAN,
{{if not .sqlite3}}
	Index (Name(100), Value(100)),
{{end}}
	PRIMARY KEY (RunID, StatID, Pos),
	FOREIGN KEY (RunID) REFERENCES Runs(RunID) ON UPDATE CASCADE ON DELETE CASCADE
);
{{if .sqlite3}}
CREATE INDEX IF NOT EXISTS StatKeysNameValue ON StatKeys(Name, Value);
{{end}}
`))

// createTables creates any missing tables on the connection in
// db.sql. driverName is the same driver name passed to sql.Open and
// is used to select the correct syntax.
func (db *DB) createTables(driverName string) error {
	var buf bytes.Buffer
	if err := createTmpl.Execute(&buf, map[string]bool{driverName: true}); err != nil {
		return err
	}
	for _, q := range strings.Split(buf.String(), ";") {
		if strings.TrimSpace(q) == "" {
			continue
		}
		if _, err := db.sql.Exec(q); err != nil {
			return fmt.Errorf("create table: %v", err)
		}
	}
	return nil
}

// prepareStatements calls db.sql.Prepare on reusable SQL statements.
func (db *DB) prepareStatements(driverName string) error {
	var err error
	db.insertRun, err = db.sql.Prepare("INSERT INTO Runs(Label, Created) VALUES (?, ?)")
	if err != nil {
		return err
	}
	db.insertStat, err = db.sql.Prepare("INSERT INTO Stats(RunID, StatID, Target, Mean, StdDev, Median, Count, N) VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	return nil
}

// now is a hook for testing
var now = time.Now

// A Run is one archived invocation of the aggregator.
type Run struct {
	ID      int64
	Label   string
	Created time.Time

	// statid is the index of the next group to insert.
	statid int64
	db     *DB
}

// NewRun records a new run with the given label.
func (db *DB) NewRun(ctx context.Context, label string) (*Run, error) {
	created := now().UTC().Truncate(time.Second)
	res, err := db.insertRun.ExecContext(ctx, label, created.Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &Run{ID: id, Label: label, Created: created, db: db}, nil
}

func nullable(n record.Num) sql.NullFloat64 {
	return sql.NullFloat64{Float64: n.Value, Valid: n.Valid}
}

func fromNullable(n sql.NullFloat64) record.Num {
	if !n.Valid {
		return record.Missing
	}
	return record.Some(n.Float64)
}

// InsertStats archives stats in the run in a single transaction.
// Summaries of each of targets are stored; missing values are stored
// as NULL.
func (r *Run) InsertStats(ctx context.Context, stats []aggregate.Stat, targets []string) (err error) {
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	insertStat := tx.StmtContext(ctx, r.db.insertStat)
	id := r.statid
	for _, st := range stats {
		for _, t := range targets {
			s := st.Values[t]
			if _, err := insertStat.ExecContext(ctx, r.ID, id, t, nullable(s.Mean), nullable(s.StdDev), nullable(s.Median), s.Count, st.N); err != nil {
				return err
			}
		}
		var args []interface{}
		for i, name := range st.Key.Names {
			v := st.Key.Values[i]
			args = append(args, r.ID, id, i, name, v.String(), v.IsNum)
		}
		if len(args) > 0 {
			query := "INSERT INTO StatKeys(RunID, StatID, Pos, Name, Value, IsNum) VALUES " + strings.Repeat("(?, ?, ?, ?, ?, ?), ", len(args)/6)
			query = strings.TrimSuffix(query, ", ")
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}
		id++
	}
	r.statid = id
	return nil
}

// QueryStats returns the stats archived in run runID, in insertion
// order.
func (db *DB) QueryStats(ctx context.Context, runID int64) ([]aggregate.Stat, error) {
	byID := make(map[int64]*aggregate.Stat)
	get := func(id int64) *aggregate.Stat {
		st := byID[id]
		if st == nil {
			st = &aggregate.Stat{Values: make(map[string]aggregate.Summary)}
			byID[id] = st
		}
		return st
	}

	rows, err := db.sql.QueryContext(ctx, "SELECT StatID, Name, Value, IsNum FROM StatKeys WHERE RunID = ? ORDER BY StatID, Pos", runID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var id int64
		var name, value string
		var isNum bool
		if err := rows.Scan(&id, &name, &value, &isNum); err != nil {
			rows.Close()
			return nil, err
		}
		v := record.StrValue(value)
		if isNum {
			x, err := strconv.ParseFloat(value, 64)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("stat %d key %s: %v", id, name, err)
			}
			v = record.NumValue(record.Some(x))
		}
		st := get(id)
		st.Key.Names = append(st.Key.Names, name)
		st.Key.Values = append(st.Key.Values, v)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = db.sql.QueryContext(ctx, "SELECT StatID, Target, Mean, StdDev, Median, Count, N FROM Stats WHERE RunID = ?", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var target string
		var mean, std, median sql.NullFloat64
		var count, n int
		if err := rows.Scan(&id, &target, &mean, &std, &median, &count, &n); err != nil {
			return nil, err
		}
		st := get(id)
		st.N = n
		st.Values[target] = aggregate.Summary{
			Mean:   fromNullable(mean),
			StdDev: fromNullable(std),
			Median: fromNullable(median),
			Count:  count,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	stats := make([]aggregate.Stat, len(ids))
	for i, id := range ids {
		stats[i] = *byID[id]
	}
	return stats, nil
}

// Runs returns the archived runs, oldest first.
func (db *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := db.sql.QueryContext(ctx, "SELECT RunID, Label, Created FROM Runs ORDER BY RunID")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &r.Label, &created); err != nil {
			return nil, err
		}
		if r.Created, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("run %d: %v", r.ID, err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// CountRuns returns the number of archived runs.
func (db *DB) CountRuns(ctx context.Context) (int, error) {
	var n int
	err := db.sql.QueryRowContext(ctx, "SELECT COUNT(*) FROM Runs").Scan(&n)
	return n, err
}

// DeleteRun removes run runID and its stats.
func (db *DB) DeleteRun(ctx context.Context, runID int64) (err error) {
	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()
	for _, q := range []string{
		"DELETE FROM StatKeys WHERE RunID = ?",
		"DELETE FROM Stats WHERE RunID = ?",
		"DELETE FROM Runs WHERE RunID = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, runID); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connections, releasing any open resources.
func (db *DB) Close() error {
	if err := db.insertRun.Close(); err != nil {
		return err
	}
	if err := db.insertStat.Close(); err != nil {
		return err
	}
	return db.sql.Close()
}
