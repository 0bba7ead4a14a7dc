// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package molly is an in-process relational engine: it parses a
// SQL-like dialect, evaluates queries against in-memory tables, and
// offers transactional control with nested savepoints and rollback of
// both data and schema changes. The one public entry point is
// Database.RunSQL, which tokenizes, parses and executes a batch of
// statements in source order and returns one Result per statement.
package molly

import (
	"github.com/dgraph-io/ristretto"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	uuid "github.com/satori/go.uuid"

	"github.com/mollydb/molly/cnf"
	"github.com/mollydb/molly/exec"
	"github.com/mollydb/molly/log"
	"github.com/mollydb/molly/parser"
	"github.com/mollydb/molly/store"
)

// Result is the outcome of one statement: result rows for a SELECT,
// nil Rows for DDL/DML that executed cleanly, or an error. Err's text
// is prefixed "Parsing Error:" or "Execution Error with statement
// starting on line N", and errors.Cause recovers the underlying typed
// error for callers that want to inspect it.
type Result struct {
	Rows *Rows
	Err  error
}

// Database is one in-memory MollyDB instance. It is not safe for
// concurrent use: each RunSQL call assumes exclusive logical ownership
// of the database for its duration.
type Database struct {
	id    string
	opts  *cnf.Options
	exec  *exec.Executor
	cache *ristretto.Cache
}

// Open returns a Database configured by opts; a nil opts means
// cnf.Defaults. The options configure logging and the parse cache
// only, never execution semantics.
func Open(opts *cnf.Options) (*Database, error) {

	if opts == nil {
		opts = cnf.Defaults()
	}

	log.SetLevel(opts.Logging.Level)
	log.SetOutput(opts.Logging.Output)
	log.SetFormat(opts.Logging.Format)

	db := &Database{
		id:   uuid.NewV4().String(),
		opts: opts,
		exec: exec.New(store.NewDatabase()),
	}

	if opts.Cache.Enabled {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: 1e4,
			MaxCost:     opts.Cache.Size,
			BufferItems: 64,
		})
		if err != nil {
			return nil, err
		}
		db.cache = cache
	}

	return db, nil

}

// New returns a Database with default options, for callers that have
// no configuration to pass. It is the usual constructor in tests.
func New() *Database {
	db, err := Open(nil)
	if err != nil {
		panic(err)
	}
	return db
}

// Close releases the parse cache. The table data itself needs no
// teardown; dropping the last reference to the Database frees it.
func (d *Database) Close() {
	if d.cache != nil {
		d.cache.Close()
		d.cache = nil
	}
}

// RunSQL executes every statement in src in source order and returns
// one Result per statement. A failed statement is reported in its slot
// but does not stop the statements after it; a parse error consumes
// tokens up to the next semicolon and parsing resumes there.
func (d *Database) RunSQL(src string) []Result {

	call := xid.New().String()
	logger := log.WithFields(map[string]interface{}{
		"db":   d.id,
		"call": call,
	})

	parsed := d.parse(src)
	out := make([]Result, 0, len(parsed))

	for _, r := range parsed {

		if r.Err != nil {
			logger.Debugf("parse failed on line %d: %v", r.Line, r.Err)
			out = append(out, Result{Err: errors.Wrap(r.Err, "Parsing Error")})
			continue
		}

		rows, err := d.exec.Exec(r.Stmt)
		if err != nil {
			logger.Debugf("statement on line %d failed: %v", r.Line, err)
			out = append(out, Result{Err: errors.Wrapf(err,
				"Execution Error with statement starting on line %d\nError", r.Line)})
			continue
		}

		res := Result{}
		if rows != nil {
			res.Rows = &Rows{Columns: rows.Columns, Data: rows.Data}
			logger.Debugf("statement on line %d returned %d row(s)", r.Line, len(rows.Data))
		} else {
			logger.Debugf("statement on line %d ok", r.Line)
		}
		out = append(out, res)

	}

	return out

}

// parse tokenizes and parses src, memoizing the result per source
// text so a REPL re-running the same statement skips straight to
// execution. Parsed statements are never mutated by execution, so
// sharing them across calls is safe.
func (d *Database) parse(src string) []parser.Result {
	if d.cache != nil {
		if hit, ok := d.cache.Get(src); ok {
			if parsed, ok := hit.([]parser.Result); ok {
				return parsed
			}
		}
	}
	parsed := parser.Generate(src)
	if d.cache != nil {
		d.cache.Set(src, parsed, int64(len(src)))
	}
	return parsed
}
