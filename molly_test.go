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

package molly

import (
	"fmt"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// flat executes src and returns every result row of the final
// statement as native Go values, failing the test on any error.
func flat(db *Database, src string) []map[string]interface{} {
	results := db.RunSQL(src)
	So(results, ShouldNotBeEmpty)
	for _, r := range results {
		So(r.Err, ShouldBeNil)
	}
	last := results[len(results)-1]
	So(last.Rows, ShouldNotBeNil)
	return last.Rows.Maps()
}

func TestRunSQL(t *testing.T) {

	Convey("DDL and DML return no rows, SELECT returns rows", t, func() {
		db := New()
		defer db.Close()

		results := db.RunSQL(`
			CREATE TABLE t (a INTEGER);
			INSERT INTO t VALUES (1);
			SELECT * FROM t;
		`)
		So(len(results), ShouldEqual, 3)
		So(results[0].Err, ShouldBeNil)
		So(results[0].Rows, ShouldBeNil)
		So(results[1].Rows, ShouldBeNil)
		So(results[2].Rows, ShouldNotBeNil)
		So(results[2].Rows.Len(), ShouldEqual, 1)
	})

	Convey("An Integer column matches a Real literal spelling the same number", t, func() {
		db := New()
		defer db.Close()

		rows := flat(db, `
			CREATE TABLE t (a INTEGER);
			INSERT INTO t VALUES (1);
			SELECT * FROM t WHERE a = 1.0;
		`)
		So(rows, ShouldResemble, []map[string]interface{}{{"a": int64(1)}})
	})

	Convey("NULL orders before every non-NULL value", t, func() {
		db := New()
		defer db.Close()

		rows := flat(db, `
			CREATE TABLE t (a INTEGER);
			INSERT INTO t VALUES (1), (NULL), (2);
			SELECT a FROM t ORDER BY a ASC;
		`)
		So(rows, ShouldResemble, []map[string]interface{}{
			{"a": nil}, {"a": int64(1)}, {"a": int64(2)},
		})
	})

	Convey("A transaction's schema changes roll back with its data", t, func() {
		db := New()
		defer db.Close()

		rows := flat(db, `
			CREATE TABLE u (id INTEGER, name TEXT);
			INSERT INTO u VALUES (1, 'John');
			BEGIN;
			ALTER TABLE u ADD COLUMN age INTEGER;
			ALTER TABLE u DROP COLUMN name;
			ROLLBACK;
			SELECT * FROM u;
		`)
		So(rows, ShouldResemble, []map[string]interface{}{
			{"id": int64(1), "name": "John"},
		})
	})

	Convey("ROLLBACK TO a savepoint behaves as a no-op after it", t, func() {
		db := New()
		defer db.Close()

		rows := flat(db, `
			CREATE TABLE u (id INTEGER, name TEXT);
			BEGIN;
			SAVEPOINT s;
			INSERT INTO u VALUES (1, 'John');
			ROLLBACK TO s;
			INSERT INTO u VALUES (2, 'Jane');
			COMMIT;
			SELECT * FROM u;
		`)
		So(rows, ShouldResemble, []map[string]interface{}{
			{"id": int64(2), "name": "Jane"},
		})
	})

	Convey("Set operators follow INTERSECT-over-UNION precedence", t, func() {
		db := New()
		defer db.Close()

		rows := flat(db, `
			CREATE TABLE a (id INTEGER);
			CREATE TABLE b (id INTEGER);
			CREATE TABLE c (id INTEGER);
			INSERT INTO a VALUES (1);
			INSERT INTO b VALUES (2), (3);
			INSERT INTO c VALUES (3);
			SELECT id FROM a UNION SELECT id FROM b INTERSECT SELECT id FROM c ORDER BY id;
		`)
		So(rows, ShouldResemble, []map[string]interface{}{
			{"id": int64(1)}, {"id": int64(3)},
		})
	})

	Convey("LIMIT/OFFSET never return more than the limit", t, func() {
		db := New()
		defer db.Close()

		db.RunSQL(`
			CREATE TABLE t (a INTEGER);
			INSERT INTO t VALUES (1), (2), (3), (4), (5);
		`)

		for _, tc := range []struct {
			limit, offset, want int
		}{
			{2, 0, 2}, {2, 4, 1}, {2, 5, 0}, {9, 1, 4}, {0, 0, 0},
		} {
			results := db.RunSQL(fmt.Sprintf(
				"SELECT a FROM t ORDER BY a LIMIT %d OFFSET %d;", tc.limit, tc.offset))
			So(results[0].Err, ShouldBeNil)
			So(results[0].Rows.Len(), ShouldEqual, tc.want)
		}
	})
}

func TestErrors(t *testing.T) {

	Convey("A parse error is prefixed and does not hide later statements", t, func() {
		db := New()
		defer db.Close()

		results := db.RunSQL(`
			CREATE TABLE t (a INTEGER);
			SELEC a FROM t;
			SELECT * FROM t;
		`)
		So(len(results), ShouldEqual, 3)
		So(results[1].Err, ShouldNotBeNil)
		So(strings.HasPrefix(results[1].Err.Error(), "Parsing Error: "), ShouldBeTrue)
		So(results[2].Err, ShouldBeNil)
	})

	Convey("An execution error names the statement's starting line", t, func() {
		db := New()
		defer db.Close()

		results := db.RunSQL("SELECT * FROM missing;")
		So(len(results), ShouldEqual, 1)
		So(results[0].Err, ShouldNotBeNil)
		So(results[0].Err.Error(), ShouldEqual,
			"Execution Error with statement starting on line 1\nError: Table 'missing' does not exist")
	})

	Convey("Transaction misuse surfaces the transaction errors", t, func() {
		db := New()
		defer db.Close()

		results := db.RunSQL("COMMIT;")
		So(results[0].Err, ShouldNotBeNil)
		So(strings.Contains(results[0].Err.Error(), "No transaction is currently active"), ShouldBeTrue)

		results = db.RunSQL("BEGIN; BEGIN;")
		So(results[0].Err, ShouldBeNil)
		So(results[1].Err, ShouldNotBeNil)
		So(strings.Contains(results[1].Err.Error(), "Nested transactions are not allowed"), ShouldBeTrue)

		results = db.RunSQL("ROLLBACK; RELEASE sp;")
		So(results[0].Err, ShouldBeNil)
		So(strings.Contains(results[1].Err.Error(), "No transaction is currently active"), ShouldBeTrue)
	})

	Convey("A failed statement leaves the open transaction usable", t, func() {
		db := New()
		defer db.Close()

		results := db.RunSQL(`
			CREATE TABLE t (a INTEGER);
			BEGIN;
			INSERT INTO t VALUES (1);
			INSERT INTO missing VALUES (2);
			ROLLBACK;
			SELECT * FROM t;
		`)
		So(results[3].Err, ShouldNotBeNil)
		So(results[4].Err, ShouldBeNil)
		So(results[5].Rows.Len(), ShouldEqual, 0)
	})
}

func TestRowsDecoding(t *testing.T) {

	Convey("Scan copies a row into typed destinations", t, func() {
		db := New()
		defer db.Close()

		results := db.RunSQL(`
			CREATE TABLE people (id INTEGER, name TEXT, score REAL);
			INSERT INTO people VALUES (7, 'Ada', 99.5);
			SELECT * FROM people;
		`)
		rows := results[2].Rows

		var id int64
		var name string
		var score float64
		So(rows.Scan(0, &id, &name, &score), ShouldBeNil)
		So(id, ShouldEqual, 7)
		So(name, ShouldEqual, "Ada")
		So(score, ShouldEqual, 99.5)

		So(rows.Scan(1, &id, &name, &score), ShouldNotBeNil)
		So(rows.Scan(0, &id), ShouldNotBeNil)
	})

	Convey("Decode fills a struct slice matched by column name", t, func() {
		db := New()
		defer db.Close()

		results := db.RunSQL(`
			CREATE TABLE people (id INTEGER, name TEXT);
			INSERT INTO people VALUES (1, 'Ada'), (2, 'Brian');
			SELECT * FROM people ORDER BY id;
		`)

		var people []struct {
			ID   int64  `mapstructure:"id"`
			Name string `mapstructure:"name"`
		}
		So(results[2].Rows.Decode(&people), ShouldBeNil)
		So(len(people), ShouldEqual, 2)
		So(people[0].Name, ShouldEqual, "Ada")
		So(people[1].ID, ShouldEqual, 2)
	})
}

func TestParseCache(t *testing.T) {

	Convey("Re-running the same source hits the parse cache", t, func() {
		db := New()
		defer db.Close()

		db.RunSQL(`CREATE TABLE t (a INTEGER);`)

		src := "INSERT INTO t VALUES (1);"
		first := db.RunSQL(src)
		So(first[0].Err, ShouldBeNil)

		// ristretto admits asynchronously; force the buffered set
		// through before relying on a hit.
		db.cache.Wait()

		second := db.RunSQL(src)
		So(second[0].Err, ShouldBeNil)

		results := db.RunSQL("SELECT a FROM t;")
		So(results[0].Rows.Len(), ShouldEqual, 2)
	})
}
