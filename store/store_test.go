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

package store

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mollydb/molly/value"
)

func TestRowVersionStacks(t *testing.T) {

	Convey("ReplaceRow under a transaction keeps the pre-image below the top", t, func() {

		tbl := New("t", []Column{{Name: "n", Type: value.Integer}})
		pos := tbl.AppendRow(Row{value.NewInteger(1)})

		tbl.ReplaceRow(pos, Row{value.NewInteger(2)}, true)
		row, ok := tbl.RowAt(pos)
		So(ok, ShouldBeTrue)
		So(row[0].Int(), ShouldEqual, 2)

		tbl.PopRowVersion(pos)
		row, _ = tbl.RowAt(pos)
		So(row[0].Int(), ShouldEqual, 1)
	})

	Convey("ReplaceRow outside a transaction overwrites in place", t, func() {

		tbl := New("t", []Column{{Name: "n", Type: value.Integer}})
		pos := tbl.AppendRow(Row{value.NewInteger(1)})

		tbl.ReplaceRow(pos, Row{value.NewInteger(2)}, false)
		tbl.ReplaceRow(pos, Row{value.NewInteger(3)}, false)
		row, _ := tbl.RowAt(pos)
		So(row[0].Int(), ShouldEqual, 3)
	})

	Convey("MarkDeleted hides the row until its marker is popped", t, func() {

		tbl := New("t", []Column{{Name: "n", Type: value.Integer}})
		pos := tbl.AppendRow(Row{value.NewInteger(1)})

		tbl.MarkDeleted(pos)
		_, ok := tbl.RowAt(pos)
		So(ok, ShouldBeFalse)
		So(tbl.VisibleRows(), ShouldBeEmpty)
		So(tbl.Len(), ShouldEqual, 1)

		tbl.PopRowVersion(pos)
		_, ok = tbl.RowAt(pos)
		So(ok, ShouldBeTrue)
	})
}

func TestSchemaVersionStacks(t *testing.T) {

	Convey("Column snapshots stack and roll back", t, func() {

		tbl := New("t", []Column{{Name: "a", Type: value.Integer}})
		tbl.PushColumns([]Column{{Name: "a", Type: value.Integer}, {Name: "b", Type: value.Text}})
		So(len(tbl.Columns()), ShouldEqual, 2)

		tbl.RollbackColumns()
		So(len(tbl.Columns()), ShouldEqual, 1)
		So(tbl.Columns()[0].Name, ShouldEqual, "a")
	})

	Convey("Names stack and roll back", t, func() {

		tbl := New("old", nil)
		tbl.PushName("new")
		So(tbl.Name(), ShouldEqual, "new")

		tbl.RollbackName()
		So(tbl.Name(), ShouldEqual, "old")
	})

	Convey("AppendColumnToRows widens only the named positions", t, func() {

		tbl := New("t", []Column{{Name: "a", Type: value.Integer}})
		p0 := tbl.AppendRow(Row{value.NewInteger(1)})
		p1 := tbl.AppendRow(Row{value.NewInteger(2)})
		tbl.MarkDeleted(p1)

		tbl.AppendColumnToRows([]int{p0}, value.NullValue, true)
		row, _ := tbl.RowAt(p0)
		So(len(row), ShouldEqual, 2)
		So(row[1].IsNull(), ShouldBeTrue)

		tbl.PopRowVersion(p0)
		row, _ = tbl.RowAt(p0)
		So(len(row), ShouldEqual, 1)
	})
}

func TestDump(t *testing.T) {

	Convey("Row.String renders cells and the deletion marker", t, func() {
		row := Row{value.NewInteger(1), value.NewText("John"), value.NullValue}
		So(row.String(), ShouldEqual, "(1, 'John', NULL)")
		So(Row(nil).String(), ShouldEqual, "<deleted>")
	})

	Convey("Table.Dump shows the schema and only the visible rows", t, func() {
		tbl := New("people", []Column{
			{Name: "id", Type: value.Integer},
			{Name: "name", Type: value.Text},
		})
		tbl.AppendRow(Row{value.NewInteger(1), value.NewText("Ada")})
		gone := tbl.AppendRow(Row{value.NewInteger(2), value.NewText("Brian")})
		tbl.MarkDeleted(gone)

		dump := tbl.Dump()
		So(dump, ShouldStartWith, "people (id INTEGER, name TEXT)\n")
		So(dump, ShouldContainSubstring, "(1, 'Ada')")
		So(dump, ShouldNotContainSubstring, "Brian")
	})

	Convey("Database.Dump lists visible tables in name order", t, func() {
		db := NewDatabase()
		db.Create("b", []Column{{Name: "x", Type: value.Integer}})
		db.Create("a", []Column{{Name: "y", Type: value.Integer}})
		db.Drop("b", false)

		dump := db.Dump()
		So(dump, ShouldContainSubstring, "a (y INTEGER)")
		So(dump, ShouldNotContainSubstring, "b (x INTEGER)")
	})
}

func TestDatabaseVersioning(t *testing.T) {

	Convey("Drop under a transaction pushes a sentinel, PopVersion reveals the table", t, func() {

		db := NewDatabase()
		db.Create("t", []Column{{Name: "a", Type: value.Integer}})

		db.Drop("t", true)
		_, ok := db.Get("t")
		So(ok, ShouldBeFalse)

		db.PopVersion("t")
		_, ok = db.Get("t")
		So(ok, ShouldBeTrue)
	})

	Convey("Drop outside a transaction removes the entry outright", t, func() {

		db := NewDatabase()
		db.Create("t", nil)
		db.Drop("t", false)
		So(db.Names(), ShouldBeEmpty)
	})

	Convey("PopVersion on a one-entry stack forgets the table entirely", t, func() {

		db := NewDatabase()
		db.Create("t", nil)
		db.PopVersion("t")
		_, ok := db.Get("t")
		So(ok, ShouldBeFalse)
		So(db.Names(), ShouldBeEmpty)
	})

	Convey("Rename moves the version stack to the new key", t, func() {

		db := NewDatabase()
		tbl := db.Create("old", nil)
		tbl.PushName("new")
		db.Rename("old", "new")

		_, ok := db.Get("old")
		So(ok, ShouldBeFalse)
		got, ok := db.Get("new")
		So(ok, ShouldBeTrue)
		So(got.Name(), ShouldEqual, "new")
	})

	Convey("Compact keeps only the current version of every stack", t, func() {

		db := NewDatabase()
		tbl := db.Create("t", []Column{{Name: "a", Type: value.Integer}})
		pos := tbl.AppendRow(Row{value.NewInteger(1)})
		tbl.ReplaceRow(pos, Row{value.NewInteger(2)}, true)
		tbl.PushColumns([]Column{{Name: "a", Type: value.Integer}})

		db.Compact()

		row, _ := tbl.RowAt(pos)
		So(row[0].Int(), ShouldEqual, 2)

		// The pre-image below the top is gone: popping the only
		// remaining version leaves the position empty.
		tbl.PopRowVersion(pos)
		_, ok := tbl.RowAt(pos)
		So(ok, ShouldBeFalse)
	})
}
