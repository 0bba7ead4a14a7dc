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

package txn

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mollydb/molly/store"
	"github.com/mollydb/molly/value"
)

func TestBeginCommitRollback(t *testing.T) {

	Convey("Begin refuses to nest and Commit/Rollback require an open transaction", t, func() {

		db := store.NewDatabase()
		m := NewManager(db)

		So(m.Commit(), ShouldNotBeNil)
		So(m.Rollback(""), ShouldNotBeNil)

		So(m.Begin(""), ShouldBeNil)
		So(m.InTxn(), ShouldBeTrue)
		So(m.Begin(""), ShouldNotBeNil)

		So(m.Commit(), ShouldBeNil)
		So(m.InTxn(), ShouldBeFalse)
	})
}

func TestRollbackUndoesInsertUpdateDelete(t *testing.T) {

	Convey("Rollback unwinds INSERT, UPDATE and DELETE in reverse order", t, func() {

		db := store.NewDatabase()
		tbl := db.Create("widgets", []store.Column{{Name: "n", Type: value.Integer}})
		m := NewManager(db)

		So(m.Begin(""), ShouldBeNil)

		pos := tbl.AppendRow(store.Row{value.NewInteger(1)})
		m.LogInsert(tbl, []int{pos})

		pre := []store.Row{{value.NewInteger(1)}}
		tbl.ReplaceRow(pos, store.Row{value.NewInteger(2)}, true)
		m.LogUpdate(tbl, []int{pos}, pre)

		pre2, _ := tbl.RowAt(pos)
		tbl.MarkDeleted(pos)
		m.LogDelete(tbl, []int{pos}, []store.Row{pre2})

		_, visible := tbl.RowAt(pos)
		So(visible, ShouldBeFalse)

		So(m.Rollback(""), ShouldBeNil)
		So(m.InTxn(), ShouldBeFalse)
		So(tbl.Len(), ShouldEqual, 0)
	})
}

func TestRollbackToSavepointLeavesItInPlace(t *testing.T) {

	Convey("ROLLBACK TO a savepoint undoes only what came after it", t, func() {

		db := store.NewDatabase()
		tbl := db.Create("widgets", []store.Column{{Name: "n", Type: value.Integer}})
		m := NewManager(db)

		So(m.Begin(""), ShouldBeNil)
		pos0 := tbl.AppendRow(store.Row{value.NewInteger(1)})
		m.LogInsert(tbl, []int{pos0})

		So(m.Savepoint("sp1"), ShouldBeNil)

		pos1 := tbl.AppendRow(store.Row{value.NewInteger(2)})
		m.LogInsert(tbl, []int{pos1})

		So(m.Rollback("sp1"), ShouldBeNil)
		So(m.InTxn(), ShouldBeTrue)
		So(tbl.Len(), ShouldEqual, 1)

		So(m.Rollback("missing"), ShouldNotBeNil)

		So(m.Rollback(""), ShouldBeNil)
		So(tbl.Len(), ShouldEqual, 0)
	})
}

func TestReleaseFoldsSavepointIntoEnclosingScope(t *testing.T) {

	Convey("RELEASE drops the savepoint marker but keeps its statements live", t, func() {

		db := store.NewDatabase()
		tbl := db.Create("widgets", []store.Column{{Name: "n", Type: value.Integer}})
		m := NewManager(db)

		So(m.Begin(""), ShouldBeNil)
		So(m.Savepoint("sp1"), ShouldBeNil)

		pos := tbl.AppendRow(store.Row{value.NewInteger(1)})
		m.LogInsert(tbl, []int{pos})

		So(m.Release("sp1"), ShouldBeNil)
		So(m.Release("sp1"), ShouldNotBeNil)

		So(m.Rollback(""), ShouldBeNil)
		So(tbl.Len(), ShouldEqual, 0)
	})
}
