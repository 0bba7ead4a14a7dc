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
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/mollydb/molly/log"
	"github.com/mollydb/molly/store"
)

// rollbackEntry undoes one StatementEntry by popping exactly the
// version-stack layers it pushed, per spec §4.6's table.
func (m *Manager) rollbackEntry(e *StatementEntry) {
	switch e.Kind {

	case KindInsert:
		for range e.Rows {
			e.Table.PopLastRowStack()
		}

	case KindUpdate, KindDelete:
		for i, pos := range e.Rows {
			traceRowRollback(e, i, pos)
			e.Table.PopRowVersion(pos)
		}

	case KindCreateTable:
		m.db.PopVersion(e.TableName)

	case KindDropTable:
		m.db.PopVersion(e.TableName)

	case KindRenameTable:
		renamed := e.Table.Name()
		e.Table.RollbackName()
		m.db.Rename(renamed, e.Table.Name())

	case KindRenameColumn:
		e.Table.RollbackColumns()

	case KindAddColumn, KindDropColumn:
		for _, pos := range e.Rows {
			e.Table.PopRowVersion(pos)
		}
		e.Table.RollbackColumns()
	}
}

// traceRowRollback logs a unified diff between a row's pre-image and
// the post-image about to be discarded, at trace level only. It is
// purely a debugging aid and never consulted to decide what to undo.
func traceRowRollback(e *StatementEntry, i, pos int) {
	if !log.IsTrace() || i >= len(e.Pre) {
		return
	}
	post, _ := e.Table.RowAt(pos)
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(post.String(), e.Pre[i].String(), false)
	log.Instance().WithFields(map[string]interface{}{
		"entry": e.ID,
		"table": e.TableName,
		"row":   pos,
	}).Tracef("rollback restoring pre-image: %s", dmp.DiffPrettyText(diffs))
}

// traceState logs a snapshot of every visible table once a rollback
// replay has finished, at trace level only.
func traceState(db *store.Database) {
	if !log.IsTrace() {
		return
	}
	log.Instance().Tracef("state after rollback:\n%s", db.Dump())
}
