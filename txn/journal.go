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

// Package txn implements MollyDB's transaction journal and rollback
// manager (spec §4.6). There is no MVCC here: a transaction's undo
// information is just the sequence of version-stack pushes it made,
// and ROLLBACK replays that sequence backwards, popping each stack
// back to its pre-transaction top. This mirrors the teacher's own
// append-only versioned store (kv/kv.go) far more than it mirrors a
// WAL; the journal only ever moves in one direction and rollback is a
// linear reverse scan, not a timestamp jump.
package txn

import "github.com/mollydb/molly/store"

// Kind identifies which store operation a StatementEntry undoes.
type Kind int

const (
	KindInsert Kind = iota
	KindUpdate
	KindDelete
	KindCreateTable
	KindDropTable
	KindRenameTable
	KindRenameColumn
	KindAddColumn
	KindDropColumn
)

// String names k for trace logging and Manager.Dump.
func (k Kind) String() string {
	switch k {
	case KindInsert:
		return "INSERT"
	case KindUpdate:
		return "UPDATE"
	case KindDelete:
		return "DELETE"
	case KindCreateTable:
		return "CREATE_TABLE"
	case KindDropTable:
		return "DROP_TABLE"
	case KindRenameTable:
		return "RENAME_TABLE"
	case KindRenameColumn:
		return "RENAME_COLUMN"
	case KindAddColumn:
		return "ADD_COLUMN"
	case KindDropColumn:
		return "DROP_COLUMN"
	default:
		return "UNKNOWN"
	}
}

// Entry is one journal entry: a recorded mutation or a savepoint mark.
type Entry interface {
	entry()
	id() string
}

// StatementEntry records one statement's effect on a table well
// enough to reverse it without replaying SQL. Table is nil for
// KindCreateTable/KindDropTable, which act on the database's table
// map rather than on any one Table's version stacks; TableName always
// names the table as it was known at the moment the entry was logged.
// Pre holds the pre-image of each row named by Rows, used only for
// trace-level rollback diff logging (rollback.go); it is never read on
// the data path.
type StatementEntry struct {
	ID        string
	Kind      Kind
	Table     *store.Table
	TableName string
	Rows      []int
	Pre       []store.Row
}

func (*StatementEntry) entry()       {}
func (e *StatementEntry) id() string { return e.ID }

// Savepoint marks a named point in the journal that ROLLBACK TO can
// unwind to, or RELEASE can fold into its enclosing scope.
type Savepoint struct {
	ID   string
	Name string
}

func (*Savepoint) entry()       {}
func (s *Savepoint) id() string { return s.ID }
