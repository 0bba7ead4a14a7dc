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
	"fmt"

	"github.com/segmentio/ksuid"

	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/store"
)

// Manager is the single transaction controller for one store.Database.
// MollyDB has no nested transactions (spec §4.6): Begin while already
// active is an error, not an implicit savepoint.
type Manager struct {
	db      *store.Database
	journal []Entry
	active  bool
}

// NewManager returns a Manager governing db, starting idle.
func NewManager(db *store.Database) *Manager {
	return &Manager{db: db}
}

// InTxn reports whether a transaction is currently open. exec consults
// this to decide whether a bare statement runs autocommit (no journal
// entry needed, since there is nothing to roll back to) or inside the
// open transaction's journal.
func (m *Manager) InTxn() bool { return m.active }

// Begin opens a transaction. mode is recorded for BEGIN DEFERRED /
// IMMEDIATE / EXCLUSIVE but does not change MollyDB's locking, since
// the store has no concurrent writers to arbitrate between.
func (m *Manager) Begin(mode string) error {
	if m.active {
		return errs.ErrNestedTransaction
	}
	m.active = true
	m.journal = nil
	return nil
}

// Commit closes the transaction, discarding the journal and compacting
// every table's version stacks since there is nothing left to roll
// back to.
func (m *Manager) Commit() error {
	if !m.active {
		return errs.ErrNoTransaction
	}
	m.active = false
	m.journal = nil
	m.db.Compact()
	return nil
}

// Rollback undoes the transaction back to savepoint, or entirely when
// savepoint is empty. A full rollback closes the transaction; a
// ROLLBACK TO leaves it open with the named savepoint still in place,
// per spec §4.6.
func (m *Manager) Rollback(savepoint string) error {
	if !m.active {
		return errs.ErrNoTransaction
	}
	if savepoint == "" {
		m.undoFrom(0)
		m.journal = nil
		m.active = false
		traceState(m.db)
		return nil
	}
	idx := m.findSavepoint(savepoint)
	if idx < 0 {
		return errs.ErrSavepointNotFound(savepoint)
	}
	m.undoFrom(idx + 1)
	m.journal = m.journal[:idx+1]
	traceState(m.db)
	return nil
}

// Savepoint records a named point in the journal.
func (m *Manager) Savepoint(name string) error {
	if !m.active {
		return errs.ErrNoTransaction
	}
	m.journal = append(m.journal, &Savepoint{ID: ksuid.New().String(), Name: name})
	return nil
}

// Release folds every savepoint entry named name into its enclosing
// scope: the savepoint marker itself is discarded, but everything it
// recorded stays in the journal, reachable only by an outer ROLLBACK.
func (m *Manager) Release(name string) error {
	if !m.active {
		return errs.ErrNoTransaction
	}
	if m.findSavepoint(name) < 0 {
		return errs.ErrSavepointNotFound(name)
	}
	kept := m.journal[:0:0]
	for _, e := range m.journal {
		if sp, ok := e.(*Savepoint); ok && sp.Name == name {
			continue
		}
		kept = append(kept, e)
	}
	m.journal = kept
	return nil
}

func (m *Manager) findSavepoint(name string) int {
	for i := len(m.journal) - 1; i >= 0; i-- {
		if sp, ok := m.journal[i].(*Savepoint); ok && sp.Name == name {
			return i
		}
	}
	return -1
}

func (m *Manager) undoFrom(from int) {
	for i := len(m.journal) - 1; i >= from; i-- {
		if se, ok := m.journal[i].(*StatementEntry); ok {
			m.rollbackEntry(se)
		}
	}
}

func (m *Manager) append(kind Kind, table *store.Table, name string, rows []int, pre []store.Row) {
	if !m.active {
		return
	}
	m.journal = append(m.journal, &StatementEntry{
		ID:        ksuid.New().String(),
		Kind:      kind,
		Table:     table,
		TableName: name,
		Rows:      rows,
		Pre:       pre,
	})
}

// LogInsert records that rows were appended to table, in case the
// transaction rolls back.
func (m *Manager) LogInsert(table *store.Table, rows []int) {
	m.append(KindInsert, table, table.Name(), rows, nil)
}

// LogUpdate records that the rows at positions rows were replaced,
// carrying their pre-images for trace-level diff logging on rollback.
func (m *Manager) LogUpdate(table *store.Table, rows []int, pre []store.Row) {
	m.append(KindUpdate, table, table.Name(), rows, pre)
}

// LogDelete records that the rows at positions rows were marked
// deleted.
func (m *Manager) LogDelete(table *store.Table, rows []int, pre []store.Row) {
	m.append(KindDelete, table, table.Name(), rows, pre)
}

// LogCreateTable records that name was created.
func (m *Manager) LogCreateTable(name string) {
	m.append(KindCreateTable, nil, name, nil, nil)
}

// LogDropTable records that name was dropped.
func (m *Manager) LogDropTable(name string) {
	m.append(KindDropTable, nil, name, nil, nil)
}

// LogRenameTable records that table's name changed.
func (m *Manager) LogRenameTable(table *store.Table) {
	m.append(KindRenameTable, table, table.Name(), nil, nil)
}

// LogRenameColumn records that one of table's columns was renamed.
func (m *Manager) LogRenameColumn(table *store.Table) {
	m.append(KindRenameColumn, table, table.Name(), nil, nil)
}

// LogAddColumn records that a column was added to table, widening the
// row-stacks at positions rows (the rows visible at alter time).
func (m *Manager) LogAddColumn(table *store.Table, rows []int) {
	m.append(KindAddColumn, table, table.Name(), rows, nil)
}

// LogDropColumn records that a column was dropped from table,
// narrowing the row-stacks at positions rows.
func (m *Manager) LogDropColumn(table *store.Table, rows []int) {
	m.append(KindDropColumn, table, table.Name(), rows, nil)
}

// Dump renders the journal as one line per entry, for tests that
// assert on rollback bookkeeping rather than on final table state.
func (m *Manager) Dump() []string {
	out := make([]string, len(m.journal))
	for i, e := range m.journal {
		switch t := e.(type) {
		case *StatementEntry:
			out[i] = fmt.Sprintf("%s %s %s rows=%v", t.ID, t.Kind, t.TableName, t.Rows)
		case *Savepoint:
			out[i] = fmt.Sprintf("%s SAVEPOINT %s", t.ID, t.Name)
		}
	}
	return out
}
