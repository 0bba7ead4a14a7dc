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

// Package store implements MollyDB's in-memory table store: named
// tables with column lists and row vectors, each carrying independent
// version stacks so a transaction can be rolled back without copying
// the whole table.
package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mollydb/molly/value"
)

// Column is one column of a table's schema.
type Column struct {
	Name string
	Type value.Kind
}

// Row is one ordered tuple of cell values. A nil Row marks a
// logically-deleted row: its row-stack's current top is the deletion
// marker, and the row is invisible to SELECT until rolled back.
type Row []value.Value

// String renders the row as a parenthesized cell list, or the
// deletion-marker placeholder for a nil row. Used by Dump and by the
// transaction manager's trace-level rollback diffs.
func (r Row) String() string {
	if r == nil {
		return "<deleted>"
	}
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = cellString(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func cellString(v value.Value) string {
	switch v.Kind() {
	case value.Integer:
		return fmt.Sprintf("%d", v.Int())
	case value.Real:
		return fmt.Sprintf("%g", v.Float())
	case value.Text:
		return "'" + v.Str() + "'"
	case value.Blob:
		return fmt.Sprintf("X'%x'", v.Bytes())
	default:
		return "NULL"
	}
}

// Table holds a table's three independent version stacks: its name,
// its column list, and one stack per row position.
type Table struct {
	nameStack    []string
	columnsStack [][]Column
	rowStacks    [][]Row
}

// New returns a fresh, empty Table.
func New(name string, columns []Column) *Table {
	return &Table{
		nameStack:    []string{name},
		columnsStack: [][]Column{columns},
	}
}

// Name returns the table's current name.
func (t *Table) Name() string { return t.nameStack[len(t.nameStack)-1] }

// Columns returns the table's current column list.
func (t *Table) Columns() []Column { return t.columnsStack[len(t.columnsStack)-1] }

// HasColumn reports whether name names a current column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.IndexOfColumn(name)
	return ok
}

// IndexOfColumn returns the position of name in the current column
// list.
func (t *Table) IndexOfColumn(name string) (int, bool) {
	for i, c := range t.Columns() {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Len returns the number of row positions the table holds, including
// logically-deleted ones.
func (t *Table) Len() int { return len(t.rowStacks) }

// RowAt returns the row currently visible at position i, and false if
// that position is logically deleted.
func (t *Table) RowAt(i int) (Row, bool) {
	stack := t.rowStacks[i]
	if len(stack) == 0 {
		return nil, false
	}
	top := stack[len(stack)-1]
	if top == nil {
		return nil, false
	}
	return top, true
}

// VisibleRows returns the positions of every row not currently
// deleted, in position order.
func (t *Table) VisibleRows() []int {
	out := make([]int, 0, len(t.rowStacks))
	for i := range t.rowStacks {
		if _, ok := t.RowAt(i); ok {
			out = append(out, i)
		}
	}
	return out
}

// AppendRow appends a brand new row-stack and returns its position.
func (t *Table) AppendRow(row Row) int {
	t.rowStacks = append(t.rowStacks, []Row{row})
	return len(t.rowStacks) - 1
}

// ReplaceRow installs row as the new current value at position i. When
// transactional, the previous value is pushed below it (append-clone
// discipline) so rollback can recover it; otherwise the previous value
// is overwritten in place.
func (t *Table) ReplaceRow(i int, row Row, transactional bool) {
	stack := t.rowStacks[i]
	if transactional {
		t.rowStacks[i] = append(stack, row)
		return
	}
	stack[len(stack)-1] = row
}

// MarkDeleted pushes the NULL deletion marker atop position i's
// row-stack; the physical row remains for rollback.
func (t *Table) MarkDeleted(i int) {
	t.rowStacks[i] = append(t.rowStacks[i], nil)
}

// Swap exchanges the row-stacks at positions i and j.
func (t *Table) Swap(i, j int) {
	t.rowStacks[i], t.rowStacks[j] = t.rowStacks[j], t.rowStacks[i]
}

// Pop physically removes the last row position. Used with Swap to
// swap-remove a row outside a transaction.
func (t *Table) Pop() {
	t.rowStacks = t.rowStacks[:len(t.rowStacks)-1]
}

// PopRowVersion discards the current top of position i's row-stack,
// uncovering its pre-image. Used to roll back an UPDATE or DELETE.
func (t *Table) PopRowVersion(i int) {
	stack := t.rowStacks[i]
	t.rowStacks[i] = stack[:len(stack)-1]
}

// PopLastRowStack removes the table's last row position entirely.
// Used to roll back an INSERT, whose affected rows are always the
// most recently appended positions.
func (t *Table) PopLastRowStack() {
	t.rowStacks = t.rowStacks[:len(t.rowStacks)-1]
}

// SetName overwrites the table's current name in place, used outside
// a transaction per spec §4.3's "mutate in place and pop nothing".
func (t *Table) SetName(name string) {
	t.nameStack[len(t.nameStack)-1] = name
}

// SetColumns overwrites the table's current column list in place,
// used outside a transaction.
func (t *Table) SetColumns(cols []Column) {
	t.columnsStack[len(t.columnsStack)-1] = cols
}

// PushColumns pushes a new column-list snapshot; the table's schema
// changes immediately and RollbackColumns restores the previous one.
// ALTER TABLE uses it inside a transaction; outside one it calls
// SetColumns instead.
func (t *Table) PushColumns(cols []Column) {
	t.columnsStack = append(t.columnsStack, cols)
}

// RollbackColumns pops the most recent column-list snapshot.
func (t *Table) RollbackColumns() {
	t.columnsStack = t.columnsStack[:len(t.columnsStack)-1]
}

// PushName pushes a new current name (ALTER TABLE RENAME TO).
func (t *Table) PushName(name string) {
	t.nameStack = append(t.nameStack, name)
}

// RollbackName pops the most recent name, uncovering the previous one.
func (t *Table) RollbackName() {
	t.nameStack = t.nameStack[:len(t.nameStack)-1]
}

// AppendColumnToRows appends val to the current top of each row-stack
// named by positions, for ALTER TABLE ADD COLUMN. The caller passes
// VisibleRows() captured before the alter, so rollback can undo
// exactly the positions this call touched with PopRowVersion, the same
// primitive UPDATE/DELETE rollback uses.
func (t *Table) AppendColumnToRows(positions []int, val value.Value, transactional bool) {
	for _, i := range positions {
		stack := t.rowStacks[i]
		top := stack[len(stack)-1]
		row := make(Row, len(top)+1)
		copy(row, top)
		row[len(top)] = val
		t.ReplaceRow(i, row, transactional)
	}
}

// DropColumnFromRows removes the cell at idx from the current top of
// each row-stack named by positions, for ALTER TABLE DROP COLUMN.
func (t *Table) DropColumnFromRows(positions []int, idx int, transactional bool) {
	for _, i := range positions {
		stack := t.rowStacks[i]
		top := stack[len(stack)-1]
		row := make(Row, 0, len(top)-1)
		row = append(row, top[:idx]...)
		row = append(row, top[idx+1:]...)
		t.ReplaceRow(i, row, transactional)
	}
}

// Compact discards every historical version below the current top of
// each stack, and physically removes rows whose top is the deletion
// marker. Safe once a transaction has committed: there is nothing left
// to roll back to.
func (t *Table) Compact() {
	t.nameStack = []string{t.Name()}
	t.columnsStack = [][]Column{t.Columns()}
	kept := t.rowStacks[:0]
	for i := range t.rowStacks {
		if row, ok := t.RowAt(i); ok {
			kept = append(kept, []Row{row})
		}
	}
	t.rowStacks = kept
}

// Dump renders the table's current name, schema and visible rows as
// one line each, for trace logging and tests; it never touches the
// historical versions below the stack tops.
func (t *Table) Dump() string {
	var b strings.Builder
	cols := make([]string, len(t.Columns()))
	for i, c := range t.Columns() {
		cols[i] = c.Name + " " + c.Type.String()
	}
	fmt.Fprintf(&b, "%s (%s)\n", t.Name(), strings.Join(cols, ", "))
	for _, pos := range t.VisibleRows() {
		row, _ := t.RowAt(pos)
		fmt.Fprintf(&b, "  %d: %s\n", pos, row)
	}
	return b.String()
}

// Database maps table name to a table-version-stack: a nil entry means
// the table is dropped at that version.
type Database struct {
	tables map[string][]*Table
}

// NewDatabase returns an empty Database.
func NewDatabase() *Database {
	return &Database{tables: make(map[string][]*Table)}
}

// Get returns the table currently visible under name.
func (d *Database) Get(name string) (*Table, bool) {
	stack := d.tables[name]
	if len(stack) == 0 {
		return nil, false
	}
	top := stack[len(stack)-1]
	if top == nil {
		return nil, false
	}
	return top, true
}

// Create installs a fresh one-element version stack under name.
func (d *Database) Create(name string, columns []Column) *Table {
	t := New(name, columns)
	d.tables[name] = append(d.tables[name], t)
	return t
}

// Install places t as the current version under name. Outside a
// transaction it mutates in place (overwriting the current top, or
// appending the first entry if name has never been used) per spec
// §4.3's "writes when not in a transaction mutate in place and pop
// nothing"; under a transaction it always pushes, so ROLLBACK can
// remove exactly the version this call added with PopVersion.
func (d *Database) Install(name string, t *Table, transactional bool) {
	stack := d.tables[name]
	if transactional || len(stack) == 0 {
		d.tables[name] = append(stack, t)
		return
	}
	stack[len(stack)-1] = t
}

// Drop removes name's current table. Outside a transaction the whole
// version stack is deleted outright; under one, the dropped sentinel
// is pushed so ROLLBACK can reveal the previous version with
// PopVersion.
func (d *Database) Drop(name string, transactional bool) {
	if transactional {
		d.tables[name] = append(d.tables[name], nil)
		return
	}
	delete(d.tables, name)
}

// PopVersion pops the most recent version from name's stack. If the
// stack becomes empty the map entry is removed entirely, matching "the
// table never existed" rather than leaving a dangling empty stack.
func (d *Database) PopVersion(name string) {
	stack := d.tables[name]
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		delete(d.tables, name)
	} else {
		d.tables[name] = stack
	}
}

// Rename moves the whole version stack living under oldName to
// newName.
func (d *Database) Rename(oldName, newName string) {
	stack := d.tables[oldName]
	delete(d.tables, oldName)
	d.tables[newName] = stack
}

// Names returns every table name with a currently visible table, in no
// particular order.
func (d *Database) Names() []string {
	out := make([]string, 0, len(d.tables))
	for name, stack := range d.tables {
		if len(stack) > 0 && stack[len(stack)-1] != nil {
			out = append(out, name)
		}
	}
	return out
}

// Dump renders every visible table's Dump in name order.
func (d *Database) Dump() string {
	names := d.Names()
	sort.Strings(names)
	var b strings.Builder
	for _, name := range names {
		if t, ok := d.Get(name); ok {
			b.WriteString(t.Dump())
		}
	}
	return b.String()
}

// Compact truncates every table's version stack to its current top,
// removing entries left at a dropped sentinel, and compacts each
// surviving table.
func (d *Database) Compact() {
	for name, stack := range d.tables {
		top := stack[len(stack)-1]
		if top == nil {
			delete(d.tables, name)
			continue
		}
		d.tables[name] = []*Table{top}
		top.Compact()
	}
}
