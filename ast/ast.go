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

package ast

import "github.com/mollydb/molly/value"

// Statement is any top-level parsed SQL statement.
type Statement interface {
	stmt()
}

// ColumnDef is one column of a CREATE TABLE / ALTER TABLE ADD COLUMN.
type ColumnDef struct {
	Name        string
	Type        value.Kind
	Constraints []string
}

// CreateTable is `CREATE TABLE [IF NOT EXISTS] name (col type, ...);`.
type CreateTable struct {
	Table       string
	IfNotExists bool
	Columns     []ColumnDef
}

func (*CreateTable) stmt() {}

// DropTable is `DROP TABLE [IF EXISTS] name;`.
type DropTable struct {
	Table    string
	IfExists bool
}

func (*DropTable) stmt() {}

// InsertInto is `INSERT INTO name [(cols)] VALUES (v,...)[, (v,...)]*;`.
// Columns is nil when no column list was given. Every row in Rows has
// the same arity as Columns (or the table's full column count).
type InsertInto struct {
	Table   string
	Columns []string
	Rows    [][]value.Value
}

func (*InsertInto) stmt() {}

// OrderTerm is one ORDER BY expression plus its direction.
type OrderTerm struct {
	Expr Selectable
	Desc bool
}

// SelectComponent is one SELECT sub-statement in a set-operator stack.
type SelectComponent struct {
	Distinct bool
	Columns  []Selectable
	Table    string
	Where    *Selectable
}

// SetOp combines two SELECT results.
type SetOp int

const (
	SetUnion SetOp = iota
	SetUnionAll
	SetIntersect
	SetExcept
)

// SetStep is one item of the set-operator stack (spec §4.2's "SELECT
// set-operation stack"): either a sub-SELECT to run, or an operator
// that combines the top two result sets already on the stack. The
// parser emits these in RPN order via shunting-yard over INTERSECT
// (higher precedence) and UNION/UNION ALL/EXCEPT (lower, mutually
// left-associative), so `a UNION b INTERSECT c` is encoded as the
// sequence [a, b, c, INTERSECT, UNION] and evaluates as
// UNION(a, INTERSECT(b, c)).
type SetStep struct {
	Component *SelectComponent
	Op        SetOp
	IsOp      bool
}

// Select is a (possibly compound) SELECT statement. Steps is the
// RPN-ordered set-operator stack; a lone SELECT is a single-element
// Steps with no operators. OrderBy/Limit/Offset apply to the final
// combined result.
type Select struct {
	Steps   []SetStep
	OrderBy []OrderTerm
	Limit   *int64
	Offset  *int64
}

func (*Select) stmt() {}

// Assignment is one `col = expr` pair in an UPDATE's SET clause.
type Assignment struct {
	Column string
	Value  Selectable
}

// Update is `UPDATE name SET col=v [,...] [WHERE e] [ORDER BY ...] [LIMIT ...];`.
type Update struct {
	Table       string
	Assignments []Assignment
	Where       *Selectable
	OrderBy     []OrderTerm
	Limit       *int64
	Offset      *int64
}

func (*Update) stmt() {}

// Delete is `DELETE FROM name [WHERE e] [ORDER BY ...] [LIMIT ...];`.
type Delete struct {
	Table   string
	Where   *Selectable
	OrderBy []OrderTerm
	Limit   *int64
	Offset  *int64
}

func (*Delete) stmt() {}

// AlterAction is one of the four ALTER TABLE actions.
type AlterAction interface {
	alterAction()
}

// RenameTable is `ALTER TABLE name RENAME TO name;`.
type RenameTable struct {
	NewName string
}

func (RenameTable) alterAction() {}

// RenameColumn is `ALTER TABLE name RENAME COLUMN old TO new;`.
type RenameColumn struct {
	OldName string
	NewName string
}

func (RenameColumn) alterAction() {}

// AddColumn is `ALTER TABLE name ADD COLUMN name type;`.
type AddColumn struct {
	Column ColumnDef
}

func (AddColumn) alterAction() {}

// DropColumn is `ALTER TABLE name DROP COLUMN name;`.
type DropColumn struct {
	Name string
}

func (DropColumn) alterAction() {}

// AlterTable is `ALTER TABLE name <action>;`.
type AlterTable struct {
	Table  string
	Action AlterAction
}

func (*AlterTable) stmt() {}

// Begin is `BEGIN [DEFERRED|IMMEDIATE|EXCLUSIVE];`.
type Begin struct {
	Mode string
}

func (*Begin) stmt() {}

// Commit is `COMMIT;` or `END;`.
type Commit struct{}

func (*Commit) stmt() {}

// Rollback is `ROLLBACK [TO [SAVEPOINT] name];`. Savepoint is empty
// when no savepoint name was given.
type Rollback struct {
	Savepoint string
}

func (*Rollback) stmt() {}

// SavepointStmt is `SAVEPOINT name;`.
type SavepointStmt struct {
	Name string
}

func (*SavepointStmt) stmt() {}

// Release is `RELEASE [SAVEPOINT] name;`.
type Release struct {
	Name string
}

func (*Release) stmt() {}
