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

// Package exec implements MollyDB's statement executor (spec §4.5):
// the component that turns one parsed ast.Statement into a mutation of
// a store.Database, journaled through a txn.Manager so the
// transaction layer can undo it. It is the direct analogue of the
// teacher's own per-statement executors (sql/stmt_*.go), reshaped
// around MollyDB's version-stack store instead of the teacher's
// timestamped KV layer.
package exec

import (
	"github.com/mollydb/molly/ast"
	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/eval"
	"github.com/mollydb/molly/fn"
	"github.com/mollydb/molly/store"
	"github.com/mollydb/molly/txn"
	"github.com/mollydb/molly/value"
)

// Rows is a SELECT result: a column name list plus the matching data
// rows.
type Rows struct {
	Columns []string
	Data    [][]value.Value
}

// Executor runs statements against one database under one transaction
// manager.
type Executor struct {
	DB  *store.Database
	Txn *txn.Manager
}

// New returns an Executor over db, with its own transaction manager.
func New(db *store.Database) *Executor {
	return &Executor{DB: db, Txn: txn.NewManager(db)}
}

// Exec runs one statement, returning its result rows (nil for DDL/DML)
// or an error. The caller is responsible for turning the error into
// the "Execution Error with statement starting on line N" form spec §6
// describes; Exec itself only returns the underlying cause.
func (e *Executor) Exec(stmt ast.Statement) (*Rows, error) {
	switch s := stmt.(type) {

	case *ast.CreateTable:
		return nil, e.execCreateTable(s)
	case *ast.DropTable:
		return nil, e.execDropTable(s)
	case *ast.AlterTable:
		return nil, e.execAlterTable(s)
	case *ast.InsertInto:
		return nil, e.execInsertInto(s)
	case *ast.Update:
		return nil, e.execUpdate(s)
	case *ast.Delete:
		return nil, e.execDelete(s)
	case *ast.Select:
		return e.execSelect(s)

	case *ast.Begin:
		return nil, e.Txn.Begin(s.Mode)
	case *ast.Commit:
		return nil, e.Txn.Commit()
	case *ast.Rollback:
		return nil, e.Txn.Rollback(s.Savepoint)
	case *ast.SavepointStmt:
		return nil, e.Txn.Savepoint(s.Name)
	case *ast.Release:
		return nil, e.Txn.Release(s.Name)

	default:
		return nil, &errs.ExecError{Op: "bad_stmt", Detail: "unrecognized statement"}
	}
}

// funcs adapts fn.Call to eval.FuncRegistry.
func funcs(name string, args []value.Value) (value.Value, error) {
	return fn.Call(name, args)
}

// getTable looks up name, returning the spec's exact "does not exist"
// ExecError when absent.
func (e *Executor) getTable(name string) (*store.Table, error) {
	t, ok := e.DB.Get(name)
	if !ok {
		return nil, &errs.ExecError{Op: "no_table", Table: name}
	}
	return t, nil
}

// evalRowCtx builds an eval.Context for one row of table.
func evalRowCtx(table *store.Table, row store.Row) eval.Context {
	return eval.Context{Table: table, Row: row, Funcs: funcs}
}
