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

package exec

import (
	"fmt"

	"github.com/mollydb/molly/ast"
	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/store"
	"github.com/mollydb/molly/value"
)

func (e *Executor) execCreateTable(s *ast.CreateTable) error {
	if _, ok := e.DB.Get(s.Table); ok {
		if s.IfNotExists {
			return nil
		}
		return &errs.ExecError{Op: "bad_ddl", Detail: fmt.Sprintf("table '%s' already exists", s.Table)}
	}
	cols := make([]store.Column, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = store.Column{Name: c.Name, Type: c.Type}
	}
	t := store.New(s.Table, cols)
	inTxn := e.Txn.InTxn()
	e.DB.Install(s.Table, t, inTxn)
	if inTxn {
		e.Txn.LogCreateTable(s.Table)
	}
	return nil
}

func (e *Executor) execDropTable(s *ast.DropTable) error {
	if _, ok := e.DB.Get(s.Table); !ok {
		if s.IfExists {
			return nil
		}
		return &errs.ExecError{Op: "no_table", Table: s.Table}
	}
	inTxn := e.Txn.InTxn()
	e.DB.Drop(s.Table, inTxn)
	if inTxn {
		e.Txn.LogDropTable(s.Table)
	}
	return nil
}

func (e *Executor) execAlterTable(s *ast.AlterTable) error {
	t, err := e.getTable(s.Table)
	if err != nil {
		return err
	}
	inTxn := e.Txn.InTxn()

	switch a := s.Action.(type) {

	case ast.RenameTable:
		if inTxn {
			t.PushName(a.NewName)
		} else {
			t.SetName(a.NewName)
		}
		e.DB.Rename(s.Table, a.NewName)
		if inTxn {
			e.Txn.LogRenameTable(t)
		}

	case ast.RenameColumn:
		idx, ok := t.IndexOfColumn(a.OldName)
		if !ok {
			return &errs.ExecError{Op: "no_column", Table: t.Name(), Column: a.OldName}
		}
		cols := append([]store.Column(nil), t.Columns()...)
		cols[idx] = store.Column{Name: a.NewName, Type: cols[idx].Type}
		if inTxn {
			t.PushColumns(cols)
		} else {
			t.SetColumns(cols)
		}
		if inTxn {
			e.Txn.LogRenameColumn(t)
		}

	case ast.AddColumn:
		if t.HasColumn(a.Column.Name) {
			return &errs.ExecError{Op: "bad_ddl", Detail: fmt.Sprintf("column '%s' already exists", a.Column.Name)}
		}
		touched := t.VisibleRows()
		t.AppendColumnToRows(touched, value.NullValue, inTxn)
		cols := append(append([]store.Column(nil), t.Columns()...), store.Column{Name: a.Column.Name, Type: a.Column.Type})
		if inTxn {
			t.PushColumns(cols)
		} else {
			t.SetColumns(cols)
		}
		if inTxn {
			e.Txn.LogAddColumn(t, touched)
		}

	case ast.DropColumn:
		idx, ok := t.IndexOfColumn(a.Name)
		if !ok {
			return &errs.ExecError{Op: "no_column", Table: t.Name(), Column: a.Name}
		}
		touched := t.VisibleRows()
		t.DropColumnFromRows(touched, idx, inTxn)
		cols := append([]store.Column(nil), t.Columns()[:idx]...)
		cols = append(cols, t.Columns()[idx+1:]...)
		if inTxn {
			t.PushColumns(cols)
		} else {
			t.SetColumns(cols)
		}
		if inTxn {
			e.Txn.LogDropColumn(t, touched)
		}

	default:
		return &errs.ExecError{Op: "bad_ddl", Detail: "unrecognized ALTER TABLE action"}
	}

	return nil
}
