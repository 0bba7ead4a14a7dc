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
	"sort"

	"github.com/mollydb/molly/ast"
	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/eval"
	"github.com/mollydb/molly/store"
	"github.com/mollydb/molly/value"
)

// checkType enforces spec §4.5's "type mismatch between the column's
// declared type and the value's type (allowing Null) is an error".
func checkType(col store.Column, v value.Value) error {
	if v.IsNull() || col.Type == value.Null {
		return nil
	}
	if v.Kind() != col.Type {
		return &errs.ExecError{Op: "type_mismatch", Column: col.Name, Value: cellText(v)}
	}
	return nil
}

func cellText(v value.Value) string {
	switch v.Kind() {
	case value.Integer:
		return fmt.Sprintf("%d", v.Int())
	case value.Real:
		return fmt.Sprintf("%g", v.Float())
	case value.Text:
		return v.Str()
	case value.Blob:
		return fmt.Sprintf("x'%x'", v.Bytes())
	default:
		return "NULL"
	}
}

func (e *Executor) execInsertInto(s *ast.InsertInto) error {
	t, err := e.getTable(s.Table)
	if err != nil {
		return err
	}

	cols := s.Columns
	if cols == nil {
		cols = make([]string, len(t.Columns()))
		for i, c := range t.Columns() {
			cols[i] = c.Name
		}
	}
	idxs := make([]int, len(cols))
	for i, name := range cols {
		idx, ok := t.IndexOfColumn(name)
		if !ok {
			return &errs.ExecError{Op: "no_column", Table: t.Name(), Column: name}
		}
		idxs[i] = idx
	}

	width := len(t.Columns())
	var appended []int
	for _, vals := range s.Rows {
		if len(vals) != len(idxs) {
			return &errs.ExecError{Op: "bad_dml", Detail: "value count does not match column count"}
		}
		row := make(store.Row, width)
		for i := range row {
			row[i] = value.NullValue
		}
		for i, v := range vals {
			colIdx := idxs[i]
			if err := checkType(t.Columns()[colIdx], v); err != nil {
				return err
			}
			row[colIdx] = v
		}
		appended = append(appended, t.AppendRow(row))
	}

	if e.Txn.InTxn() {
		e.Txn.LogInsert(t, appended)
	}
	return nil
}

func (e *Executor) execUpdate(s *ast.Update) error {
	t, err := e.getTable(s.Table)
	if err != nil {
		return err
	}
	idxs, err := e.matchingIndices(t, s.Where, s.OrderBy, s.Limit, s.Offset)
	if err != nil {
		return err
	}

	inTxn := e.Txn.InTxn()
	var pre []store.Row
	if inTxn {
		pre = make([]store.Row, len(idxs))
	}

	for i, pos := range idxs {
		row, _ := t.RowAt(pos)
		if inTxn {
			pre[i] = row
		}
		newRow := append(store.Row(nil), row...)
		for _, asg := range s.Assignments {
			colIdx, ok := t.IndexOfColumn(asg.Column)
			if !ok {
				return &errs.ExecError{Op: "no_column", Table: t.Name(), Column: asg.Column}
			}
			v, err := eval.EvalScalar(evalRowCtx(t, row), asg.Value)
			if err != nil {
				return err
			}
			if err := checkType(t.Columns()[colIdx], v); err != nil {
				return err
			}
			newRow[colIdx] = v
		}
		t.ReplaceRow(pos, newRow, inTxn)
	}

	if inTxn {
		e.Txn.LogUpdate(t, idxs, pre)
	}
	return nil
}

func (e *Executor) execDelete(s *ast.Delete) error {
	t, err := e.getTable(s.Table)
	if err != nil {
		return err
	}
	idxs, err := e.matchingIndices(t, s.Where, s.OrderBy, s.Limit, s.Offset)
	if err != nil {
		return err
	}

	if e.Txn.InTxn() {
		pre := make([]store.Row, len(idxs))
		for i, pos := range idxs {
			row, _ := t.RowAt(pos)
			pre[i] = row
			t.MarkDeleted(pos)
		}
		e.Txn.LogDelete(t, idxs, pre)
		return nil
	}

	// Outside a transaction, DELETE swap-removes each matched row.
	// Processing positions from largest to smallest keeps every
	// not-yet-removed index valid across the swaps.
	sorted := append([]int(nil), idxs...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	for _, pos := range sorted {
		last := t.Len() - 1
		if pos != last {
			t.Swap(pos, last)
		}
		t.Pop()
	}
	return nil
}
