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
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/mollydb/molly/ast"
	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/eval"
	"github.com/mollydb/molly/store"
	"github.com/mollydb/molly/value"
)

// selResult is one entry of the set-operator evaluation stack: the
// rows produced so far, plus — for a plain single-component SELECT —
// the source table and the source row behind each result row, so a
// final ORDER BY can still reach columns that were not projected.
// Set operators drop the source tracking; their combined output only
// has its own columns, per spec §4.5's "ORDER BY keys must reference
// columns present in the result set".
type selResult struct {
	rows    *Rows
	src     *store.Table
	srcRows []store.Row
}

// rowKey builds the hash key DISTINCT and the set operators use to
// treat two result rows as the same tuple: each cell's canonical
// encoding concatenated, then hashed. The encoding folds the type tag
// in, so Text("1") and Integer(1) key differently, while Integer(1)
// and Real(1.0) share the numeric encoding and key the same; NULL
// cells key the same as each other. value.Encode is the same form
// value.Hash hashes.
func rowKey(row []value.Value) uint64 {
	h := xxhash.New()
	for _, v := range row {
		h.Write(v.Encode())
	}
	return h.Sum64()
}

func (e *Executor) execSelect(s *ast.Select) (*Rows, error) {

	var stack []*selResult

	for _, step := range s.Steps {

		if !step.IsOp {
			res, err := e.execSelectComponent(step.Component)
			if err != nil {
				return nil, err
			}
			stack = append(stack, res)
			continue
		}

		if len(stack) < 2 {
			return nil, &errs.ExecError{Op: "bad_stmt", Detail: "malformed set-operator stack"}
		}
		right := stack[len(stack)-1]
		left := stack[len(stack)-2]
		stack = stack[:len(stack)-2]

		combined, err := combine(step.Op, left.rows, right.rows)
		if err != nil {
			return nil, err
		}
		stack = append(stack, &selResult{rows: combined})
	}

	if len(stack) != 1 {
		return nil, &errs.ExecError{Op: "bad_stmt", Detail: "malformed set-operator stack"}
	}
	res := stack[0]

	if len(s.OrderBy) > 0 {
		if err := orderRows(res, s.OrderBy); err != nil {
			return nil, err
		}
	}

	res.rows.Data = sliceRowsByLimitOffset(res.rows.Data, s.Limit, s.Offset)
	return res.rows, nil
}

// execSelectComponent runs one `SELECT [DISTINCT] exprs FROM t
// [WHERE e]`, producing result rows plus the source row behind each.
func (e *Executor) execSelectComponent(c *ast.SelectComponent) (*selResult, error) {
	t, err := e.getTable(c.Table)
	if err != nil {
		return nil, err
	}

	names := columnNames(t, c.Columns)

	res := &selResult{
		rows: &Rows{Columns: names},
		src:  t,
	}

	var seen map[uint64]bool
	if c.Distinct {
		seen = make(map[uint64]bool)
	}

	for _, pos := range t.VisibleRows() {
		row, _ := t.RowAt(pos)

		if c.Where != nil {
			ok, err := eval.EvalBool(evalRowCtx(t, row), *c.Where)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}

		out := make([]value.Value, 0, len(names))
		for _, col := range c.Columns {
			cells, err := eval.EvalRow(evalRowCtx(t, row), col)
			if err != nil {
				return nil, err
			}
			out = append(out, cells...)
		}

		if c.Distinct {
			key := rowKey(out)
			if seen[key] {
				continue
			}
			seen[key] = true
		}

		res.rows.Data = append(res.rows.Data, out)
		res.srcRows = append(res.srcRows, row)
	}

	return res, nil
}

// columnNames expands the projected column list to result column
// names, with `*` standing in for every column of the source table.
func columnNames(t *store.Table, cols []ast.Selectable) []string {
	var names []string
	for _, col := range cols {
		if len(col.RPN) == 1 {
			if _, ok := col.RPN[0].(ast.All); ok {
				for _, c := range t.Columns() {
					names = append(names, c.Name)
				}
				continue
			}
		}
		names = append(names, col.ColumnName)
	}
	return names
}

// combine reduces two result sets with one set operator. All four
// operators require the same column count on both sides; the left
// side's column names win, matching the usual SQL convention that a
// compound SELECT is named by its first component.
func combine(op ast.SetOp, left, right *Rows) (*Rows, error) {
	if len(left.Columns) != len(right.Columns) {
		return nil, &errs.ExecError{Op: "union_mismatch"}
	}

	out := &Rows{Columns: left.Columns}

	switch op {

	case ast.SetUnionAll:
		out.Data = append(append(out.Data, left.Data...), right.Data...)

	case ast.SetUnion:
		seen := make(map[uint64]bool)
		for _, row := range left.Data {
			key := rowKey(row)
			if seen[key] {
				continue
			}
			seen[key] = true
			out.Data = append(out.Data, row)
		}
		for _, row := range right.Data {
			key := rowKey(row)
			if seen[key] {
				continue
			}
			seen[key] = true
			out.Data = append(out.Data, row)
		}

	case ast.SetIntersect:
		inRight := make(map[uint64]bool)
		for _, row := range right.Data {
			inRight[rowKey(row)] = true
		}
		emitted := make(map[uint64]bool)
		for _, row := range left.Data {
			key := rowKey(row)
			if inRight[key] && !emitted[key] {
				emitted[key] = true
				out.Data = append(out.Data, row)
			}
		}

	case ast.SetExcept:
		inRight := make(map[uint64]bool)
		for _, row := range right.Data {
			inRight[rowKey(row)] = true
		}
		emitted := make(map[uint64]bool)
		for _, row := range left.Data {
			key := rowKey(row)
			if !inRight[key] && !emitted[key] {
				emitted[key] = true
				out.Data = append(out.Data, row)
			}
		}
	}

	return out, nil
}

// orderRows sorts res.rows.Data in place by the ORDER BY terms. Each
// key expression is evaluated with the result row's cells exposed as
// aliases, so ordering by a projected alias works; when the result
// came from a single plain SELECT the source row is supplied too, so
// ordering by an unprojected table column also works.
func orderRows(res *selResult, orderBy []ast.OrderTerm) error {

	n := len(res.rows.Data)
	keys := make([][]value.Value, n)

	for i := 0; i < n; i++ {
		aliases := make(map[string]value.Value, len(res.rows.Columns))
		for j, name := range res.rows.Columns {
			if j < len(res.rows.Data[i]) {
				aliases[name] = res.rows.Data[i][j]
			}
		}
		ctx := eval.Context{Aliases: aliases, Funcs: funcs}
		if res.src != nil && i < len(res.srcRows) {
			ctx.Table = res.src
			ctx.Row = res.srcRows[i]
		}
		keys[i] = make([]value.Value, len(orderBy))
		for j, term := range orderBy {
			v, err := eval.EvalScalar(ctx, term.Expr)
			if err != nil {
				return err
			}
			keys[i][j] = v
		}
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for j, term := range orderBy {
			c := keys[idx[a]][j].Compare(keys[idx[b]][j])
			if term.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})

	sorted := make([][]value.Value, n)
	for i, j := range idx {
		sorted[i] = res.rows.Data[j]
	}
	res.rows.Data = sorted
	return nil
}

// sliceRowsByLimitOffset applies OFFSET then LIMIT to result rows,
// with the same negative-limit-means-unbounded rule as the matching
// clauses routine.
func sliceRowsByLimitOffset(data [][]value.Value, limit, offset *int64) [][]value.Value {
	off := int64(0)
	if offset != nil {
		off = *offset
	}
	if off > int64(len(data)) {
		off = int64(len(data))
	}
	data = data[off:]
	if limit != nil && *limit >= 0 && int64(len(data)) > *limit {
		data = data[:*limit]
	}
	return data
}
