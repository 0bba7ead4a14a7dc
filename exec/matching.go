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

	"github.com/mollydb/molly/ast"
	"github.com/mollydb/molly/eval"
	"github.com/mollydb/molly/store"
	"github.com/mollydb/molly/value"
)

// matchingIndices is the shared WHERE/ORDER BY/LIMIT/OFFSET routine
// spec §4.5.1 describes, used by both UPDATE and DELETE to compute the
// row positions they act on.
func (e *Executor) matchingIndices(t *store.Table, where *ast.Selectable, orderBy []ast.OrderTerm, limit, offset *int64) ([]int, error) {
	var matched []int
	for _, pos := range t.VisibleRows() {
		row, _ := t.RowAt(pos)
		if where != nil {
			ok, err := eval.EvalBool(evalRowCtx(t, row), *where)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		matched = append(matched, pos)
	}

	if len(orderBy) == 0 {
		return sliceByLimitOffset(matched, limit, offset), nil
	}

	type keyed struct {
		pos  int
		keys []value.Value
	}
	items := make([]keyed, len(matched))
	for i, pos := range matched {
		row, _ := t.RowAt(pos)
		keys := make([]value.Value, len(orderBy))
		for j, term := range orderBy {
			v, err := eval.EvalScalar(evalRowCtx(t, row), term.Expr)
			if err != nil {
				return nil, err
			}
			keys[j] = v
		}
		items[i] = keyed{pos: pos, keys: keys}
	}
	sort.SliceStable(items, func(a, b int) bool {
		for i, term := range orderBy {
			c := items[a].keys[i].Compare(items[b].keys[i])
			if term.Desc {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.pos
	}
	return sliceByLimitOffset(out, limit, offset), nil
}

// sliceByLimitOffset applies OFFSET then LIMIT to an already-ordered
// slice of row positions. A negative limit means unbounded, per spec
// §4.2; an offset at or past the end yields an empty result.
func sliceByLimitOffset(positions []int, limit, offset *int64) []int {
	off := int64(0)
	if offset != nil {
		off = *offset
	}
	if off > int64(len(positions)) {
		off = int64(len(positions))
	}
	positions = positions[off:]
	if limit != nil && *limit >= 0 && int64(len(positions)) > *limit {
		positions = positions[:*limit]
	}
	return positions
}
