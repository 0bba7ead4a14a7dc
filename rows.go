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

package molly

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/mollydb/molly/value"
)

// Rows is a SELECT result: the projected column names and the data
// rows, each cell a dynamically typed value.
type Rows struct {
	Columns []string
	Data    [][]value.Value
}

// Len returns the number of result rows.
func (r *Rows) Len() int { return len(r.Data) }

// native converts a cell to its natural Go representation: int64,
// float64, string, []byte, or nil for NULL.
func native(v value.Value) interface{} {
	switch v.Kind() {
	case value.Integer:
		return v.Int()
	case value.Real:
		return v.Float()
	case value.Text:
		return v.Str()
	case value.Blob:
		return v.Bytes()
	}
	return nil
}

// Scan copies row i's cells into dest, one pointer per column, the
// way database/sql's Rows.Scan does. Supported destinations are
// *int64, *float64, *string, *[]byte and *interface{}; a NULL cell
// zeroes the destination.
func (r *Rows) Scan(i int, dest ...interface{}) error {

	if i < 0 || i >= len(r.Data) {
		return fmt.Errorf("row index %d out of range", i)
	}
	row := r.Data[i]
	if len(dest) != len(row) {
		return fmt.Errorf("expected %d destination(s), got %d", len(row), len(dest))
	}

	for j, d := range dest {
		cell := row[j]
		switch p := d.(type) {
		case *interface{}:
			*p = native(cell)
		case *int64:
			n, _ := cell.CastToInt()
			*p = n
		case *float64:
			f, _ := cell.CastToReal()
			*p = f
		case *string:
			s, _ := cell.CastToText()
			*p = s
		case *[]byte:
			b, _ := cell.CastToBlob()
			*p = b
		default:
			return fmt.Errorf("unsupported destination type %T for column %q", d, r.Columns[j])
		}
	}

	return nil

}

// Maps renders every row as a column-name -> native-value map.
func (r *Rows) Maps() []map[string]interface{} {
	out := make([]map[string]interface{}, len(r.Data))
	for i, row := range r.Data {
		m := make(map[string]interface{}, len(row))
		for j, cell := range row {
			if j < len(r.Columns) {
				m[r.Columns[j]] = native(cell)
			}
		}
		out[i] = m
	}
	return out
}

// Decode populates out, a pointer to a slice of structs, from the
// result rows; struct fields are matched to column names
// case-insensitively. It is a convenience over Maps and touches no
// execution semantics.
func (r *Rows) Decode(out interface{}) error {
	return mapstructure.Decode(r.Maps(), out)
}
