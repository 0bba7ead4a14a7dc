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

// Package fn implements MollyDB's scalar function registry (spec §6):
// a name -> implementation map that the evaluator dispatches FuncCall
// nodes through. It is the same dispatch-by-name style as the
// teacher's own util/fncs.Run switch, reshaped into a registration map
// so external packages (fn/datetime) can add entries via Register
// without this package knowing about them.
package fn

import (
	"fmt"
	"strings"

	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/value"
)

// Func is one scalar function implementation: it receives already
// evaluated arguments and returns one Value.
type Func func(args []value.Value) (value.Value, error)

var registry = map[string]Func{}

// Register adds or replaces the implementation for name, folded to
// lower-case so lookups are case-insensitive like every other
// identifier in the dialect. Intended for extension packages (e.g.
// fn/datetime) to call from an init func.
func Register(name string, f Func) {
	registry[strings.ToLower(name)] = f
}

// aggregateNames lists the functions the parser accepts syntactically
// (spec §4.4: "Aggregate functions... parse but their execution is a
// non-goal") so Call can give a precise diagnostic rather than a bare
// "unknown function" for them.
var aggregateNames = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
}

// Call dispatches name to its registered implementation. Unknown names
// and recognized-but-unimplemented aggregate names both return an
// ExecError; the distinction only changes the message.
func Call(name string, args []value.Value) (value.Value, error) {
	lower := strings.ToLower(name)
	if f, ok := registry[lower]; ok {
		return f(args)
	}
	if aggregateNames[lower] {
		return value.Value{}, &errs.ExecError{
			Op:     "bad_func",
			Detail: fmt.Sprintf("aggregate function '%s' is not supported outside GROUP BY execution", name),
		}
	}
	return value.Value{}, &errs.ExecError{
		Op:     "bad_func",
		Detail: fmt.Sprintf("unknown function '%s'", name),
	}
}

func init() {
	Register("abs", fnAbs)
	Register("lower", fnLower)
	Register("upper", fnUpper)
	Register("length", fnLength)
	Register("trim", fnTrim)
	Register("concat", fnConcat)
	Register("coalesce", fnCoalesce)
	Register("typeof", fnTypeof)
	Register("substr", fnSubstr)
	Register("replace", fnReplace)
}
