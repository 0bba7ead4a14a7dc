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

// Package eval implements the stack-based evaluator that walks the RPN
// sequence inside an ast.Selectable against one row of a table, per
// spec §4.4. It is deliberately a vector-plus-cursor machine rather
// than a tree-walking interpreter, mirroring the teacher's own
// small-stack evaluators (e.g. sql/exprs.go) and spec §9's note to keep
// the RPN design rather than build an AST tree per expression.
package eval

import (
	"math"

	"github.com/mollydb/molly/ast"
	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/store"
	"github.com/mollydb/molly/value"
)

// FuncRegistry dispatches a scalar function call by name. It is
// satisfied by fn.Call, kept as a function type here so eval has no
// import-time dependency on the function registry's own dependencies
// (fn imports value/errs, and eval does not import fn).
type FuncRegistry func(name string, args []value.Value) (value.Value, error)

// Context bundles everything one Eval call needs: the table supplying
// column lookups, the row supplying cell values, an optional alias map
// for ORDER BY against a SELECT alias (spec §9's documented
// get_column-accepts-an-alias-slice behavior), and the function
// registry for FuncCall dispatch.
type Context struct {
	Table   *store.Table
	Row     store.Row
	Aliases map[string]value.Value
	Funcs   FuncRegistry
}

// EvalRow evaluates sel against ctx, expanding a bare `*` to every cell
// of the current row. It is the entry point used for a SELECT's
// projected columns, where `*` is legal.
func EvalRow(ctx Context, sel ast.Selectable) ([]value.Value, error) {
	if len(sel.RPN) == 1 {
		if _, ok := sel.RPN[0].(ast.All); ok {
			out := make([]value.Value, len(ctx.Row))
			copy(out, ctx.Row)
			return out, nil
		}
	}
	v, err := Eval(ctx, sel.RPN)
	if err != nil {
		return nil, err
	}
	return []value.Value{v}, nil
}

// EvalScalar evaluates sel to exactly one value; a bare `*` is an
// error here, since WHERE/ORDER BY/SET expressions may not use it.
func EvalScalar(ctx Context, sel ast.Selectable) (value.Value, error) {
	return Eval(ctx, sel.RPN)
}

// EvalBool evaluates sel and requires the SQL-truthy Integer 0/1
// result a WHERE clause must produce (spec §3's AST note).
func EvalBool(ctx Context, sel ast.Selectable) (bool, error) {
	v, err := EvalScalar(ctx, sel)
	if err != nil {
		return false, err
	}
	return v.Truthy(), nil
}

// Eval walks one RPN sequence over a working value stack, per spec
// §4.4. Exactly one value must remain on the stack when rpn is
// exhausted; anything else is an evaluator error.
func Eval(ctx Context, rpn []ast.Elem) (value.Value, error) {
	var stack []value.Value

	pop2 := func() (value.Value, value.Value, error) {
		if len(stack) < 2 {
			return value.Value{}, value.Value{}, errUnderflow()
		}
		b := stack[len(stack)-1]
		a := stack[len(stack)-2]
		stack = stack[:len(stack)-2]
		return a, b, nil
	}
	pop1 := func() (value.Value, error) {
		if len(stack) < 1 {
			return value.Value{}, errUnderflow()
		}
		a := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return a, nil
	}

	for _, el := range rpn {
		switch t := el.(type) {

		case ast.All:
			return value.Value{}, &errs.ExecError{
				Op:     "bad_all",
				Detail: "* is only allowed as the sole expression of a SELECT column",
			}

		case ast.Lit:
			stack = append(stack, t.Val)

		case ast.ColumnRef:
			v, err := resolveColumn(ctx, t.Name)
			if err != nil {
				return value.Value{}, err
			}
			stack = append(stack, v)

		case ast.FuncCall:
			args := make([]value.Value, len(t.Args))
			for i, a := range t.Args {
				av, err := EvalScalar(ctx, a)
				if err != nil {
					return value.Value{}, err
				}
				args[i] = av
			}
			v, err := ctx.Funcs(t.Name, args)
			if err != nil {
				return value.Value{}, err
			}
			stack = append(stack, v)

		case ast.CmpOp:
			a, b, err := pop2()
			if err != nil {
				return value.Value{}, err
			}
			v, err := evalCmp(t.Op, a, b)
			if err != nil {
				return value.Value{}, err
			}
			stack = append(stack, v)

		case ast.InOp:
			a, err := pop1()
			if err != nil {
				return value.Value{}, err
			}
			v, err := evalIn(ctx, t, a)
			if err != nil {
				return value.Value{}, err
			}
			stack = append(stack, v)

		case ast.LogicOp:
			if t.Op == ast.LogicNot {
				a, err := pop1()
				if err != nil {
					return value.Value{}, err
				}
				stack = append(stack, boolValue(!a.Truthy()))
				continue
			}
			a, b, err := pop2()
			if err != nil {
				return value.Value{}, err
			}
			var r bool
			switch t.Op {
			case ast.LogicAnd:
				r = a.Truthy() && b.Truthy()
			case ast.LogicOr:
				r = a.Truthy() || b.Truthy()
			}
			stack = append(stack, boolValue(r))

		case ast.MathOp:
			a, b, err := pop2()
			if err != nil {
				return value.Value{}, err
			}
			v, err := evalMath(t.Op, a, b)
			if err != nil {
				return value.Value{}, err
			}
			stack = append(stack, v)

		default:
			return value.Value{}, &errs.ExecError{Op: "bad_expr", Detail: "unrecognized expression element"}
		}
	}

	if len(stack) != 1 {
		return value.Value{}, &errs.ExecError{
			Op:     "bad_expr",
			Detail: "expression did not reduce to a single value",
		}
	}
	return stack[0], nil
}

func errUnderflow() error {
	return &errs.ExecError{Op: "bad_expr", Detail: "operator stack underflow"}
}

func boolValue(b bool) value.Value {
	if b {
		return value.NewInteger(1)
	}
	return value.NewInteger(0)
}

func resolveColumn(ctx Context, name string) (value.Value, error) {
	if ctx.Aliases != nil {
		if v, ok := ctx.Aliases[name]; ok {
			return v, nil
		}
	}
	if ctx.Table == nil {
		return value.Value{}, &errs.ExecError{Op: "no_column", Column: name}
	}
	idx, ok := ctx.Table.IndexOfColumn(name)
	if !ok {
		return value.Value{}, &errs.ExecError{
			Op:     "no_column",
			Table:  ctx.Table.Name(),
			Column: name,
		}
	}
	return ctx.Row[idx], nil
}

// isOp implements IS: NULL IS NULL is true, NULL IS x (x non-null) is
// false, and otherwise IS falls back to SQL equality, per spec §4.4.
func isOp(a, b value.Value) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() && b.IsNull()
	}
	return a.Eq(b)
}

func evalCmp(op ast.CmpKind, a, b value.Value) (value.Value, error) {
	switch op {
	case ast.CmpIs:
		return boolValue(isOp(a, b)), nil
	case ast.CmpIsNot:
		return boolValue(!isOp(a, b)), nil
	}

	// Numeric promotion: if both sides are numeric, compare by f64
	// value rather than the total order's Integer/Real tie-breaking,
	// per spec §4.4 ("if both are numeric use f64 comparison").
	af, aok := a.NumericToF64()
	bf, bok := b.NumericToF64()

	var cmp int
	if aok && bok {
		switch {
		case math.IsNaN(af) || math.IsNaN(bf):
			cmp = a.Compare(b)
		case af < bf:
			cmp = -1
		case af > bf:
			cmp = 1
		default:
			cmp = 0
		}
	} else {
		cmp = a.Compare(b)
	}

	switch op {
	case ast.CmpEq:
		return boolValue(a.Eq(b)), nil
	case ast.CmpNeq:
		return boolValue(!a.Eq(b)), nil
	case ast.CmpLt:
		return boolValue(cmp < 0), nil
	case ast.CmpLte:
		return boolValue(cmp <= 0), nil
	case ast.CmpGt:
		return boolValue(cmp > 0), nil
	case ast.CmpGte:
		return boolValue(cmp >= 0), nil
	}
	return value.Value{}, &errs.ExecError{Op: "bad_expr", Detail: "unknown comparison operator"}
}

func evalIn(ctx Context, op ast.InOp, a value.Value) (value.Value, error) {
	found := false
	for _, sel := range op.Values {
		v, err := EvalScalar(ctx, sel)
		if err != nil {
			return value.Value{}, err
		}
		if a.Eq(v) {
			found = true
			break
		}
	}
	if op.Not {
		found = !found
	}
	return boolValue(found), nil
}

func evalMath(op ast.MathKind, a, b value.Value) (value.Value, error) {
	if op == ast.MathMod {
		if a.Kind() != value.Integer || b.Kind() != value.Integer {
			return value.Value{}, &errs.ExecError{Op: "bad_expr", Detail: "% requires integer operands"}
		}
		if b.Int() == 0 {
			return value.Value{}, &errs.ExecError{Op: "div_zero"}
		}
		return value.NewInteger(a.Int() % b.Int()), nil
	}

	aIsInt := a.Kind() == value.Integer
	bIsInt := b.Kind() == value.Integer

	af, aok := a.NumericToF64()
	bf, bok := b.NumericToF64()
	if !aok || !bok {
		return value.Value{}, &errs.ExecError{Op: "bad_expr", Detail: "arithmetic requires numeric operands"}
	}

	if aIsInt && bIsInt {
		ai := a.Int()
		bi := b.Int()
		switch op {
		case ast.MathAdd:
			return value.NewInteger(ai + bi), nil
		case ast.MathSub:
			return value.NewInteger(ai - bi), nil
		case ast.MathMul:
			return value.NewInteger(ai * bi), nil
		case ast.MathDiv:
			if bi == 0 {
				return value.Value{}, &errs.ExecError{Op: "div_zero"}
			}
			return value.NewInteger(ai / bi), nil
		}
	}

	switch op {
	case ast.MathAdd:
		return value.NewReal(af + bf), nil
	case ast.MathSub:
		return value.NewReal(af - bf), nil
	case ast.MathMul:
		return value.NewReal(af * bf), nil
	case ast.MathDiv:
		if bf == 0 {
			return value.Value{}, &errs.ExecError{Op: "div_zero"}
		}
		return value.NewReal(af / bf), nil
	}
	return value.Value{}, &errs.ExecError{Op: "bad_expr", Detail: "unknown arithmetic operator"}
}
