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

// Package ast defines MollyDB's statement and expression node types:
// the typed tree the parser builds and the executor walks.
package ast

import "github.com/mollydb/molly/value"

// Elem is one item of an RPN-encoded expression: All, Column, Value,
// Function, Operator, LogicalOperator or MathOperator, per the
// selectable grammar.
type Elem interface {
	elem()
}

// All represents `*`: the whole current row. Only legal as the sole
// element of a top-level SELECT column.
type All struct{}

func (All) elem() {}

// ColumnRef names a column to look up in the current row.
type ColumnRef struct {
	Name string
}

func (ColumnRef) elem() {}

// Lit pushes a literal value.
type Lit struct {
	Val value.Value
}

func (Lit) elem() {}

// FuncCall evaluates each argument to one value and dispatches to the
// scalar function registry.
type FuncCall struct {
	Name string
	Args []Selectable
}

func (FuncCall) elem() {}

// CmpKind is a comparison operator.
type CmpKind int

const (
	CmpEq CmpKind = iota
	CmpNeq
	CmpLt
	CmpLte
	CmpGt
	CmpGte
	CmpIs
	CmpIsNot
)

// CmpOp is a binary comparison; result is Integer 0 or 1.
type CmpOp struct {
	Op CmpKind
}

func (CmpOp) elem() {}

// InOp tests the single operand already on the RPN stack for
// membership in a parenthesized list of expressions; each of Values is
// evaluated against the same row and compared with SQL equality.
type InOp struct {
	Values []Selectable
	Not    bool
}

func (InOp) elem() {}

// LogicKind is a boolean connective.
type LogicKind int

const (
	LogicAnd LogicKind = iota
	LogicOr
	LogicNot
)

// LogicOp is AND/OR (binary) or NOT (unary).
type LogicOp struct {
	Op LogicKind
}

func (LogicOp) elem() {}

// MathKind is an arithmetic operator.
type MathKind int

const (
	MathAdd MathKind = iota
	MathSub
	MathMul
	MathDiv
	MathMod
)

// MathOp is a binary arithmetic operator.
type MathOp struct {
	Op MathKind
}

func (MathOp) elem() {}

// Selectable is a parsed expression: an RPN sequence plus the column
// name it projects under (its own text, or an explicit alias).
type Selectable struct {
	RPN        []Elem
	ColumnName string
}
