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

package parser

import (
	"fmt"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mollydb/molly/ast"
	"github.com/mollydb/molly/value"
)

// rpnText flattens an RPN sequence to a readable token list so tests
// can assert on expression shape directly.
func rpnText(rpn []ast.Elem) []string {
	out := make([]string, 0, len(rpn))
	for _, el := range rpn {
		switch t := el.(type) {
		case ast.All:
			out = append(out, "*")
		case ast.ColumnRef:
			out = append(out, t.Name)
		case ast.Lit:
			switch t.Val.Kind() {
			case value.Integer:
				out = append(out, fmt.Sprintf("%d", t.Val.Int()))
			case value.Real:
				out = append(out, fmt.Sprintf("%g", t.Val.Float()))
			case value.Text:
				out = append(out, "'"+t.Val.Str()+"'")
			case value.Null:
				out = append(out, "NULL")
			default:
				out = append(out, "?")
			}
		case ast.FuncCall:
			out = append(out, t.Name+"()")
		case ast.CmpOp:
			names := map[ast.CmpKind]string{
				ast.CmpEq: "=", ast.CmpNeq: "!=", ast.CmpLt: "<", ast.CmpLte: "<=",
				ast.CmpGt: ">", ast.CmpGte: ">=", ast.CmpIs: "IS", ast.CmpIsNot: "IS NOT",
			}
			out = append(out, names[t.Op])
		case ast.InOp:
			if t.Not {
				out = append(out, "NOT IN")
			} else {
				out = append(out, "IN")
			}
		case ast.LogicOp:
			names := map[ast.LogicKind]string{ast.LogicAnd: "AND", ast.LogicOr: "OR", ast.LogicNot: "NOT"}
			out = append(out, names[t.Op])
		case ast.MathOp:
			names := map[ast.MathKind]string{
				ast.MathAdd: "+", ast.MathSub: "-", ast.MathMul: "*", ast.MathDiv: "/", ast.MathMod: "%",
			}
			out = append(out, names[t.Op])
		}
	}
	return out
}

func one(src string) (ast.Statement, error) {
	res := Generate(src)
	if len(res) != 1 {
		return nil, fmt.Errorf("expected 1 result, got %d", len(res))
	}
	return res[0].Stmt, res[0].Err
}

func TestWherePrecedence(t *testing.T) {

	Convey("Parenthesized WHERE keeps precedence in the RPN output", t, func() {
		stmt, err := one("SELECT x FROM t WHERE (id=1 OR id=2) AND NOT (v>5);")
		So(err, ShouldBeNil)

		sel := stmt.(*ast.Select)
		So(len(sel.Steps), ShouldEqual, 1)
		So(sel.Steps[0].Component.Where, ShouldNotBeNil)

		So(rpnText(sel.Steps[0].Component.Where.RPN), ShouldResemble,
			[]string{"id", "1", "=", "id", "2", "=", "OR", "v", "5", ">", "NOT", "AND"})
	})

	Convey("Arithmetic binds tighter than comparison, comparison tighter than AND", t, func() {
		stmt, err := one("SELECT x FROM t WHERE a + 1 * 2 > 3 AND b = 4;")
		So(err, ShouldBeNil)

		sel := stmt.(*ast.Select)
		So(rpnText(sel.Steps[0].Component.Where.RPN), ShouldResemble,
			[]string{"a", "1", "2", "*", "+", "3", ">", "b", "4", "=", "AND"})
	})

	Convey("IS NOT and IN fold into single RPN operators", t, func() {
		stmt, err := one("SELECT x FROM t WHERE a IS NOT NULL AND b IN (1, 2, 3);")
		So(err, ShouldBeNil)

		sel := stmt.(*ast.Select)
		So(rpnText(sel.Steps[0].Component.Where.RPN), ShouldResemble,
			[]string{"a", "NULL", "IS NOT", "b", "IN", "AND"})
	})
}

func TestStarDisambiguation(t *testing.T) {

	Convey("* is All in head position and multiply after an operand", t, func() {
		stmt, err := one("SELECT *, a * 2 FROM t;")
		So(err, ShouldBeNil)

		sel := stmt.(*ast.Select)
		cols := sel.Steps[0].Component.Columns
		So(len(cols), ShouldEqual, 2)
		So(rpnText(cols[0].RPN), ShouldResemble, []string{"*"})
		So(rpnText(cols[1].RPN), ShouldResemble, []string{"a", "2", "*"})
	})
}

func TestAliases(t *testing.T) {

	Convey("AS renames a projected column", t, func() {
		stmt, err := one("SELECT a + 1 AS total FROM t;")
		So(err, ShouldBeNil)

		sel := stmt.(*ast.Select)
		So(sel.Steps[0].Component.Columns[0].ColumnName, ShouldEqual, "total")
	})

	Convey("AS is rejected inside WHERE", t, func() {
		_, err := one("SELECT a FROM t WHERE a AS b;")
		So(err, ShouldNotBeNil)
	})
}

func TestSetOperatorPrecedence(t *testing.T) {

	Convey("INTERSECT binds tighter than UNION", t, func() {
		stmt, err := one("SELECT id FROM a UNION SELECT id FROM b INTERSECT SELECT id FROM c;")
		So(err, ShouldBeNil)

		sel := stmt.(*ast.Select)
		So(len(sel.Steps), ShouldEqual, 5)
		So(sel.Steps[0].Component.Table, ShouldEqual, "a")
		So(sel.Steps[1].Component.Table, ShouldEqual, "b")
		So(sel.Steps[2].Component.Table, ShouldEqual, "c")
		So(sel.Steps[3].IsOp, ShouldBeTrue)
		So(sel.Steps[3].Op, ShouldEqual, ast.SetIntersect)
		So(sel.Steps[4].IsOp, ShouldBeTrue)
		So(sel.Steps[4].Op, ShouldEqual, ast.SetUnion)
	})

	Convey("Equal-precedence operators associate left", t, func() {
		stmt, err := one("SELECT id FROM a UNION SELECT id FROM b EXCEPT SELECT id FROM c;")
		So(err, ShouldBeNil)

		sel := stmt.(*ast.Select)
		So(len(sel.Steps), ShouldEqual, 5)
		So(sel.Steps[2].IsOp, ShouldBeTrue)
		So(sel.Steps[2].Op, ShouldEqual, ast.SetUnion)
		So(sel.Steps[4].Op, ShouldEqual, ast.SetExcept)
	})
}

func TestLimitOffset(t *testing.T) {

	Convey("A negative LIMIT parses and means unbounded", t, func() {
		stmt, err := one("SELECT a FROM t LIMIT -1;")
		So(err, ShouldBeNil)

		sel := stmt.(*ast.Select)
		So(sel.Limit, ShouldNotBeNil)
		So(*sel.Limit, ShouldEqual, int64(-1))
	})

	Convey("A negative OFFSET is a parse error", t, func() {
		_, err := one("SELECT a FROM t LIMIT 1 OFFSET -2;")
		So(err, ShouldNotBeNil)
	})
}

func TestStatementShapes(t *testing.T) {

	Convey("INSERT enforces uniform row arity", t, func() {
		_, err := one("INSERT INTO t VALUES (1, 2), (3);")
		So(err, ShouldNotBeNil)

		stmt, err := one("INSERT INTO t (a, b) VALUES (1, 2), (3, 4);")
		So(err, ShouldBeNil)
		ins := stmt.(*ast.InsertInto)
		So(len(ins.Rows), ShouldEqual, 2)
	})

	Convey("ALTER TABLE parses all four actions", t, func() {
		stmt, _ := one("ALTER TABLE t RENAME TO u;")
		So(stmt.(*ast.AlterTable).Action, ShouldHaveSameTypeAs, ast.RenameTable{})

		stmt, _ = one("ALTER TABLE t RENAME COLUMN a TO b;")
		So(stmt.(*ast.AlterTable).Action, ShouldHaveSameTypeAs, ast.RenameColumn{})

		stmt, _ = one("ALTER TABLE t ADD COLUMN c INTEGER;")
		So(stmt.(*ast.AlterTable).Action, ShouldHaveSameTypeAs, ast.AddColumn{})

		stmt, _ = one("ALTER TABLE t DROP COLUMN c;")
		So(stmt.(*ast.AlterTable).Action, ShouldHaveSameTypeAs, ast.DropColumn{})
	})

	Convey("Transaction statements parse with their optional clauses", t, func() {
		stmt, _ := one("BEGIN IMMEDIATE;")
		So(stmt.(*ast.Begin).Mode, ShouldEqual, "IMMEDIATE")

		stmt, _ = one("ROLLBACK TO SAVEPOINT sp;")
		So(stmt.(*ast.Rollback).Savepoint, ShouldEqual, "sp")

		stmt, _ = one("RELEASE sp;")
		So(stmt.(*ast.Release).Name, ShouldEqual, "sp")

		stmt, _ = one("END;")
		So(stmt, ShouldHaveSameTypeAs, &ast.Commit{})
	})
}

func TestResync(t *testing.T) {

	Convey("A bad statement is reported and the next one still parses", t, func() {
		res := Generate("SELEC a FROM t; SELECT a FROM t;")
		So(len(res), ShouldEqual, 2)
		So(res[0].Err, ShouldNotBeNil)
		So(res[1].Err, ShouldBeNil)
		So(res[1].Stmt, ShouldHaveSameTypeAs, &ast.Select{})
	})

	Convey("Statement lines are recorded for diagnostics", t, func() {
		res := Generate("SELECT a FROM t;\nSELECT b FROM t;")
		So(len(res), ShouldEqual, 2)
		So(res[0].Line, ShouldEqual, 1)
		So(res[1].Line, ShouldEqual, 2)
	})
}
