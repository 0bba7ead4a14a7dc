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
	"strconv"

	"github.com/mollydb/molly/ast"
	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/token"
	"github.com/mollydb/molly/value"
)

func (p *Parser) parseCreateTable() (ast.Statement, error) {
	p.advance() // CREATE
	if _, err := p.shouldBe(token.TABLE); err != nil {
		return nil, err
	}
	ifNotExists := false
	if p.accept(token.IF) {
		if _, err := p.shouldBe(token.NOT); err != nil {
			return nil, err
		}
		if _, err := p.shouldBe(token.EXISTS); err != nil {
			return nil, err
		}
		ifNotExists = true
	}
	name, err := p.shouldBe(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.shouldBe(token.LPAREN); err != nil {
		return nil, err
	}
	var cols []ast.ColumnDef
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if _, err := p.shouldBe(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.CreateTable{Table: name.Lit, IfNotExists: ifNotExists, Columns: cols}, nil
}

// parseColumnDef reads `name type [constraint...]`. Constraints are
// accepted as raw token text and carried, unevaluated, on the AST node
// per spec §3.
func (p *Parser) parseColumnDef() (ast.ColumnDef, error) {
	name, err := p.shouldBe(token.IDENT)
	if err != nil {
		return ast.ColumnDef{}, err
	}
	kind, err := p.parseTypeName()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	var constraints []string
	for !p.mightBe(token.COMMA) && !p.mightBe(token.RPAREN) &&
		!p.mightBe(token.SEMICOLON) && !p.mightBe(token.EOF) {
		constraints = append(constraints, p.advance().Lit)
	}
	return ast.ColumnDef{Name: name.Lit, Type: kind, Constraints: constraints}, nil
}

func (p *Parser) parseTypeName() (value.Kind, error) {
	switch p.cur.Kind {
	case token.INTEGER:
		p.advance()
		return value.Integer, nil
	case token.REAL:
		p.advance()
		return value.Real, nil
	case token.TEXT:
		p.advance()
		return value.Text, nil
	case token.BLOB:
		p.advance()
		return value.Blob, nil
	case token.NULL:
		p.advance()
		return value.Null, nil
	}
	return 0, p.unexpected("INTEGER, REAL, TEXT, BLOB or NULL")
}

func (p *Parser) parseDropTable() (ast.Statement, error) {
	p.advance() // DROP
	if _, err := p.shouldBe(token.TABLE); err != nil {
		return nil, err
	}
	ifExists := false
	if p.accept(token.IF) {
		if _, err := p.shouldBe(token.EXISTS); err != nil {
			return nil, err
		}
		ifExists = true
	}
	name, err := p.shouldBe(token.IDENT)
	if err != nil {
		return nil, err
	}
	return &ast.DropTable{Table: name.Lit, IfExists: ifExists}, nil
}

func (p *Parser) parseInsertInto() (ast.Statement, error) {
	p.advance() // INSERT
	if _, err := p.shouldBe(token.INTO); err != nil {
		return nil, err
	}
	name, err := p.shouldBe(token.IDENT)
	if err != nil {
		return nil, err
	}

	var cols []string
	if p.accept(token.LPAREN) {
		for {
			c, err := p.shouldBe(token.IDENT)
			if err != nil {
				return nil, err
			}
			cols = append(cols, c.Lit)
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, err := p.shouldBe(token.RPAREN); err != nil {
			return nil, err
		}
	}

	if _, err := p.shouldBe(token.VALUES); err != nil {
		return nil, err
	}

	var rows [][]value.Value
	for {
		if _, err := p.shouldBe(token.LPAREN); err != nil {
			return nil, err
		}
		var row []value.Value
		for {
			v, err := p.literalValue()
			if err != nil {
				return nil, err
			}
			row = append(row, v)
			if !p.accept(token.COMMA) {
				break
			}
		}
		if _, err := p.shouldBe(token.RPAREN); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if !p.accept(token.COMMA) {
			break
		}
	}

	want := len(cols)
	if want == 0 && len(rows) > 0 {
		want = len(rows[0])
	}
	for _, row := range rows {
		if len(row) != want {
			return nil, &errs.PositionError{
				Detail: "value rows must all have the same number of values",
				Line:   name.Line,
				Column: name.Column,
			}
		}
	}

	return &ast.InsertInto{Table: name.Lit, Columns: cols, Rows: rows}, nil
}

// parseOptionalOrderBy reads `ORDER BY expr [ASC|DESC] [, ...]` if
// present, shared by SELECT/UPDATE/DELETE.
func (p *Parser) parseOptionalOrderBy() ([]ast.OrderTerm, error) {
	if !p.accept(token.ORDER) {
		return nil, nil
	}
	if _, err := p.shouldBe(token.BY); err != nil {
		return nil, err
	}
	var terms []ast.OrderTerm
	for {
		expr, err := p.getSelectable()
		if err != nil {
			return nil, err
		}
		desc := false
		switch {
		case p.accept(token.ASC):
		case p.accept(token.DESC):
			desc = true
		}
		terms = append(terms, ast.OrderTerm{Expr: expr, Desc: desc})
		if !p.accept(token.COMMA) {
			break
		}
	}
	return terms, nil
}

// parseLimitOffset reads `LIMIT n [OFFSET m]` if present. A negative
// offset is a parse error; a negative limit is accepted and means
// unbounded per spec §4.2.
func (p *Parser) parseLimitOffset() (*int64, *int64, error) {
	if !p.accept(token.LIMIT) {
		return nil, nil, nil
	}
	tok, err := p.shouldBe(token.INT)
	if err != nil {
		return nil, nil, err
	}
	n, err := strconv.ParseInt(tok.Lit, 10, 64)
	if err != nil {
		return nil, nil, p.literalError(tok)
	}
	limit := n

	var offset *int64
	if p.accept(token.OFFSET) {
		otok, err := p.shouldBe(token.INT)
		if err != nil {
			return nil, nil, err
		}
		m, err := strconv.ParseInt(otok.Lit, 10, 64)
		if err != nil {
			return nil, nil, p.literalError(otok)
		}
		if m < 0 {
			return nil, nil, &errs.PositionError{
				Detail: "OFFSET must not be negative",
				Line:   otok.Line,
				Column: otok.Column,
			}
		}
		offset = &m
	}

	return &limit, offset, nil
}

func (p *Parser) parseUpdate() (ast.Statement, error) {
	p.advance() // UPDATE
	name, err := p.shouldBe(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.shouldBe(token.SET); err != nil {
		return nil, err
	}
	var assigns []ast.Assignment
	for {
		col, err := p.shouldBe(token.IDENT)
		if err != nil {
			return nil, err
		}
		if _, err := p.shouldBe(token.EQ); err != nil {
			return nil, err
		}
		val, err := p.getSelectable()
		if err != nil {
			return nil, err
		}
		assigns = append(assigns, ast.Assignment{Column: col.Lit, Value: val})
		if !p.accept(token.COMMA) {
			break
		}
	}
	where, err := p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	orderBy, err := p.parseOptionalOrderBy()
	if err != nil {
		return nil, err
	}
	limit, offset, err := p.parseLimitOffset()
	if err != nil {
		return nil, err
	}
	return &ast.Update{
		Table: name.Lit, Assignments: assigns, Where: where,
		OrderBy: orderBy, Limit: limit, Offset: offset,
	}, nil
}

func (p *Parser) parseOptionalWhere() (*ast.Selectable, error) {
	if !p.accept(token.WHERE) {
		return nil, nil
	}
	expr, err := p.getSelectable()
	if err != nil {
		return nil, err
	}
	return &expr, nil
}

func (p *Parser) parseDelete() (ast.Statement, error) {
	p.advance() // DELETE
	if _, err := p.shouldBe(token.FROM); err != nil {
		return nil, err
	}
	name, err := p.shouldBe(token.IDENT)
	if err != nil {
		return nil, err
	}
	where, err := p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	orderBy, err := p.parseOptionalOrderBy()
	if err != nil {
		return nil, err
	}
	limit, offset, err := p.parseLimitOffset()
	if err != nil {
		return nil, err
	}
	return &ast.Delete{
		Table: name.Lit, Where: where,
		OrderBy: orderBy, Limit: limit, Offset: offset,
	}, nil
}

func (p *Parser) parseAlterTable() (ast.Statement, error) {
	p.advance() // ALTER
	if _, err := p.shouldBe(token.TABLE); err != nil {
		return nil, err
	}
	name, err := p.shouldBe(token.IDENT)
	if err != nil {
		return nil, err
	}

	switch {
	case p.accept(token.RENAME):
		if p.accept(token.COLUMN) {
			old, err := p.shouldBe(token.IDENT)
			if err != nil {
				return nil, err
			}
			if _, err := p.shouldBe(token.TO); err != nil {
				return nil, err
			}
			newName, err := p.shouldBe(token.IDENT)
			if err != nil {
				return nil, err
			}
			return &ast.AlterTable{
				Table:  name.Lit,
				Action: ast.RenameColumn{OldName: old.Lit, NewName: newName.Lit},
			}, nil
		}
		if _, err := p.shouldBe(token.TO); err != nil {
			return nil, err
		}
		newName, err := p.shouldBe(token.IDENT)
		if err != nil {
			return nil, err
		}
		return &ast.AlterTable{Table: name.Lit, Action: ast.RenameTable{NewName: newName.Lit}}, nil

	case p.accept(token.ADD):
		p.accept(token.COLUMN)
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		return &ast.AlterTable{Table: name.Lit, Action: ast.AddColumn{Column: col}}, nil

	case p.accept(token.DROP):
		p.accept(token.COLUMN)
		col, err := p.shouldBe(token.IDENT)
		if err != nil {
			return nil, err
		}
		return &ast.AlterTable{Table: name.Lit, Action: ast.DropColumn{Name: col.Lit}}, nil
	}

	return nil, p.unexpected("RENAME, ADD or DROP")
}

func (p *Parser) parseBegin() (ast.Statement, error) {
	p.advance() // BEGIN
	mode := ""
	switch {
	case p.accept(token.DEFERRED):
		mode = "DEFERRED"
	case p.accept(token.IMMEDIATE):
		mode = "IMMEDIATE"
	case p.accept(token.EXCLUSIVE):
		mode = "EXCLUSIVE"
	}
	return &ast.Begin{Mode: mode}, nil
}

func (p *Parser) parseRollback() (ast.Statement, error) {
	p.advance() // ROLLBACK
	name := ""
	if p.accept(token.TO) {
		p.accept(token.SAVEPOINT)
		tok, err := p.shouldBe(token.IDENT)
		if err != nil {
			return nil, err
		}
		name = tok.Lit
	}
	return &ast.Rollback{Savepoint: name}, nil
}

func (p *Parser) parseSavepoint() (ast.Statement, error) {
	p.advance() // SAVEPOINT
	tok, err := p.shouldBe(token.IDENT)
	if err != nil {
		return nil, err
	}
	return &ast.SavepointStmt{Name: tok.Lit}, nil
}

func (p *Parser) parseRelease() (ast.Statement, error) {
	p.advance() // RELEASE
	p.accept(token.SAVEPOINT)
	tok, err := p.shouldBe(token.IDENT)
	if err != nil {
		return nil, err
	}
	return &ast.Release{Name: tok.Lit}, nil
}

// --------------------------------------------------------------------
// SELECT and the set-operator stack
// --------------------------------------------------------------------

func (p *Parser) parseSelect() (ast.Statement, error) {
	steps, err := p.parseSetOpStack()
	if err != nil {
		return nil, err
	}
	orderBy, err := p.parseOptionalOrderBy()
	if err != nil {
		return nil, err
	}
	limit, offset, err := p.parseLimitOffset()
	if err != nil {
		return nil, err
	}
	return &ast.Select{Steps: steps, OrderBy: orderBy, Limit: limit, Offset: offset}, nil
}

// setOpPrec gives INTERSECT higher precedence than UNION/UNION
// ALL/EXCEPT, per spec §4.2; all four are left-associative.
func setOpPrec(op ast.SetOp) int {
	if op == ast.SetIntersect {
		return 2
	}
	return 1
}

// parseSetOpStack parses one or more SELECT sub-statements joined by
// UNION/UNION ALL/INTERSECT/EXCEPT and reorders them via shunting-yard
// into the RPN set-operator stack described on ast.SetStep.
func (p *Parser) parseSetOpStack() ([]ast.SetStep, error) {
	var output []ast.SetStep
	var opStack []ast.SetOp

	first, err := p.parsePrimarySelect()
	if err != nil {
		return nil, err
	}
	output = append(output, ast.SetStep{Component: first})

	for {
		var op ast.SetOp
		switch {
		case p.mightBe(token.UNION):
			p.advance()
			op = ast.SetUnion
			if p.accept(token.ALL) {
				op = ast.SetUnionAll
			}
		case p.mightBe(token.INTERSECT):
			p.advance()
			op = ast.SetIntersect
		case p.mightBe(token.EXCEPT):
			p.advance()
			op = ast.SetExcept
		default:
			goto done
		}

		prec := setOpPrec(op)
		for len(opStack) > 0 && setOpPrec(opStack[len(opStack)-1]) >= prec {
			top := opStack[len(opStack)-1]
			opStack = opStack[:len(opStack)-1]
			output = append(output, ast.SetStep{IsOp: true, Op: top})
		}
		opStack = append(opStack, op)

		next, err := p.parsePrimarySelect()
		if err != nil {
			return nil, err
		}
		output = append(output, ast.SetStep{Component: next})
	}

done:
	for len(opStack) > 0 {
		top := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		output = append(output, ast.SetStep{IsOp: true, Op: top})
	}
	return output, nil
}

// parsePrimarySelect parses one `SELECT [DISTINCT] exprs FROM name
// [WHERE e]`, optionally wrapped in one layer of parentheses.
func (p *Parser) parsePrimarySelect() (*ast.SelectComponent, error) {
	wrapped := p.mightBe(token.LPAREN) && p.peek().Kind == token.SELECT
	if wrapped {
		p.advance()
	}

	if _, err := p.shouldBe(token.SELECT); err != nil {
		return nil, err
	}
	distinct := p.accept(token.DISTINCT)

	var cols []ast.Selectable
	for {
		col, err := p.selectable(true)
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if !p.accept(token.COMMA) {
			break
		}
	}

	if _, err := p.shouldBe(token.FROM); err != nil {
		return nil, err
	}
	table, err := p.shouldBe(token.IDENT)
	if err != nil {
		return nil, err
	}

	where, err := p.parseOptionalWhere()
	if err != nil {
		return nil, err
	}

	if wrapped {
		if _, err := p.shouldBe(token.RPAREN); err != nil {
			return nil, err
		}
	}

	return &ast.SelectComponent{
		Distinct: distinct,
		Columns:  cols,
		Table:    table.Lit,
		Where:    where,
	}, nil
}
