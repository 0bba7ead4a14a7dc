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
	"strings"

	"github.com/mollydb/molly/ast"
	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/token"
	"github.com/mollydb/molly/value"
)

// opEntry is one entry on the shunting-yard operator stack: either a
// LeftParen marker or a pending operator elem plus its precedence.
type opEntry struct {
	paren bool
	elem  ast.Elem
	prec  int
}

// precedence table. Higher binds tighter. Matches the grammar's
// documented climb: function calls bind tightest, OR loosest.
const (
	precFunc  = 50
	precMul   = 40
	precAdd   = 35
	precCmp   = 30
	precEq    = 25
	precNot   = 20
	precAnd   = 15
	precOr    = 10
)

// prevKind tracks what kind of token was last emitted into the
// expression, so `*` can be told apart from Multiply and aliasing can
// be restricted to the expression's top level.
type prevKind int

const (
	prevStart prevKind = iota
	prevComma
	prevLParen
	prevOperand
	prevOperator
)

// getSelectable parses one RPN-encoded expression, stopping at the
// first token that cannot continue it (a comma, a clause keyword, a
// closing paren belonging to an outer context, or EOF). It implements
// the shunting-yard algorithm: a value stack (the RPN output) and an
// operator stack, with parentheses tracked as explicit stack markers.
// Aliasing is not accepted here; WHERE, ORDER BY, SET and function
// arguments may not carry `AS`.
func (p *Parser) getSelectable() (ast.Selectable, error) {
	return p.selectable(false)
}

// selectable is getSelectable plus optional alias support, used for a
// SELECT's projected columns where `AS ident` is legal at depth 0.
func (p *Parser) selectable(allowAlias bool) (ast.Selectable, error) {
	var output []ast.Elem
	var ops []opEntry
	var text strings.Builder
	prev := prevStart
	depth := 0

	pushOp := func(e ast.Elem, prec int, leftAssoc bool) {
		for len(ops) > 0 && !ops[len(ops)-1].paren {
			top := ops[len(ops)-1]
			if top.prec > prec || (top.prec == prec && leftAssoc) {
				output = append(output, top.elem)
				ops = ops[:len(ops)-1]
				continue
			}
			break
		}
		ops = append(ops, opEntry{elem: e, prec: prec})
	}

loop:
	for {
		tok := p.cur

		switch {

		case tok.Kind == token.LPAREN:
			ops = append(ops, opEntry{paren: true})
			depth++
			p.advance()
			text.WriteString("(")
			prev = prevLParen

		case tok.Kind == token.RPAREN:
			if depth == 0 {
				break loop
			}
			for len(ops) > 0 && !ops[len(ops)-1].paren {
				output = append(output, ops[len(ops)-1].elem)
				ops = ops[:len(ops)-1]
			}
			if len(ops) == 0 {
				return ast.Selectable{}, p.mismatchedParens()
			}
			ops = ops[:len(ops)-1]
			depth--
			p.advance()
			text.WriteString(")")
			prev = prevOperand

		case tok.Kind == token.STAR && (prev == prevStart || prev == prevComma || prev == prevLParen):
			output = append(output, ast.All{})
			p.advance()
			text.WriteString("*")
			prev = prevOperand

		case isLiteralTok(tok.Kind):
			val, err := p.literalValue()
			if err != nil {
				return ast.Selectable{}, err
			}
			output = append(output, ast.Lit{Val: val})
			text.WriteString(tok.Lit)
			prev = prevOperand

		case tok.Kind == token.IDENT:
			if p.peek().Kind == token.LPAREN {
				fc, ftext, err := p.funcCall()
				if err != nil {
					return ast.Selectable{}, err
				}
				output = append(output, fc)
				text.WriteString(ftext)
				prev = prevOperand
				continue loop
			}
			name := tok.Lit
			p.advance()
			if p.mightBe(token.DOT) {
				p.advance()
				part, err := p.shouldBe(token.IDENT)
				if err != nil {
					return ast.Selectable{}, err
				}
				name = name + "." + part.Lit
			}
			output = append(output, ast.ColumnRef{Name: name})
			text.WriteString(name)
			prev = prevOperand

		case tok.Kind == token.NOT && prev != prevOperand:
			pushOp(ast.LogicOp{Op: ast.LogicNot}, precNot, false)
			p.advance()
			text.WriteString("NOT ")
			prev = prevOperator

		case tok.Kind == token.MINUS && prev != prevOperand:
			// Unary minus: rewritten as 0 - operand, binding tightest
			// so it negates only the operand that follows it.
			output = append(output, ast.Lit{Val: value.NewInteger(0)})
			pushOp(ast.MathOp{Op: ast.MathSub}, precFunc, false)
			p.advance()
			text.WriteString("-")
			prev = prevOperator

		case tok.Kind == token.PLUS || tok.Kind == token.MINUS:
			kind := ast.MathAdd
			if tok.Kind == token.MINUS {
				kind = ast.MathSub
			}
			pushOp(ast.MathOp{Op: kind}, precAdd, true)
			p.advance()
			text.WriteString(tok.Lit)
			prev = prevOperator

		case tok.Kind == token.STAR || tok.Kind == token.SLASH || tok.Kind == token.PERCENT:
			kind := ast.MathMul
			switch tok.Kind {
			case token.SLASH:
				kind = ast.MathDiv
			case token.PERCENT:
				kind = ast.MathMod
			}
			pushOp(ast.MathOp{Op: kind}, precMul, true)
			p.advance()
			text.WriteString(tok.Lit)
			prev = prevOperator

		case tok.Kind == token.LT || tok.Kind == token.LTE || tok.Kind == token.GT || tok.Kind == token.GTE:
			kind := cmpKindOf(tok.Kind)
			pushOp(ast.CmpOp{Op: kind}, precCmp, true)
			p.advance()
			text.WriteString(tok.Lit)
			prev = prevOperator

		case tok.Kind == token.EQ || tok.Kind == token.NEQ:
			kind := ast.CmpEq
			if tok.Kind == token.NEQ {
				kind = ast.CmpNeq
			}
			pushOp(ast.CmpOp{Op: kind}, precEq, true)
			p.advance()
			text.WriteString(tok.Lit)
			prev = prevOperator

		case tok.Kind == token.IS:
			p.advance()
			kind := ast.CmpIs
			text.WriteString("IS ")
			if p.mightBe(token.NOT) {
				p.advance()
				kind = ast.CmpIsNot
				text.WriteString("NOT ")
			}
			pushOp(ast.CmpOp{Op: kind}, precEq, true)
			prev = prevOperator

		case tok.Kind == token.IN:
			p.advance()
			flushOpsAtOrAbove(&output, &ops, precEq)
			list, err := p.parseInList()
			if err != nil {
				return ast.Selectable{}, err
			}
			output = append(output, ast.InOp{Values: list})
			text.WriteString("IN (...)")
			prev = prevOperand

		case tok.Kind == token.NOT && p.peek().Kind == token.IN:
			p.advance()
			p.advance()
			flushOpsAtOrAbove(&output, &ops, precEq)
			list, err := p.parseInList()
			if err != nil {
				return ast.Selectable{}, err
			}
			output = append(output, ast.InOp{Values: list, Not: true})
			text.WriteString("NOT IN (...)")
			prev = prevOperand

		case tok.Kind == token.AND:
			pushOp(ast.LogicOp{Op: ast.LogicAnd}, precAnd, true)
			p.advance()
			text.WriteString("AND")
			prev = prevOperator

		case tok.Kind == token.OR:
			pushOp(ast.LogicOp{Op: ast.LogicOr}, precOr, true)
			p.advance()
			text.WriteString("OR")
			prev = prevOperator

		default:
			break loop
		}
	}

	for len(ops) > 0 {
		if ops[len(ops)-1].paren {
			return ast.Selectable{}, p.mismatchedParens()
		}
		output = append(output, ops[len(ops)-1].elem)
		ops = ops[:len(ops)-1]
	}

	colName := text.String()
	if allowAlias && depth == 0 && p.mightBe(token.AS) {
		p.advance()
		alias, err := p.shouldBe(token.IDENT)
		if err != nil {
			return ast.Selectable{}, err
		}
		colName = alias.Lit
	}

	return ast.Selectable{RPN: output, ColumnName: colName}, nil
}

func (p *Parser) mismatchedParens() error {
	return &errs.PositionError{
		Detail: "Mismatched parentheses found.",
		Line:   p.cur.Line,
		Column: p.cur.Column,
	}
}

// flushOpsAtOrAbove pops every non-paren operator of precedence >= min
// from ops onto output, left in place by pushOp's own logic for the
// generic operators; IN/NOT IN use it directly since, unlike the
// binary operators, they never go back onto the operator stack
// themselves (their "right operand" is the parenthesized list parsed
// immediately afterwards, not further RPN tokens).
func flushOpsAtOrAbove(output *[]ast.Elem, ops *[]opEntry, min int) {
	for len(*ops) > 0 && !(*ops)[len(*ops)-1].paren && (*ops)[len(*ops)-1].prec >= min {
		top := (*ops)[len(*ops)-1]
		*ops = (*ops)[:len(*ops)-1]
		*output = append(*output, top.elem)
	}
}

// parseInList parses the parenthesized, comma-separated expression
// list on the right of IN / NOT IN.
func (p *Parser) parseInList() ([]ast.Selectable, error) {
	if _, err := p.shouldBe(token.LPAREN); err != nil {
		return nil, err
	}
	var list []ast.Selectable
	if !p.mightBe(token.RPAREN) {
		for {
			item, err := p.getSelectable()
			if err != nil {
				return nil, err
			}
			list = append(list, item)
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.shouldBe(token.RPAREN); err != nil {
		return nil, err
	}
	return list, nil
}

func isLiteralTok(k token.Kind) bool {
	switch k {
	case token.INT, token.FLOAT, token.STRING, token.HEX, token.NULL, token.TRUE, token.FALSE:
		return true
	}
	return false
}

func cmpKindOf(k token.Kind) ast.CmpKind {
	switch k {
	case token.LT:
		return ast.CmpLt
	case token.LTE:
		return ast.CmpLte
	case token.GT:
		return ast.CmpGt
	case token.GTE:
		return ast.CmpGte
	}
	return ast.CmpEq
}

// literalValue consumes one literal token and returns its Value.
func (p *Parser) literalValue() (value.Value, error) {
	tok := p.advance()
	switch tok.Kind {
	case token.INT:
		n, err := strconv.ParseInt(tok.Lit, 10, 64)
		if err != nil {
			return value.Value{}, p.literalError(tok)
		}
		return value.NewInteger(n), nil
	case token.FLOAT:
		f, err := strconv.ParseFloat(tok.Lit, 64)
		if err != nil {
			return value.Value{}, p.literalError(tok)
		}
		return value.NewReal(f), nil
	case token.STRING:
		return value.NewText(tok.Lit), nil
	case token.HEX:
		b, err := hexDecode(tok.Lit)
		if err != nil {
			return value.Value{}, p.literalError(tok)
		}
		return value.NewBlob(b), nil
	case token.NULL:
		return value.NullValue, nil
	case token.TRUE:
		return value.NewInteger(1), nil
	case token.FALSE:
		return value.NewInteger(0), nil
	}
	return value.Value{}, p.literalError(tok)
}

// literalError builds the ParseError for a literal token that could
// not be converted to a Value (a malformed number or hex literal).
func (p *Parser) literalError(tok token.Token) error {
	return &errs.ParseError{
		Found:  tok.Lit,
		Line:   tok.Line,
		Column: tok.Column,
	}
}

var errMalformedHex = &errs.PositionError{Detail: "malformed hex literal"}

func hexDecode(s string) ([]byte, error) {
	out := make([]byte, len(s)/2)
	for i := range out {
		hi := hexVal(s[i*2])
		lo := hexVal(s[i*2+1])
		if hi < 0 || lo < 0 {
			return nil, errMalformedHex
		}
		out[i] = byte(hi<<4 | lo)
	}
	return out, nil
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// funcCall parses `name(arg, arg, ...)`, where each arg is itself a
// selectable expression.
func (p *Parser) funcCall() (ast.FuncCall, string, error) {
	name, err := p.shouldBe(token.IDENT)
	if err != nil {
		return ast.FuncCall{}, "", err
	}
	if _, err := p.shouldBe(token.LPAREN); err != nil {
		return ast.FuncCall{}, "", err
	}
	var text strings.Builder
	text.WriteString(name.Lit)
	text.WriteString("(")
	var args []ast.Selectable
	if !p.mightBe(token.RPAREN) {
		for {
			arg, err := p.getSelectable()
			if err != nil {
				return ast.FuncCall{}, "", err
			}
			args = append(args, arg)
			text.WriteString(arg.ColumnName)
			if !p.accept(token.COMMA) {
				break
			}
			text.WriteString(", ")
		}
	}
	if _, err := p.shouldBe(token.RPAREN); err != nil {
		return ast.FuncCall{}, "", err
	}
	text.WriteString(")")
	return ast.FuncCall{Name: name.Lit, Args: args}, text.String(), nil
}
