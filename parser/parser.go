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

// Package parser turns a token stream into a slice of ast.Statement
// values, one per semicolon-terminated SQL statement.
package parser

import (
	"github.com/mollydb/molly/ast"
	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/token"
)

// Parser reads tokens with one token of lookahead beyond the current
// token, mirroring a classic recursive-descent shouldBe/mightBe design.
type Parser struct {
	sc  *token.Scanner
	cur token.Token
	la  *token.Token
}

// New returns a Parser over src.
func New(src string) *Parser {
	p := &Parser{sc: token.New(src)}
	p.cur = p.sc.Next()
	return p
}

func (p *Parser) peek() token.Token {
	if p.la == nil {
		t := p.sc.Next()
		p.la = &t
	}
	return *p.la
}

// advance returns the current token and loads the next one.
func (p *Parser) advance() token.Token {
	old := p.cur
	if p.la != nil {
		p.cur = *p.la
		p.la = nil
	} else {
		p.cur = p.sc.Next()
	}
	return old
}

// accept consumes and returns true if the current token has kind k.
func (p *Parser) accept(k token.Kind) bool {
	if p.cur.Kind == k {
		p.advance()
		return true
	}
	return false
}

// shouldBe consumes the current token if it has kind k, or returns a
// ParseError naming what was expected.
func (p *Parser) shouldBe(k token.Kind) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, &errs.ParseError{
			Found:    p.cur.Lit,
			Expected: []string{k.String()},
			Line:     p.cur.Line,
			Column:   p.cur.Column,
		}
	}
	return p.advance(), nil
}

// mightBe reports whether the current token has kind k without
// consuming it.
func (p *Parser) mightBe(k token.Kind) bool { return p.cur.Kind == k }

func (p *Parser) unexpected(expected ...string) error {
	return &errs.ParseError{
		Found:    p.cur.Lit,
		Expected: expected,
		Line:     p.cur.Line,
		Column:   p.cur.Column,
	}
}

// Result is one statement's parse outcome, in source order. Line is
// the line the statement's first token sits on, carried through so the
// executor's diagnostics can name where a failing statement began.
type Result struct {
	Stmt ast.Statement
	Line int
	Err  error
}

// Generate scans src into one Result per semicolon-terminated
// statement. A syntax error in one statement does not abort the whole
// input: the parser discards tokens up to and including the next
// semicolon and keeps going, so a single typo in a batch of statements
// surfaces one error without hiding the rest.
func Generate(src string) []Result {
	p := New(src)
	var out []Result

	for {
		for p.mightBe(token.SEMICOLON) {
			p.advance()
		}
		if p.mightBe(token.EOF) {
			return out
		}
		line := p.cur.Line
		stmt, err := p.parseStatement()
		if err == nil {
			_, err = p.shouldBe(token.SEMICOLON)
		}
		if err != nil {
			out = append(out, Result{Line: line, Err: err})
			p.resync()
			continue
		}
		out = append(out, Result{Stmt: stmt, Line: line})
	}
}

// Parse is Generate without the per-statement bookkeeping: it returns
// the successfully parsed statements and the errors separately.
func Parse(src string) ([]ast.Statement, []error) {
	var stmts []ast.Statement
	var errsOut []error
	for _, r := range Generate(src) {
		if r.Err != nil {
			errsOut = append(errsOut, r.Err)
			continue
		}
		stmts = append(stmts, r.Stmt)
	}
	return stmts, errsOut
}

// resync discards tokens up to and including the next semicolon, or
// until EOF, so parsing can continue after a syntax error.
func (p *Parser) resync() {
	for !p.mightBe(token.SEMICOLON) && !p.mightBe(token.EOF) {
		p.advance()
	}
	if p.mightBe(token.SEMICOLON) {
		p.advance()
	}
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur.Kind {
	case token.CREATE:
		return p.parseCreateTable()
	case token.DROP:
		return p.parseDropTable()
	case token.INSERT:
		return p.parseInsertInto()
	case token.SELECT:
		return p.parseSelect()
	case token.LPAREN:
		if p.peek().Kind == token.SELECT {
			return p.parseSelect()
		}
		return nil, p.unexpected("a statement")
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.ALTER:
		return p.parseAlterTable()
	case token.BEGIN:
		return p.parseBegin()
	case token.COMMIT, token.END:
		p.advance()
		return &ast.Commit{}, nil
	case token.ROLLBACK:
		return p.parseRollback()
	case token.SAVEPOINT:
		return p.parseSavepoint()
	case token.RELEASE:
		return p.parseRelease()
	}
	return nil, p.unexpected("a statement")
}
