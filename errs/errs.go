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

// Package errs defines the typed error family returned by MollyDB's
// tokenizer, parser, executor, and transaction manager.
package errs

import (
	"fmt"
	"strings"
)

// ParseError represents an error encountered while tokenizing or parsing.
type ParseError struct {
	Found    string
	Expected []string
	Line     int
	Column   int
}

// Error returns the string representation of the error.
func (e *ParseError) Error() string {
	if len(e.Expected) == 0 {
		return fmt.Sprintf("Error at line %d, column %d: Unexpected value: %s", e.Line, e.Column, e.Found)
	}
	return fmt.Sprintf("Error at line %d, column %d: Unexpected value: %s (expected %s)", e.Line, e.Column, e.Found, strings.Join(e.Expected, ", "))
}

// PositionError represents a bare positional parse error with no
// specific found/expected pair worth naming.
type PositionError struct {
	Detail string
	Line   int
	Column int
}

// Error returns the string representation of the error.
func (e *PositionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("Error near line %d, column %d", e.Line, e.Column)
	}
	return fmt.Sprintf("Error near line %d, column %d: %s", e.Line, e.Column, e.Detail)
}

// ExecError represents an error raised while executing a statement
// against the table store.
type ExecError struct {
	Op     string
	Table  string
	Column string
	Value  string
	Detail string
}

// Error returns the string representation of the error.
func (e *ExecError) Error() string {
	switch e.Op {
	case "no_table":
		return fmt.Sprintf("Table '%s' does not exist", e.Table)
	case "no_column":
		if e.Table == "" {
			return fmt.Sprintf("Column '%s' does not exist", e.Column)
		}
		return fmt.Sprintf("Column '%s' does not exist in table '%s'", e.Column, e.Table)
	case "type_mismatch":
		return fmt.Sprintf("Found different data types for column '%s' and value '%s'", e.Column, e.Value)
	case "div_zero":
		return "Division by zero"
	case "union_mismatch":
		return "Columns mismatch between SELECT statements in Union"
	default:
		return e.Detail
	}
}

// TxnError represents an error raised by the transaction manager.
type TxnError struct {
	Detail string
}

// Error returns the string representation of the error.
func (e *TxnError) Error() string {
	return e.Detail
}

var (
	ErrNoTransaction     = &TxnError{Detail: "No transaction is currently active"}
	ErrNestedTransaction = &TxnError{Detail: "Nested transactions are not allowed"}
)

// ErrSavepointNotFound builds the typed error for an unknown savepoint name.
func ErrSavepointNotFound(name string) error {
	return &TxnError{Detail: fmt.Sprintf("Savepoint '%s' does not exist", name)}
}
