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

package fn

import (
	"fmt"
	"math"
	"strings"

	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/value"
)

func arity(name string, args []value.Value, n int) error {
	if len(args) != n {
		return &errs.ExecError{Op: "bad_func", Detail: fmt.Sprintf("%s() takes %d argument(s)", name, n)}
	}
	return nil
}

func fnAbs(args []value.Value) (value.Value, error) {
	if err := arity("abs", args, 1); err != nil {
		return value.Value{}, err
	}
	v := args[0]
	if v.Kind() == value.Integer {
		n := v.Int()
		if n < 0 {
			n = -n
		}
		return value.NewInteger(n), nil
	}
	f, ok := v.NumericToF64()
	if !ok {
		return value.Value{}, &errs.ExecError{Op: "bad_func", Detail: "abs() requires a numeric argument"}
	}
	return value.NewReal(math.Abs(f)), nil
}

func fnLower(args []value.Value) (value.Value, error) {
	if err := arity("lower", args, 1); err != nil {
		return value.Value{}, err
	}
	s, ok := args[0].CastToText()
	if !ok {
		return value.NullValue, nil
	}
	return value.NewText(strings.ToLower(s)), nil
}

func fnUpper(args []value.Value) (value.Value, error) {
	if err := arity("upper", args, 1); err != nil {
		return value.Value{}, err
	}
	s, ok := args[0].CastToText()
	if !ok {
		return value.NullValue, nil
	}
	return value.NewText(strings.ToUpper(s)), nil
}

func fnLength(args []value.Value) (value.Value, error) {
	if err := arity("length", args, 1); err != nil {
		return value.Value{}, err
	}
	switch args[0].Kind() {
	case value.Blob:
		return value.NewInteger(int64(len(args[0].Bytes()))), nil
	case value.Null:
		return value.NullValue, nil
	default:
		s, _ := args[0].CastToText()
		return value.NewInteger(int64(len([]rune(s)))), nil
	}
}

func fnTrim(args []value.Value) (value.Value, error) {
	if err := arity("trim", args, 1); err != nil {
		return value.Value{}, err
	}
	s, ok := args[0].CastToText()
	if !ok {
		return value.NullValue, nil
	}
	return value.NewText(strings.TrimSpace(s)), nil
}

func fnConcat(args []value.Value) (value.Value, error) {
	var b strings.Builder
	for _, a := range args {
		if a.IsNull() {
			return value.NullValue, nil
		}
		s, _ := a.CastToText()
		b.WriteString(s)
	}
	return value.NewText(b.String()), nil
}

func fnCoalesce(args []value.Value) (value.Value, error) {
	for _, a := range args {
		if !a.IsNull() {
			return a, nil
		}
	}
	return value.NullValue, nil
}

func fnTypeof(args []value.Value) (value.Value, error) {
	if err := arity("typeof", args, 1); err != nil {
		return value.Value{}, err
	}
	return value.NewText(args[0].Kind().String()), nil
}

func fnSubstr(args []value.Value) (value.Value, error) {
	if len(args) != 2 && len(args) != 3 {
		return value.Value{}, &errs.ExecError{Op: "bad_func", Detail: "substr() takes 2 or 3 arguments"}
	}
	s, ok := args[0].CastToText()
	if !ok {
		return value.NullValue, nil
	}
	r := []rune(s)
	start, _ := args[1].CastToInt()
	if start < 1 {
		start = 1
	}
	if start > int64(len(r))+1 {
		start = int64(len(r)) + 1
	}
	length := int64(len(r)) - start + 1
	if len(args) == 3 {
		n, _ := args[2].CastToInt()
		if n < length {
			length = n
		}
	}
	if length < 0 {
		length = 0
	}
	return value.NewText(string(r[start-1 : start-1+length])), nil
}

func fnReplace(args []value.Value) (value.Value, error) {
	if err := arity("replace", args, 3); err != nil {
		return value.Value{}, err
	}
	s, ok1 := args[0].CastToText()
	old, ok2 := args[1].CastToText()
	n, ok3 := args[2].CastToText()
	if !ok1 || !ok2 || !ok3 {
		return value.NullValue, nil
	}
	return value.NewText(strings.ReplaceAll(s, old, n)), nil
}
