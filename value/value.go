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

// Package value implements MollyDB's dynamic value model: a tagged sum
// over Integer, Real, Text, Blob and Null with the total order, SQL
// equality, structural equality and casts the executor relies on.
package value

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/ugorji/go/codec"
)

// Kind identifies a Value's data type.
type Kind uint8

const (
	Integer Kind = iota
	Real
	Text
	Blob
	Null
)

// String returns the SQL type name for the kind, as used in error
// messages and CREATE TABLE column definitions.
func (k Kind) String() string {
	switch k {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Text:
		return "TEXT"
	case Blob:
		return "BLOB"
	default:
		return "NULL"
	}
}

// Value is a dynamically typed SQL cell.
type Value struct {
	kind Kind
	i    int64
	f    float64
	s    string
	b    []byte
}

// NewInteger returns an Integer value.
func NewInteger(i int64) Value { return Value{kind: Integer, i: i} }

// NewReal returns a Real value.
func NewReal(f float64) Value { return Value{kind: Real, f: f} }

// NewText returns a Text value.
func NewText(s string) Value { return Value{kind: Text, s: s} }

// NewBlob returns a Blob value. The slice is retained, not copied.
func NewBlob(b []byte) Value { return Value{kind: Blob, b: b} }

// NullValue is the singleton NULL value.
var NullValue = Value{kind: Null}

// Kind reports the value's type tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is NULL.
func (v Value) IsNull() bool { return v.kind == Null }

// Int returns the raw Integer payload; only meaningful when Kind() == Integer.
func (v Value) Int() int64 { return v.i }

// Float returns the raw Real payload; only meaningful when Kind() == Real.
func (v Value) Float() float64 { return v.f }

// Str returns the raw Text payload; only meaningful when Kind() == Text.
func (v Value) Str() string { return v.s }

// Bytes returns the raw Blob payload; only meaningful when Kind() == Blob.
func (v Value) Bytes() []byte { return v.b }

// Truthy reports whether v counts as true in a LogicalOperator
// evaluation: non-zero Integer is true, everything else is false.
func (v Value) Truthy() bool {
	return v.kind == Integer && v.i != 0
}

func (v Value) isNumeric() bool {
	return v.kind == Integer || v.kind == Real
}

// NumericToF64 casts an Integer or Real to float64; returns ok=false
// for any other kind, including Null.
func (v Value) NumericToF64() (float64, bool) {
	switch v.kind {
	case Integer:
		return float64(v.i), true
	case Real:
		return v.f, true
	default:
		return 0, false
	}
}

// --------------------------------------------------------------------
// Casts
// --------------------------------------------------------------------

// CastToText is the lossy Value -> string cast. Returns ok=false only
// for Null, or for a Blob that is not valid UTF-8.
func (v Value) CastToText() (string, bool) {
	switch v.kind {
	case Null:
		return "", false
	case Text:
		return v.s, true
	case Blob:
		if !utf8.Valid(v.b) {
			return "", false
		}
		return string(v.b), true
	case Integer:
		return strconv.FormatInt(v.i, 10), true
	case Real:
		return formatReal(v.f), true
	}
	return "", false
}

// CastToBlob is the lossy Value -> []byte cast.
func (v Value) CastToBlob() ([]byte, bool) {
	switch v.kind {
	case Null:
		return nil, false
	case Blob:
		out := make([]byte, len(v.b))
		copy(out, v.b)
		return out, true
	default:
		text, ok := v.CastToText()
		if !ok {
			return nil, false
		}
		return []byte(text), true
	}
}

// CastToReal is the lossy Value -> float64 cast: a leading sign,
// digits and an optional decimal point are consumed from the text
// form and everything after the first invalid character is dropped;
// an empty or all-invalid prefix casts to 0.
func (v Value) CastToReal() (float64, bool) {
	switch v.kind {
	case Null:
		return 0, false
	case Real:
		return v.f, true
	case Integer:
		return float64(v.i), true
	case Blob:
		text, ok := v.CastToText()
		if !ok {
			return 0, false
		}
		return NewText(text).CastToReal()
	case Text:
		return lossyRealFromText(v.s), true
	}
	return 0, false
}

// CastToRealLossless succeeds only when the entire (untrimmed) text
// form parses as a float64.
func (v Value) CastToRealLossless() (float64, bool) {
	switch v.kind {
	case Null:
		return 0, false
	case Real, Integer:
		return v.CastToReal()
	case Blob:
		text, ok := v.CastToText()
		if !ok {
			return 0, false
		}
		return NewText(text).CastToRealLossless()
	case Text:
		f, err := strconv.ParseFloat(v.s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// CastToInt is the lossy Value -> int64 cast. Real -> Int saturates at
// the int64 bounds; Text/Blob parse a leading integer prefix the same
// way CastToReal parses a leading real prefix, then saturate.
func (v Value) CastToInt() (int64, bool) {
	switch v.kind {
	case Null:
		return 0, false
	case Integer:
		return v.i, true
	case Real:
		return realToIntSaturating(v.f), true
	case Blob:
		text, ok := v.CastToText()
		if !ok {
			return 0, false
		}
		return NewText(text).CastToInt()
	case Text:
		prefix := lossyIntPrefix(v.s)
		if prefix == "" {
			return 0, true
		}
		return realToIntSaturating(lossyRealFromText(prefix)), true
	}
	return 0, false
}

// CastToIntLossless succeeds only when the entire (untrimmed) text
// form parses as a base-10 int64.
func (v Value) CastToIntLossless() (int64, bool) {
	switch v.kind {
	case Null:
		return 0, false
	case Integer, Real:
		return v.CastToInt()
	case Blob:
		text, ok := v.CastToText()
		if !ok {
			return 0, false
		}
		return NewText(text).CastToIntLossless()
	case Text:
		n, err := strconv.ParseInt(v.s, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func lossyRealPrefix(s string) string {
	s = strings.TrimSpace(s)
	hasPeriod := false
	idx := 0
	for idx < len(s) {
		c := s[idx]
		switch {
		case (c == '-' || c == '+') && idx == 0:
		case c >= '0' && c <= '9':
		case c == '.' && !hasPeriod:
			hasPeriod = true
		default:
			return s[:idx]
		}
		idx++
	}
	return s[:idx]
}

func lossyRealFromText(s string) float64 {
	prefix := lossyRealPrefix(s)
	if prefix == "" {
		return 0.0
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0.0
	}
	return f
}

func lossyIntPrefix(s string) string {
	s = strings.TrimSpace(s)
	idx := 0
	for idx < len(s) {
		c := s[idx]
		switch {
		case (c == '-' || c == '+') && idx == 0:
		case c >= '0' && c <= '9':
		default:
			return s[:idx]
		}
		idx++
	}
	return s[:idx]
}

func realToIntSaturating(f float64) int64 {
	if f >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	if f < float64(math.MinInt64) {
		return math.MinInt64
	}
	return int64(f)
}

func formatReal(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// --------------------------------------------------------------------
// Ordering and equality
// --------------------------------------------------------------------

// Compare implements MollyDB's total order: NULL sorts below every
// other value, including another NULL; NaN sorts below every finite
// Real; numerics compare by value across Integer/Real; non-numeric
// families order Numeric < Text < Blob; same-family Text/Blob compare
// lexicographically.
func (a Value) Compare(b Value) int {

	if a.kind == Null {
		return -1
	}
	if b.kind == Null {
		return 1
	}

	aNum, bNum := a.isNumeric(), b.isNumeric()

	switch {
	case aNum && bNum:
		if a.kind == Integer && b.kind == Integer {
			switch {
			case a.i < b.i:
				return -1
			case a.i > b.i:
				return 1
			default:
				return 0
			}
		}
		x, _ := a.NumericToF64()
		y, _ := b.NumericToF64()
		aNaN := a.kind == Real && math.IsNaN(a.f)
		bNaN := b.kind == Real && math.IsNaN(b.f)
		switch {
		case aNaN && bNaN:
			return 0
		case aNaN:
			return -1
		case bNaN:
			return 1
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	case aNum && !bNum:
		return -1
	case !aNum && bNum:
		return 1
	default:
		switch {
		case a.kind == Text && b.kind == Text:
			return strings.Compare(a.s, b.s)
		case a.kind == Blob && b.kind == Blob:
			return bytes.Compare(a.b, b.b)
		case a.kind == Text && b.kind == Blob:
			return -1
		case a.kind == Blob && b.kind == Text:
			return 1
		}
	}

	return 0
}

// Eq is SQL equality: true iff Compare is Equal. NULL eq NULL is
// false, matching IS/IS NOT rather than the convenience LooseEq below.
func (a Value) Eq(b Value) bool {
	return a.Compare(b) == 0
}

// LooseEq reproduces the source's observed convenience behavior where
// NULL == NULL is true; it exists for test helpers and structural
// comparisons, never for SQL `=`/`!=` evaluation. See spec §9.
func (a Value) LooseEq(b Value) bool {
	if a.kind == Null && b.kind == Null {
		return true
	}
	return a.Eq(b)
}

// ExactlyEqual is structural, type-strict equality used by rollback
// assertions: Integer(1) is not ExactlyEqual to Real(1.0).
func (a Value) ExactlyEqual(b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case Null:
		return true
	case Integer:
		return a.i == b.i
	case Real:
		return a.f == b.f
	case Text:
		return a.s == b.s
	case Blob:
		return bytes.Equal(a.b, b.b)
	}
	return false
}

// --------------------------------------------------------------------
// Canonical encoding and hashing
// --------------------------------------------------------------------

var cborHandle = &codec.CborHandle{}

// family tags for the canonical encoding. Integer and Real share one
// tag: SQL equality treats 1 and 1.0 as the same value, so a hash
// consistent with it must too.
const (
	encNumeric uint8 = iota
	encText
	encBlob
	encNull
)

type canonicalForm struct {
	K uint8
	F uint64 `codec:"f,omitempty"`
	S string `codec:"s,omitempty"`
	B []byte `codec:"b,omitempty"`
}

// Encode returns a canonical byte encoding of v, consistent with SQL
// equality: Integer and Real encode by their common f64 value, NaN is
// normalized to a fixed sentinel, negative zero to positive zero, and
// the family tag is always mixed in so Text("1") never encodes equal
// to the number 1.
func (v Value) Encode() []byte {
	var form canonicalForm
	switch v.kind {
	case Integer, Real:
		form.K = encNumeric
		f, _ := v.NumericToF64()
		switch {
		case math.IsNaN(f):
			form.F = math.MaxUint64
		case f == 0:
			form.F = 0
		default:
			form.F = math.Float64bits(f)
		}
	case Text:
		form.K = encText
		form.S = v.s
	case Blob:
		form.K = encBlob
		form.B = v.b
	default:
		form.K = encNull
	}
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, cborHandle)
	enc.MustEncode(&form)
	return buf
}

// Hash returns a hash consistent with Eq: equal values under Eq always
// hash equal. Real NaN hashes to a fixed sentinel.
func (v Value) Hash() uint64 {
	return xxhash.Sum64(v.Encode())
}
