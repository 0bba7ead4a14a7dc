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

package token

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func kinds(src string) []Kind {
	s := New(src)
	var out []Kind
	for {
		t := s.Next()
		out = append(out, t.Kind)
		if t.Kind == EOF {
			return out
		}
	}
}

func TestScanner(t *testing.T) {

	Convey("Keywords fold case-insensitively", t, func() {
		So(kinds("select Where fRoM"), ShouldResemble, []Kind{SELECT, WHERE, FROM, EOF})
	})

	Convey("A minus before a digit is lexed as the literal's sign", t, func() {
		So(kinds("-5"), ShouldResemble, []Kind{INT, EOF})
		So(kinds("a-5"), ShouldResemble, []Kind{IDENT, INT, EOF})
	})

	Convey("Real literals accept an optional exponent", t, func() {
		s := New("1.5e10")
		tok := s.Next()
		So(tok.Kind, ShouldEqual, FLOAT)
		So(tok.Lit, ShouldEqual, "1.5e10")
	})

	Convey("Comments and whitespace are skipped", t, func() {
		So(kinds("SELECT -- trailing\n1 /* block */ + 2"), ShouldResemble,
			[]Kind{SELECT, INT, PLUS, INT, EOF})
	})

	Convey("An unterminated string yields ILLEGAL, not a panic", t, func() {
		So(kinds("'abc"), ShouldResemble, []Kind{ILLEGAL, EOF})
	})

	Convey("Line and column are 1-based and advance on newline", t, func() {
		s := New("a\nb")
		first := s.Next()
		second := s.Next()
		So(first.Line, ShouldEqual, 1)
		So(second.Line, ShouldEqual, 2)
		So(second.Column, ShouldEqual, 1)
	})
}
