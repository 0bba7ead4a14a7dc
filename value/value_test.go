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

package value

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {

	Convey("Total order follows NULL < Numeric < Text < Blob", t, func() {

		So(NullValue.Compare(NullValue), ShouldEqual, -1)
		So(NullValue.Compare(NewInteger(0)), ShouldEqual, -1)
		So(NewText("a").Compare(NullValue), ShouldEqual, 1)

		So(NewText("0").Compare(NewReal(0.0)), ShouldEqual, 1)
		So(NewInteger(999).Compare(NewText("1")), ShouldEqual, -1)
		So(NewBlob([]byte{0x01}).Compare(NewReal(9.9)), ShouldEqual, 1)

		So(NewInteger(42).Compare(NewReal(42.01)), ShouldEqual, -1)
		So(NewReal(42.0).Compare(NewInteger(42)), ShouldEqual, 0)
		So(NewInteger(42).Compare(NewReal(2.0)), ShouldEqual, 1)

		So(NewText("abcd").Compare(NewBlob([]byte("abca"))), ShouldEqual, -1)
		So(NewBlob([]byte("abcd")).Compare(NewText("abce")), ShouldEqual, 1)

		So(NewText("abcd").Compare(NewText("abce")), ShouldEqual, -1)
		So(NewText("abcd").Compare(NewText("abc")), ShouldEqual, 1)
		So(NewText("1234xyz").Compare(NewText("1234xyz")), ShouldEqual, 0)
	})

	Convey("NaN sorts below every finite Real and equal to itself", t, func() {
		nan := NewReal(math.NaN())
		So(nan.Compare(nan), ShouldEqual, 0)
		So(nan.Compare(NewReal(-1e300)), ShouldEqual, -1)
		So(NewReal(-1e300).Compare(nan), ShouldEqual, 1)
	})

	Convey("Sorting by total order twice is a no-op", t, func() {
		vals := []Value{NewInteger(3), NullValue, NewText("x"), NewReal(1.5), NewInteger(-2)}
		once := sortedCopy(vals)
		twice := sortedCopy(once)
		for i := range once {
			So(once[i].ExactlyEqual(twice[i]), ShouldBeTrue)
		}
	})
}

func sortedCopy(in []Value) []Value {
	out := make([]Value, len(in))
	copy(out, in)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Compare(out[j]) > 0; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

func TestEquality(t *testing.T) {

	Convey("Eq is SQL equality, LooseEq is the convenience form", t, func() {
		So(NullValue.Eq(NullValue), ShouldBeFalse)
		So(NullValue.LooseEq(NullValue), ShouldBeTrue)
		So(NewInteger(567).Eq(NewReal(567.0)), ShouldBeTrue)
		So(NewInteger(567).Eq(NewText("567")), ShouldBeFalse)
	})

	Convey("ExactlyEqual is type-strict", t, func() {
		So(NullValue.ExactlyEqual(NullValue), ShouldBeTrue)
		So(NewInteger(1).ExactlyEqual(NewReal(1.0)), ShouldBeFalse)
		So(NewBlob([]byte{1, 2, 3}).ExactlyEqual(NewBlob([]byte{1, 2, 3})), ShouldBeTrue)
	})

	Convey("Equal values hash equal", t, func() {
		So(NewInteger(567).Hash(), ShouldEqual, NewInteger(567).Hash())
		So(NewInteger(1).Hash(), ShouldEqual, NewReal(1.0).Hash())
		So(NewReal(0.0).Hash(), ShouldEqual, NewReal(math.Copysign(0, -1)).Hash())
		So(NewText("1").Hash(), ShouldNotEqual, NewInteger(1).Hash())
	})
}

func TestCasts(t *testing.T) {

	Convey("CastToReal consumes a lossy numeric prefix", t, func() {
		f, ok := NewText("    -.543.21.9.abc").CastToReal()
		So(ok, ShouldBeTrue)
		So(f, ShouldEqual, -0.543)

		f, ok = NewText("    1000test").CastToReal()
		So(ok, ShouldBeTrue)
		So(f, ShouldEqual, 1000.0)

		f, ok = NewText("").CastToReal()
		So(ok, ShouldBeTrue)
		So(f, ShouldEqual, 0.0)
	})

	Convey("CastToRealLossless requires the whole string to parse", t, func() {
		_, ok := NewText("  1000").CastToRealLossless()
		So(ok, ShouldBeFalse)

		f, ok := NewText("-1234.567").CastToRealLossless()
		So(ok, ShouldBeTrue)
		So(f, ShouldEqual, -1234.567)
	})

	Convey("CastToInt saturates at the int64 bounds", t, func() {
		i, ok := NewText("9223372036854775808").CastToInt()
		So(ok, ShouldBeTrue)
		So(i, ShouldEqual, int64(math.MaxInt64))

		i, ok = NewText("-9223372036854775810").CastToInt()
		So(ok, ShouldBeTrue)
		So(i, ShouldEqual, int64(math.MinInt64))

		i, ok = NewReal(1e19).CastToInt()
		So(ok, ShouldBeTrue)
		So(i, ShouldEqual, int64(math.MaxInt64))

		i, ok = NewReal(1e18).CastToInt()
		So(ok, ShouldBeTrue)
		So(i, ShouldEqual, int64(1000000000000000000))
	})

	Convey("CastToIntLossless rejects a partial or overflowing parse", t, func() {
		_, ok := NewText("1234.567").CastToIntLossless()
		So(ok, ShouldBeFalse)

		_, ok = NewText("9223372036854775808").CastToIntLossless()
		So(ok, ShouldBeFalse)

		i, ok := NewText("+1").CastToIntLossless()
		So(ok, ShouldBeTrue)
		So(i, ShouldEqual, 1)
	})

	Convey("Blob casts round-trip through valid UTF-8 text", t, func() {
		s, ok := NewBlob([]byte("abc")).CastToText()
		So(ok, ShouldBeTrue)
		So(s, ShouldEqual, "abc")

		b, ok := NewText("abc").CastToBlob()
		So(ok, ShouldBeTrue)
		So(b, ShouldResemble, []byte("abc"))
	})
}
