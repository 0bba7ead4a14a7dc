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

// Package datetime is the optional datetime scalar-function set spec
// §6 describes as living outside the engine core: DATE, TIME,
// DATETIME, JULIANDAY, UNIXEPOCH and TIMEDIFF, registered into fn's
// registry by this package's init func. A consumer that wants these
// functions blank-imports this package (see cli/sql.go); molly's core
// never imports it, keeping the engine itself free of a real-time
// dependency. Grounded in the teacher's own
// util/fncs/time.go, which is itself a pluggable set of time helpers
// registered into the same kind of name -> implementation table.
package datetime

import (
	"fmt"
	"time"

	"github.com/mollydb/molly/errs"
	"github.com/mollydb/molly/fn"
	"github.com/mollydb/molly/value"
)

func init() {
	fn.Register("date", fnDate)
	fn.Register("time", fnTime)
	fn.Register("datetime", fnDatetime)
	fn.Register("julianday", fnJulianDay)
	fn.Register("unixepoch", fnUnixEpoch)
	fn.Register("timediff", fnTimeDiff)
}

// argTime resolves a function argument to a time.Time: the bare string
// "now" (or no argument at all) means the current instant, otherwise
// the text is parsed as RFC3339.
func argTime(args []value.Value, i int) (time.Time, error) {
	if i >= len(args) {
		return time.Now().UTC(), nil
	}
	s, ok := args[i].CastToText()
	if !ok {
		return time.Time{}, &errs.ExecError{Op: "bad_func", Detail: "datetime functions require text arguments"}
	}
	if s == "now" || s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, &errs.ExecError{Op: "bad_func", Detail: fmt.Sprintf("could not parse datetime %q", s)}
	}
	return t.UTC(), nil
}

func fnDate(args []value.Value) (value.Value, error) {
	t, err := argTime(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewText(t.Format("2006-01-02")), nil
}

func fnTime(args []value.Value) (value.Value, error) {
	t, err := argTime(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewText(t.Format("15:04:05")), nil
}

func fnDatetime(args []value.Value) (value.Value, error) {
	t, err := argTime(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewText(t.Format(time.RFC3339)), nil
}

// julianEpoch is the Julian day number of the Unix epoch
// (1970-01-01T00:00:00Z), used to convert to/from Julian day numbers.
const julianEpoch = 2440587.5

func fnJulianDay(args []value.Value) (value.Value, error) {
	t, err := argTime(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	days := float64(t.UnixNano()) / 1e9 / 86400.0
	return value.NewReal(julianEpoch + days), nil
}

func fnUnixEpoch(args []value.Value) (value.Value, error) {
	t, err := argTime(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewInteger(t.Unix()), nil
}

func fnTimeDiff(args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return value.Value{}, &errs.ExecError{Op: "bad_func", Detail: "timediff() takes 2 arguments"}
	}
	a, err := argTime(args, 0)
	if err != nil {
		return value.Value{}, err
	}
	b, err := argTime(args, 1)
	if err != nil {
		return value.Value{}, err
	}
	return value.NewReal(b.Sub(a).Seconds()), nil
}
