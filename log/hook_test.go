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

package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestDefaultHook(t *testing.T) {

	convey.Convey("A hook mirrors entries to its writer at its own level", t, func() {

		var buf bytes.Buffer

		hook := &DefaultHook{}
		hook.SetLevel("info")
		hook.SetFormat("json")
		hook.SetWriter(&buf)

		Hook(hook)

		SetLevel("debug")
		SetOutput("none")

		Info("mirrored line")
		convey.So(buf.String(), convey.ShouldContainSubstring, "mirrored line")
		convey.So(strings.TrimSpace(buf.String()), convey.ShouldStartWith, "{")

		// Below the hook's cutoff: the main logger accepts it but the
		// mirror does not fire.
		buf.Reset()
		Debug("too quiet")
		convey.So(buf.String(), convey.ShouldBeEmpty)
	})
}
