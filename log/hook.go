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
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultHook mirrors log entries to a second sink with its own level
// cutoff and formatter, independent of the main logger's output. The
// cli uses it to copy engine logs into a file (--log-file) while the
// terminal keeps its own level and format.
type DefaultHook struct {
	w io.Writer
	l []logrus.Level
	f logrus.Formatter
}

func (h *DefaultHook) Levels() []logrus.Level {
	if h.l == nil {
		return InfoLevels
	}
	return h.l
}

func (h *DefaultHook) Fire(entry *logrus.Entry) error {
	if h.w == nil {
		return nil
	}
	if h.f == nil {
		h.SetFormat("text")
	}
	bit, err := h.f.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.w.Write(bit)
	return err
}

// SetLevel sets the level cutoff of the mirrored output.
func (h *DefaultHook) SetLevel(v string) {
	switch v {
	case "trace":
		h.l = TraceLevels
	case "debug":
		h.l = DebugLevels
	case "info":
		h.l = InfoLevels
	case "warn":
		h.l = WarnLevels
	case "error":
		h.l = ErrorLevels
	case "fatal":
		h.l = FatalLevels
	case "panic":
		h.l = PanicLevels
	}
}

// SetOutput directs the mirrored output to one of the process streams.
func (h *DefaultHook) SetOutput(v string) {
	switch v {
	case "none":
		h.w = ioutil.Discard
	case "stdout":
		h.w = os.Stdout
	case "stderr":
		h.w = os.Stderr
	}
}

// SetWriter directs the mirrored output to an arbitrary writer, such
// as an opened log file.
func (h *DefaultHook) SetWriter(w io.Writer) {
	h.w = w
}

// SetFormat sets the format of the mirrored output.
func (h *DefaultHook) SetFormat(v string) {
	switch v {
	case "json":
		h.f = &JSONFormatter{
			IgnoreFields: []string{
				"ctx",
				"vars",
			},
			TimestampFormat: time.RFC3339,
		}
	case "text":
		h.f = &TextFormatter{
			IgnoreFields: []string{
				"ctx",
				"vars",
			},
			TimestampFormat: time.RFC3339,
		}
	}
}
