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

package cnf

import (
	"os"

	"github.com/hjson/hjson-go"
)

// Options defines global configuration options for a Database instance.
type Options struct {
	Logging struct {
		Level  string // trace, debug, info, warn, error, fatal, panic
		Output string // stdout, stderr, none
		Format string // text, json
		File   string // path of a file to mirror log output into
	}

	Cache struct {
		Enabled bool  // whether the parsed-statement plan cache is used
		Size    int64 // approximate max cost, in bytes, of the plan cache
	}

	Debug struct {
		LogRollback bool // parsed from the config file but not read by the engine; txn logs rollback diffs whenever the level is trace
	}
}

// Defaults returns the Options a Database starts with absent an
// override file.
func Defaults() *Options {
	o := &Options{}
	o.Logging.Level = "info"
	o.Logging.Output = "stdout"
	o.Logging.Format = "text"
	o.Cache.Enabled = true
	o.Cache.Size = 1 << 20
	return o
}

// Load reads hjson-formatted overrides from path into o. A missing file
// is not an error; Load simply leaves the defaults in place.
func Load(path string) (*Options, error) {

	o := Defaults()

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return o, nil
		}
		return nil, err
	}

	var doc map[string]interface{}

	if err := hjson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}

	if v, ok := doc["logging"].(map[string]interface{}); ok {
		if s, ok := v["level"].(string); ok {
			o.Logging.Level = s
		}
		if s, ok := v["output"].(string); ok {
			o.Logging.Output = s
		}
		if s, ok := v["format"].(string); ok {
			o.Logging.Format = s
		}
		if s, ok := v["file"].(string); ok {
			o.Logging.File = s
		}
	}

	if v, ok := doc["cache"].(map[string]interface{}); ok {
		if b, ok := v["enabled"].(bool); ok {
			o.Cache.Enabled = b
		}
		if n, ok := v["size"].(float64); ok {
			o.Cache.Size = int64(n)
		}
	}

	if v, ok := doc["debug"].(map[string]interface{}); ok {
		if b, ok := v["logRollback"].(bool); ok {
			o.Debug.LogRollback = b
		}
	}

	return o, nil

}
