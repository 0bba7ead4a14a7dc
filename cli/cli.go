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

// Package cli wires MollyDB's command-line interface: an interactive
// SQL prompt, script execution, and version output.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mollydb/molly/cnf"
	"github.com/mollydb/molly/log"
)

var opts *cnf.Options

var conf string

var mainCmd = &cobra.Command{
	Use:   "molly",
	Short: "MollyDB command-line interface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return repl(args)
	},
}

func init() {

	mainCmd.AddCommand(
		sqlCmd,
		versionCmd,
	)

	opts = cnf.Defaults()

	mainCmd.PersistentFlags().StringVarP(&conf, "conf", "c", "", "Path to an hjson configuration file")
	mainCmd.PersistentFlags().StringVar(&opts.Logging.Level, "log-level", "info", "The minimum log level to output")
	mainCmd.PersistentFlags().StringVar(&opts.Logging.Output, "log-output", "stderr", "Where log output is written")
	mainCmd.PersistentFlags().StringVar(&opts.Logging.Format, "log-format", "text", "The format of log output")
	mainCmd.PersistentFlags().StringVar(&opts.Logging.File, "log-file", "", "Mirror log output into this file")

	cobra.OnInitialize(setup)

}

// setup validates and applies the logging configuration once cobra has
// parsed the flags, reading the configuration file first so explicit
// flags win over it.
func setup() {

	if conf != "" {
		loaded, err := cnf.Load(conf)
		if err != nil {
			log.Fatalf("Could not read configuration file %s: %v", conf, err)
		}
		flags := mainCmd.PersistentFlags()
		if flags.Changed("log-level") {
			loaded.Logging.Level = opts.Logging.Level
		}
		if flags.Changed("log-output") {
			loaded.Logging.Output = opts.Logging.Output
		}
		if flags.Changed("log-format") {
			loaded.Logging.Format = opts.Logging.Format
		}
		if flags.Changed("log-file") {
			loaded.Logging.File = opts.Logging.File
		}
		opts = loaded
	}

	var chk map[string]bool

	chk = map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
		"panic": true,
	}

	if _, ok := chk[opts.Logging.Level]; !ok {
		log.Fatal("Incorrect log level specified")
	}

	chk = map[string]bool{
		"text": true,
		"json": true,
	}

	if _, ok := chk[opts.Logging.Format]; !ok {
		log.Fatal("Incorrect log format specified")
	}

	chk = map[string]bool{
		"none":   true,
		"stdout": true,
		"stderr": true,
	}

	if _, ok := chk[opts.Logging.Output]; !ok {
		log.Fatal("Incorrect log output specified")
	}

	log.SetLevel(opts.Logging.Level)
	log.SetFormat(opts.Logging.Format)
	log.SetOutput(opts.Logging.Output)

	// Mirror log output into a file through a secondary
	// logging hook when one is specified

	if opts.Logging.File != "" {

		fle, err := os.OpenFile(opts.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("Could not open log file %s: %v", opts.Logging.File, err)
		}

		hook := &log.DefaultHook{}
		hook.SetLevel(opts.Logging.Level)
		hook.SetFormat(opts.Logging.Format)
		hook.SetWriter(fle)

		log.Hook(hook)

	}

}

// Init runs the cli app.
func Init() {
	if err := mainCmd.Execute(); err != nil {
		os.Exit(-1)
	}
}
