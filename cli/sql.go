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

package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mollydb/molly"
	"github.com/mollydb/molly/value"

	_ "github.com/mollydb/molly/fn/datetime"
)

var sqlCmd = &cobra.Command{
	Use:     "sql [flags] [file]",
	Short:   "Start an interactive SQL prompt, or execute a SQL script",
	Example: "  molly sql script.sql",
	RunE: func(cmd *cobra.Command, args []string) error {
		return repl(args)
	},
}

// repl drives the interactive prompt, or executes the given script
// file and exits. Reading from a pipe disables the prompt and the
// colouring, so `molly sql < script.sql` produces clean output.
func repl(args []string) error {

	db, err := molly.Open(opts)
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 1 {
		src, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		display(db.RunSQL(string(src)), false, 0)
		return nil
	}

	interactive := term.IsTerminal(int(os.Stdin.Fd()))

	if interactive {
		fmt.Print(logo)
	}

	in := bufio.NewScanner(os.Stdin)

	for {

		if interactive {
			fmt.Print(ansi.Color("molly> ", "cyan"))
		}

		if !in.Scan() {
			return in.Err()
		}

		line := strings.TrimSpace(in.Text())

		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		case "clear":
			if interactive {
				fmt.Print("\033[2J\033[H")
			}
			continue
		}

		began := time.Now()
		display(db.RunSQL(line), interactive, time.Since(began))

	}

}

// display prints each statement's outcome: every result row on its
// own line, errors in red when the terminal supports it, and a dim
// per-batch timing summary when interactive.
func display(results []molly.Result, interactive bool, took time.Duration) {

	total := 0

	for _, res := range results {

		if res.Err != nil {
			msg := res.Err.Error()
			if interactive {
				msg = ansi.Color(msg, "red")
			}
			fmt.Fprintln(os.Stderr, msg)
			continue
		}

		if res.Rows == nil {
			continue
		}

		for _, row := range res.Rows.Data {
			fmt.Println(renderRow(row))
			total++
		}

	}

	if interactive {
		summary := fmt.Sprintf("%s row(s) in %s", humanize.Comma(int64(total)), took.Round(time.Microsecond))
		fmt.Println(ansi.Color(summary, "black+h"))
	}

}

func renderRow(row []value.Value) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = renderCell(v)
	}
	return strings.Join(parts, "\t")
}

func renderCell(v value.Value) string {
	switch v.Kind() {
	case value.Integer:
		return fmt.Sprintf("%d", v.Int())
	case value.Real:
		return fmt.Sprintf("%g", v.Float())
	case value.Text:
		return v.Str()
	case value.Blob:
		return fmt.Sprintf("X'%x'", v.Bytes())
	default:
		return "NULL"
	}
}
