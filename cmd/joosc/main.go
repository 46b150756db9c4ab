// Command joosc is the CLI front end for the compiler core. It mirrors the
// teacher's cmd/dwscript/main.go shape: a tiny main that just calls into
// cmd.Execute and maps a returned error to a non-zero exit code (spec §6:
// "Exit code: 0 on success; non-zero on any diagnostic error or fatal
// error").
package main

import (
	"fmt"
	"os"

	"github.com/joos1w/joosc/cmd/joosc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
