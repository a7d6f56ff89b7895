// Command formcheck validates a signup form read from a YAML file and
// prints its validation messages.
//
//	formcheck -async -taken admin,root signup.yaml
//	formcheck -interactive signup.yaml
//
// It exits 0 when the form is valid, 2 when it has messages and 1 on error.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/amp-labs/amp-editform/cli"
)

const exitInvalid = 2

func main() {
	valid, err := run(context.Background(), os.Args[1:], streams{
		term:   cli.Std(),
		out:    os.Stdout,
		errOut: os.Stderr,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "formcheck:", err) //nolint:errcheck
		os.Exit(1)
	}

	if !valid {
		os.Exit(exitInvalid)
	}
}
