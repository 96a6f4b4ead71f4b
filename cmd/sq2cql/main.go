package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/medizininformatik-initiative/feasibility-sq2cql/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands emit their own formatted error output; anything else
		// (flag parse errors, unknown subcommands) is reported here.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
