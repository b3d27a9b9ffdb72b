// Command snooker keeps score of snooker matches from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/roach88/snooker/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := cli.NewRootCommand().ExecuteContext(context.Background())
	if err == nil {
		return cli.ExitSuccess
	}

	// Commands report their own failures; anything else is printed here.
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return cli.ExitCommandError
	}
	if exitErr.Code != cli.ExitFailure {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return exitErr.Code
}
