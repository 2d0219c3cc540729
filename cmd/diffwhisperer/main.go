package main

import (
	"fmt"
	"os"

	"github.com/freema/diffwhisperer/internal/apperror"
	"github.com/freema/diffwhisperer/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(apperror.ExitCode(err))
	}
}
