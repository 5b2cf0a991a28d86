package main

import (
	"fmt"
	"os"

	"github.com/gocribo/cribo/cmd/cribo/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cribo:", err)
		os.Exit(cli.ExitCodeFor(err))
	}
}
