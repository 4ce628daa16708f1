package main

import (
	"fmt"
	"os"

	"github.com/jhoicas/device-rental-api/internal/interfaces/cli"
)

func main() {
	if err := cli.NewRootCommand(nil).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
