package main

import (
	"fmt"
	"os"

	"github.com/gitpilot-go/gitpilot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "gitpilot: %v\n", err)
		os.Exit(1)
	}
}
