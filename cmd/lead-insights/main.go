package main

import (
	"fmt"
	"os"

	"lead-insights/cmd/lead-insights/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
