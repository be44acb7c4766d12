// Package main is the entry point for the vanquote CLI.
package main

import (
	"os"

	"vanquote/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
