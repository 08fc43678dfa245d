// Package main provides the entry point for the procon CLI.
package main

import (
	"os"

	"github.com/procon-dev/procon/cmd/procon/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
