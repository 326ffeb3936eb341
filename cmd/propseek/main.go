// Package main provides the entry point for the propseek CLI.
package main

import (
	"os"

	"github.com/propseek/propseek/cmd/propseek/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
