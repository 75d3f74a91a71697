// Package main provides the devrig CLI tool for driving the project's
// development and release lifecycle.
package main

import (
	"os"

	"github.com/devrig-io/devrig/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
