// Package main provides the entry point for the source-licenser CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/Sumatoshi-tech/source-licenser/cmd/source-licenser/commands"
	"github.com/Sumatoshi-tech/source-licenser/pkg/version"
)

func main() {
	version.InitBinaryVersion()

	err := commands.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
