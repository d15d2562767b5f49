// Package main is the entry point for fluentctl.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/fluentcrm-tools/fluentctl/internal/cli"
)

func main() {
	cli.Init()

	if err := cli.RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error:"), err)
		os.Exit(1)
	}
}
