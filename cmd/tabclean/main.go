// Package main provides the tabclean command-line tool.
package main

import (
	"os"

	"github.com/JonMunkholm/tabclean/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
