package main

import (
	"os"

	"github.com/nikbrunner/bmtidy/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
