package main

import (
	"os"

	"github.com/conneroisu/navcheck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
