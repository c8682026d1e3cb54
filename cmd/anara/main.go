package main

import (
	"os"

	"github.com/anara-ai/anara/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
