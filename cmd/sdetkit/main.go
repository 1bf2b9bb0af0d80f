package main

import (
	"os"

	"github.com/the-sdet/sdetkit/cmd/sdetkit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
