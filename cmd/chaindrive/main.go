package main

import (
	"os"

	"chaindrive/cmd/chaindrive/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
