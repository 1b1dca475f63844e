package main

import (
	"os"

	"github.com/headline-hq/chirper/cmd/chirper/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
