package main

import (
	"os"

	"github.com/taskhub/taskhub-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
