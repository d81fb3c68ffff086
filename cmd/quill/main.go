package main

import (
	"os"

	"github.com/chazu/quill/cmd/quill/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
