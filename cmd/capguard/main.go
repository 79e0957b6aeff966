package main

import (
	"os"

	"github.com/rustyeddy/capguard/cmd/capguard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
