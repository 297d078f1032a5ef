package main

import (
	"os"

	"github.com/nebulabroadcast/html-template-builder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
