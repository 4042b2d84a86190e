package main

import (
	"os"

	"github.com/dgallion1/gridintel/cmd/gridintel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
