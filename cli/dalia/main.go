package main

import (
	"os"

	daliacmder "github.com/alexgoodison/dalia/cmd/dalia"
)

func main() {
	cmd := daliacmder.NewDaliaCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
