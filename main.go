package main

import (
	"os"

	"github.com/ductcad/snapengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
