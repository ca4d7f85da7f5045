package main

import (
	"os"

	"github.com/worknest/worknest-engine/cmd"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cmd.Version = Version
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
