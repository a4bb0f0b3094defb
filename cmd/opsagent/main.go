package main

import (
	"os"

	"github.com/mensylisir/opsagent/cmd/opsagent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
