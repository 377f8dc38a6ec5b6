package main

import (
	"os"

	"github.com/xraph/feeledger/cmd/feeledger/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
