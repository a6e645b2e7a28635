package main

import (
	"os"

	"github.com/cexll/swe-action/internal/cli"
	"github.com/cexll/swe-action/internal/logging"
)

func main() {
	logger := logging.NewLogger(os.Stderr, logging.LevelInfo)
	if err := cli.Execute(os.Args[1:], logger); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
