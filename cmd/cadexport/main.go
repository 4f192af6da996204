package main

import (
	"os"

	"cad-exporter/internal/cli"
	"cad-exporter/internal/common/logger"
)

func main() {
	defer logger.Sync()

	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
