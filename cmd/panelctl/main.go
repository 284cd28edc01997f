package main

import (
	"os"

	"github.com/GTDGit/panel_api/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
