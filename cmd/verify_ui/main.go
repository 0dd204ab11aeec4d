package main

import (
	"os"

	"uiverify/internal/cli"
	"uiverify/internal/scenario"
)

func main() {
	os.Exit(cli.RunBuiltin(scenario.UI))
}
