// Command verify_layout captures the desktop layout of the app at 1280x800.
package main

import (
	"os"

	"uiverify/internal/cli"
	"uiverify/internal/scenario"
)

func main() {
	os.Exit(cli.RunBuiltin(scenario.Layout))
}
