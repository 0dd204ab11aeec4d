// Command verify_side_menu logs in as a member and captures the open
// filter side menu.
package main

import (
	"os"

	"uiverify/internal/cli"
	"uiverify/internal/scenario"
)

func main() {
	os.Exit(cli.RunBuiltin(scenario.SideMenu))
}
