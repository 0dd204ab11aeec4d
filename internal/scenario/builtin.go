package scenario

import (
	"fmt"
	"sort"
	"time"

	"uiverify/internal/runner"
)

const (
	Layout   = "layout"
	SideMenu = "side-menu"
	UI       = "ui"
)

// MemberName is the member the side-menu scenario logs in as.
const MemberName = "Rafa"

var builtins = map[string]func(baseURL string) runner.Scenario{
	Layout:   layout,
	SideMenu: sideMenu,
	UI:       ui,
}

// Builtin returns the named built-in scenario targeting baseURL.
func Builtin(name, baseURL string) (runner.Scenario, error) {
	build, ok := builtins[name]
	if !ok {
		return runner.Scenario{}, fmt.Errorf("unknown scenario %q", name)
	}
	return build(baseURL), nil
}

// Names lists the built-in scenarios in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// layout checks the desktop layout at 1280x800.
func layout(baseURL string) runner.Scenario {
	return runner.Scenario{
		Name:     Layout,
		Viewport: &runner.Viewport{Width: 1280, Height: 800},
		Steps: []runner.Step{
			runner.Navigate{URL: baseURL},
			runner.WaitVisible{Locator: runner.CSS(".desktop-layout-container"), Timeout: 10 * time.Second},
			runner.WaitVisible{Locator: runner.Text("Ver Resumen Completo")},
			runner.Screenshot{Path: "desktop_layout.png"},
		},
		SuccessMessage: "Screenshot saved to {path}",
	}
}

// sideMenu logs in and opens the filter side menu.
func sideMenu(baseURL string) runner.Scenario {
	memberInput := runner.Label("Nombre de miembro:")
	return runner.Scenario{
		Name: SideMenu,
		Steps: []runner.Step{
			runner.Navigate{URL: baseURL},
			runner.WaitVisible{Locator: memberInput},
			runner.Fill{Locator: memberInput, Value: MemberName},
			runner.Click{Locator: runner.Role("button", "Entrar")},
			runner.WaitVisible{Locator: runner.CSS(".shopping-list"), Timeout: 15 * time.Second},
			runner.Click{Locator: runner.Role("button", "Filtros")},
			runner.WaitVisible{Locator: runner.CSS(".filter-menu.is-open")},
			runner.Screenshot{Path: "side_menu_open.png"},
		},
	}
}

// ui checks that the page renders a top-level heading.
func ui(baseURL string) runner.Scenario {
	return runner.Scenario{
		Name: UI,
		Steps: []runner.Step{
			runner.Navigate{URL: baseURL},
			runner.WaitVisible{Locator: runner.CSS("h1").FirstMatch(), Timeout: 10 * time.Second},
			runner.Screenshot{Path: "verification.png"},
		},
	}
}
