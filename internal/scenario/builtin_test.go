package scenario

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uiverify/internal/runner"
)

const baseURL = "http://localhost:5173/"

func TestNames(t *testing.T) {
	assert.Equal(t, []string{Layout, SideMenu, UI}, Names())
}

func TestBuiltinUnknown(t *testing.T) {
	_, err := Builtin("checkout", baseURL)
	assert.Error(t, err)
}

func TestLayoutScenario(t *testing.T) {
	sc, err := Builtin(Layout, baseURL)
	require.NoError(t, err)

	require.NotNil(t, sc.Viewport)
	assert.Equal(t, runner.Viewport{Width: 1280, Height: 800}, *sc.Viewport)
	assert.Equal(t, []runner.Step{
		runner.Navigate{URL: baseURL},
		runner.WaitVisible{Locator: runner.CSS(".desktop-layout-container"), Timeout: 10 * time.Second},
		runner.WaitVisible{Locator: runner.Text("Ver Resumen Completo")},
		runner.Screenshot{Path: "desktop_layout.png"},
	}, sc.Steps)
	assert.Contains(t, sc.SuccessMessage, "{path}")
}

func TestSideMenuScenario(t *testing.T) {
	sc, err := Builtin(SideMenu, baseURL)
	require.NoError(t, err)

	assert.Nil(t, sc.Viewport)
	assert.Empty(t, sc.SuccessMessage)
	require.Len(t, sc.Steps, 8)

	fill, ok := sc.Steps[2].(runner.Fill)
	require.True(t, ok)
	assert.Equal(t, "Rafa", fill.Value)
	assert.Equal(t, runner.Label("Nombre de miembro:"), fill.Locator)

	list, ok := sc.Steps[4].(runner.WaitVisible)
	require.True(t, ok)
	assert.Equal(t, 15*time.Second, list.Timeout)

	// the menu must be checked only after the filter button is clicked
	assert.Equal(t, runner.Click{Locator: runner.Role("button", "Filtros")}, sc.Steps[5])
	assert.Equal(t, runner.WaitVisible{Locator: runner.CSS(".filter-menu.is-open")}, sc.Steps[6])
	assert.Equal(t, runner.Screenshot{Path: "side_menu_open.png"}, sc.Steps[7])
}

func TestUIScenario(t *testing.T) {
	sc, err := Builtin(UI, "http://127.0.0.1:9999/")
	require.NoError(t, err)

	assert.Equal(t, []runner.Step{
		runner.Navigate{URL: "http://127.0.0.1:9999/"},
		runner.WaitVisible{Locator: runner.CSS("h1").FirstMatch(), Timeout: 10 * time.Second},
		runner.Screenshot{Path: "verification.png"},
	}, sc.Steps)
}
