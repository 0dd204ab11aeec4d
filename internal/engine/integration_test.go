package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uiverify/internal/runner"
	"uiverify/internal/scenario"
)

// newAppServer serves a stand-in for the shopping list app with the
// elements the built-in scenarios depend on.
func newAppServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("action") != "get_members" {
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"name": "Rafa", "access": "Sí"},
			{"name": "Invitado", "access": "No"},
		})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, filepath.Join("testdata", "index.html"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type engineCase struct {
	name   string
	driver func(t *testing.T) runner.Driver
}

func engines() []engineCase {
	return []engineCase{
		{Playwright, func(t *testing.T) runner.Driver {
			d, err := New(Playwright, Options{})
			require.NoError(t, err)
			return d
		}},
		{Rod, func(t *testing.T) runner.Driver {
			bin, ok := launcher.LookPath()
			if !ok {
				t.Skip("no local chromium for rod")
			}
			d, err := New(Rod, Options{BrowserBin: bin})
			require.NoError(t, err)
			return d
		}},
	}
}

// requireBrowser skips the test when the engine cannot start a browser here.
func requireBrowser(t *testing.T, d runner.Driver) {
	t.Helper()
	sess, err := d.Open(context.Background(), runner.SessionOptions{Headless: true})
	if err != nil {
		t.Skipf("%s not available: %v", d.Name(), err)
	}
	require.NoError(t, sess.Close())
}

func newRunner(d runner.Driver, dir string) *runner.Runner {
	return runner.New(d, runner.Options{
		Headless:          true,
		OutputDir:         dir,
		DefaultTimeout:    5 * time.Second,
		NavigationTimeout: 10 * time.Second,
	})
}

func TestBuiltinScenariosAgainstApp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	srv := newAppServer(t)

	for _, ec := range engines() {
		t.Run(ec.name, func(t *testing.T) {
			d := ec.driver(t)
			requireBrowser(t, d)

			for _, name := range scenario.Names() {
				t.Run(name, func(t *testing.T) {
					sc, err := scenario.Builtin(name, srv.URL+"/")
					require.NoError(t, err)
					dir := t.TempDir()

					res, err := newRunner(d, dir).Run(context.Background(), sc)
					require.NoError(t, err)

					data, err := os.ReadFile(res.Screenshot)
					require.NoError(t, err)
					assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")), "not a PNG")
				})
			}
		})
	}
}

func TestRerunOverwritesScreenshot(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	srv := newAppServer(t)
	d, err := New(Playwright, Options{})
	require.NoError(t, err)
	requireBrowser(t, d)

	sc, err := scenario.Builtin(scenario.UI, srv.URL+"/")
	require.NoError(t, err)
	dir := t.TempDir()
	r := newRunner(d, dir)

	_, err = r.Run(context.Background(), sc)
	require.NoError(t, err)
	_, err = r.Run(context.Background(), sc)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "verification.png"))
}

func TestUnreachableAppFailsNavigation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	srv := httptest.NewServer(http.NotFoundHandler())
	deadURL := srv.URL + "/"
	srv.Close()

	for _, ec := range engines() {
		t.Run(ec.name, func(t *testing.T) {
			d := ec.driver(t)
			requireBrowser(t, d)

			for _, name := range scenario.Names() {
				t.Run(name, func(t *testing.T) {
					sc, err := scenario.Builtin(name, deadURL)
					require.NoError(t, err)
					dir := t.TempDir()

					_, err = newRunner(d, dir).Run(context.Background(), sc)
					require.Error(t, err)
					assert.ErrorIs(t, err, runner.ErrNavigation)

					entries, err := os.ReadDir(dir)
					require.NoError(t, err)
					assert.Empty(t, entries)
				})
			}
		})
	}
}

func TestWrongMemberNeverShowsList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	srv := newAppServer(t)
	d, err := New(Playwright, Options{})
	require.NoError(t, err)
	requireBrowser(t, d)

	memberInput := runner.Label("Nombre de miembro:")
	sc := runner.Scenario{
		Name: "guest",
		Steps: []runner.Step{
			runner.Navigate{URL: srv.URL + "/"},
			runner.WaitVisible{Locator: memberInput},
			runner.Fill{Locator: memberInput, Value: "Invitado"},
			runner.Click{Locator: runner.Role("button", "Entrar")},
			runner.WaitVisible{Locator: runner.CSS(".shopping-list"), Timeout: time.Second},
			runner.Click{Locator: runner.Role("button", "Filtros")},
			runner.Screenshot{Path: "guest.png"},
		},
	}
	dir := t.TempDir()
	_, err = newRunner(d, dir).Run(context.Background(), sc)
	require.Error(t, err)
	assert.ErrorIs(t, err, runner.ErrTimeout)

	var stepErr *runner.StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, 4, stepErr.Index)
	assert.NoFileExists(t, filepath.Join(dir, "guest.png"))
}
