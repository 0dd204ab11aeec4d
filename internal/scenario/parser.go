package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"uiverify/internal/runner"
)

// File is the YAML form of a scenario.
//
//	name: checkout
//	viewport: {width: 1280, height: 800}
//	steps:
//	  - navigate: /
//	  - wait_visible: {css: .shopping-list}
//	    timeout_ms: 15000
//	  - fill: {label: "Nombre de miembro:"}
//	    value: Rafa
//	  - click: {role: button, name: Entrar}
//	  - screenshot: checkout.png
type File struct {
	Name           string           `yaml:"name"`
	Viewport       *runner.Viewport `yaml:"viewport"`
	SuccessMessage string           `yaml:"success_message"`
	Steps          []FileStep       `yaml:"steps"`
}

// FileStep holds exactly one action plus its modifiers.
type FileStep struct {
	Navigate    *string      `yaml:"navigate"`
	WaitVisible *FileLocator `yaml:"wait_visible"`
	Fill        *FileLocator `yaml:"fill"`
	Click       *FileLocator `yaml:"click"`
	Screenshot  *string      `yaml:"screenshot"`

	Value     string `yaml:"value"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// FileLocator names one locator kind.
type FileLocator struct {
	CSS   string `yaml:"css"`
	Label string `yaml:"label"`
	Role  string `yaml:"role"`
	Name  string `yaml:"name"`
	Text  string `yaml:"text"`
	First bool   `yaml:"first"`
}

// ParseFile reads a YAML scenario from path. Relative navigate targets
// resolve against baseURL.
func ParseFile(path, baseURL string) (runner.Scenario, error) {
	file, err := os.Open(path)
	if err != nil {
		return runner.Scenario{}, err
	}
	defer file.Close()
	return Parse(file, baseURL)
}

// Parse decodes a YAML scenario from r.
func Parse(r io.Reader, baseURL string) (runner.Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return runner.Scenario{}, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return runner.Scenario{}, errors.New("empty scenario file")
		}
		return runner.Scenario{}, fmt.Errorf("decode scenario: %w", err)
	}
	return f.Scenario(baseURL)
}

// Scenario converts f into a runnable scenario.
func (f File) Scenario(baseURL string) (runner.Scenario, error) {
	if strings.TrimSpace(f.Name) == "" {
		return runner.Scenario{}, errors.New("missing name in scenario")
	}
	if len(f.Steps) == 0 {
		return runner.Scenario{}, errors.New("scenario has no steps")
	}
	if f.Viewport != nil && (f.Viewport.Width <= 0 || f.Viewport.Height <= 0) {
		return runner.Scenario{}, fmt.Errorf("invalid viewport %dx%d", f.Viewport.Width, f.Viewport.Height)
	}
	sc := runner.Scenario{
		Name:           f.Name,
		Viewport:       f.Viewport,
		SuccessMessage: f.SuccessMessage,
	}
	for i, fs := range f.Steps {
		step, err := fs.step(baseURL)
		if err != nil {
			return runner.Scenario{}, fmt.Errorf("step %d: %w", i+1, err)
		}
		sc.Steps = append(sc.Steps, step)
	}
	return sc, nil
}

func (fs FileStep) step(baseURL string) (runner.Step, error) {
	var actions []string
	if fs.Navigate != nil {
		actions = append(actions, "navigate")
	}
	if fs.WaitVisible != nil {
		actions = append(actions, "wait_visible")
	}
	if fs.Fill != nil {
		actions = append(actions, "fill")
	}
	if fs.Click != nil {
		actions = append(actions, "click")
	}
	if fs.Screenshot != nil {
		actions = append(actions, "screenshot")
	}
	if len(actions) != 1 {
		return nil, fmt.Errorf("want exactly one action, got %d (%s)", len(actions), strings.Join(actions, ", "))
	}
	if fs.TimeoutMS < 0 {
		return nil, fmt.Errorf("negative timeout_ms %d", fs.TimeoutMS)
	}
	if fs.TimeoutMS > 0 && fs.WaitVisible == nil {
		return nil, fmt.Errorf("timeout_ms only applies to wait_visible")
	}

	switch actions[0] {
	case "navigate":
		target, err := resolveURL(baseURL, *fs.Navigate)
		if err != nil {
			return nil, err
		}
		return runner.Navigate{URL: target}, nil
	case "wait_visible":
		loc, err := fs.WaitVisible.locator()
		if err != nil {
			return nil, err
		}
		return runner.WaitVisible{Locator: loc, Timeout: time.Duration(fs.TimeoutMS) * time.Millisecond}, nil
	case "fill":
		loc, err := fs.Fill.locator()
		if err != nil {
			return nil, err
		}
		return runner.Fill{Locator: loc, Value: fs.Value}, nil
	case "click":
		loc, err := fs.Click.locator()
		if err != nil {
			return nil, err
		}
		return runner.Click{Locator: loc}, nil
	default:
		if strings.TrimSpace(*fs.Screenshot) == "" {
			return nil, errors.New("screenshot needs a path")
		}
		return runner.Screenshot{Path: *fs.Screenshot}, nil
	}
}

func (fl FileLocator) locator() (runner.Locator, error) {
	var (
		loc runner.Locator
		set int
	)
	if fl.CSS != "" {
		loc, set = runner.CSS(fl.CSS), set+1
	}
	if fl.Label != "" {
		loc, set = runner.Label(fl.Label), set+1
	}
	if fl.Role != "" {
		loc, set = runner.Role(fl.Role, fl.Name), set+1
	}
	if fl.Text != "" {
		loc, set = runner.Text(fl.Text), set+1
	}
	if set != 1 {
		return runner.Locator{}, fmt.Errorf("locator needs exactly one of css, label, role, text; got %d", set)
	}
	if fl.Name != "" && fl.Role == "" {
		return runner.Locator{}, errors.New("name is only valid with role")
	}
	if fl.First {
		loc = loc.FirstMatch()
	}
	return loc, nil
}

func resolveURL(baseURL, target string) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return "", fmt.Errorf("parse navigate target: %w", err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	return base.ResolveReference(ref).String(), nil
}
