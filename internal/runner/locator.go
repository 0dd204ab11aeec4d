package runner

import (
	"fmt"
	"strings"
)

// LocatorKind selects how a Locator finds its element.
type LocatorKind string

const (
	ByCSS   LocatorKind = "css"
	ByLabel LocatorKind = "label"
	ByRole  LocatorKind = "role"
	ByText  LocatorKind = "text"
)

// Locator is a rule for finding a DOM element.
type Locator struct {
	Kind  LocatorKind
	Value string // selector, label text, ARIA role or visible text
	Name  string // accessible name, role locators only
	First bool   // take the first match instead of requiring a unique one
}

// CSS matches elements by CSS selector.
func CSS(selector string) Locator { return Locator{Kind: ByCSS, Value: selector} }

// Label matches form controls by the text of their label.
func Label(text string) Locator { return Locator{Kind: ByLabel, Value: text} }

// Role matches elements by ARIA role and accessible name.
func Role(role, name string) Locator { return Locator{Kind: ByRole, Value: role, Name: name} }

// Text matches elements by visible text content.
func Text(text string) Locator { return Locator{Kind: ByText, Value: text} }

// FirstMatch returns a copy of l that resolves to its first match.
func (l Locator) FirstMatch() Locator {
	l.First = true
	return l
}

// Validate reports whether the locator can be resolved by an engine.
func (l Locator) Validate() error {
	switch l.Kind {
	case ByCSS, ByLabel, ByRole, ByText:
	default:
		return fmt.Errorf("unknown locator kind %q", l.Kind)
	}
	if strings.TrimSpace(l.Value) == "" {
		return fmt.Errorf("%s locator has an empty value", l.Kind)
	}
	return nil
}

func (l Locator) String() string {
	var s string
	if l.Kind == ByRole && l.Name != "" {
		s = fmt.Sprintf("role=%s[name=%q]", l.Value, l.Name)
	} else {
		s = fmt.Sprintf("%s=%q", l.Kind, l.Value)
	}
	if l.First {
		s += " >> first"
	}
	return s
}
