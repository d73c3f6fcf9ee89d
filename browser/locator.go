package browser

import (
	"fmt"
	"strings"
)

// By is the strategy used to resolve a Locator.
type By string

// Locator strategies.
const (
	ByID    By = "id"
	ByXPath By = "xpath"
	ByCSS   By = "css"
)

// Locator is an opaque reference to an element, tagged by strategy.
type Locator struct {
	By    By
	Value string
}

// ID returns a locator matching the element with the given id attribute.
func ID(id string) Locator { return Locator{By: ByID, Value: id} }

// XPath returns a locator for an XPath expression.
func XPath(expr string) Locator { return Locator{By: ByXPath, Value: expr} }

// CSS returns a locator for a CSS selector.
func CSS(selector string) Locator { return Locator{By: ByCSS, Value: selector} }

// String returns the locator as "by=value", the form accepted by
// ParseLocator.
func (l Locator) String() string {
	return string(l.By) + "=" + l.Value
}

// Validate reports whether l has a known strategy and a value.
func (l Locator) Validate() error {
	switch l.By {
	case ByID, ByXPath, ByCSS:
	default:
		return fmt.Errorf("unknown locator strategy %q", l.By)
	}
	if l.Value == "" {
		return fmt.Errorf("empty %s locator", l.By)
	}
	return nil
}

// ParseLocator parses the "by=value" form produced by Locator.String.
func ParseLocator(s string) (Locator, error) {
	by, value, ok := strings.Cut(s, "=")
	if !ok {
		return Locator{}, fmt.Errorf("locator %q is not of the form by=value", s)
	}
	l := Locator{By: By(strings.TrimSpace(by)), Value: value}
	if err := l.Validate(); err != nil {
		return Locator{}, err
	}
	return l, nil
}
