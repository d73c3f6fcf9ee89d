// Package browser defines the small slice of a browser-automation client
// that the suite relies on, independently of the protocol used to talk to
// the browser. The webdriver and cdp subpackages provide implementations.
package browser

import (
	"context"
	"errors"
)

var (
	// ErrNoSuchElement is returned by Driver.Find when no element matches the
	// locator, and by Element methods when the element went stale.
	ErrNoSuchElement = errors.New("no such element")
	// ErrNotVisible is the not-ready reason used by Visible when the element
	// exists but is not displayed.
	ErrNotVisible = errors.New("element not visible")
)

// Element is a handle to one element of the current document.
type Element interface {
	// IsDisplayed reports whether the element is visible to a user.
	IsDisplayed(ctx context.Context) (bool, error)
	// SendKeys types keys into the element.
	SendKeys(ctx context.Context, keys string) error
	// Click clicks the element.
	Click(ctx context.Context) error
	// Text returns the visible text of the element.
	Text(ctx context.Context) (string, error)
}

// Driver is one browser session. A Driver is owned by a single goroutine.
type Driver interface {
	// Open navigates the session to url.
	Open(ctx context.Context, url string) error
	// Find resolves loc to a single element of the current document. It
	// returns an error matching ErrNoSuchElement when nothing matches.
	Find(ctx context.Context, loc Locator) (Element, error)
	// Title returns the title of the current document.
	Title(ctx context.Context) (string, error)
	// MaximizeWindow maximizes the current window.
	MaximizeWindow(ctx context.Context) error
	// Quit ends the session and releases the browser. It is safe to call
	// Quit more than once.
	Quit() error
}

// Versioner is implemented by drivers that know the version of the browser
// they drive.
type Versioner interface {
	BrowserVersion(ctx context.Context) (string, error)
}
