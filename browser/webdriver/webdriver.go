// Package webdriver implements browser.Driver on top of a remote WebDriver
// session (Selenium Grid, ChromeDriver, GeckoDriver) using
// github.com/tebeka/selenium.
package webdriver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/tebeka/selenium"

	"github.com/wanmail/loginsuite/browser"
)

// DefaultRemoteURL is the Selenium Grid endpoint used when Config.RemoteURL
// is empty.
const DefaultRemoteURL = "http://selenium:4444/wd/hub"

// Config describes the remote session to create.
type Config struct {
	// RemoteURL is the WebDriver endpoint, prefixed with its scheme.
	RemoteURL string
	// Browser is the browserName capability: "chrome" or "firefox".
	Browser string
	// BrowserPath is the browser binary on the remote end. Empty means the
	// driver's default.
	BrowserPath string
	// Args are extra command-line arguments for the browser.
	Args     []string
	Headless bool
	// Name is reported to the remote end as the session name.
	Name string
	// BrowserLogLevel, if set, enables collection of browser logs at that
	// level (for example "SEVERE").
	BrowserLogLevel string
	// SOCKSProxy, if set, is the "host:port" of a SOCKS5 proxy for all the
	// browser's traffic.
	SOCKSProxy string
	// PageLoadTimeout bounds navigation. Zero keeps the driver's default.
	PageLoadTimeout time.Duration
	// Debug dumps the WebDriver wire traffic.
	Debug bool
}

// Driver is a browser.Driver backed by a WebDriver session.
type Driver struct {
	wd     selenium.WebDriver
	closed bool
}

var (
	_ browser.Driver    = (*Driver)(nil)
	_ browser.Versioner = (*Driver)(nil)
)

// Open starts a new WebDriver session. The session is not bound to ctx: it
// lives until Quit is called.
func Open(ctx context.Context, cfg Config) (*Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cfg.RemoteURL == "" {
		cfg.RemoteURL = DefaultRemoteURL
	}
	if cfg.Browser == "" {
		cfg.Browser = "chrome"
	}
	if cfg.Debug {
		selenium.SetDebug(true)
	}

	caps := newCapabilities(cfg)
	glog.V(1).Infof("webdriver: starting %s session at %s", cfg.Browser, cfg.RemoteURL)
	wd, err := selenium.NewRemote(caps, cfg.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("starting %s session at %s: %w", cfg.Browser, cfg.RemoteURL, err)
	}
	d := newDriver(wd)

	if cfg.PageLoadTimeout > 0 {
		if err := wd.SetPageLoadTimeout(cfg.PageLoadTimeout); err != nil {
			if qerr := d.Quit(); qerr != nil {
				glog.Warningf("webdriver: quitting session %s: %v", wd.SessionID(), qerr)
			}
			return nil, fmt.Errorf("setting page load timeout: %w", err)
		}
	}
	glog.V(1).Infof("webdriver: session %s started", wd.SessionID())
	return d, nil
}

func newDriver(wd selenium.WebDriver) *Driver {
	return &Driver{wd: wd}
}

// SessionID returns the WebDriver session ID.
func (d *Driver) SessionID() string {
	return d.wd.SessionID()
}

// Open implements browser.Driver.
func (d *Driver) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := d.wd.Get(url); err != nil {
		return fmt.Errorf("navigating to %s: %w", url, err)
	}
	return nil
}

// Find implements browser.Driver.
func (d *Driver) Find(ctx context.Context, loc browser.Locator) (browser.Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	by, err := strategy(loc)
	if err != nil {
		return nil, err
	}
	we, err := d.wd.FindElement(by, loc.Value)
	if err != nil {
		return nil, translate("find "+loc.String(), err)
	}
	return &element{we: we}, nil
}

// Title implements browser.Driver.
func (d *Driver) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.wd.Title()
}

// MaximizeWindow implements browser.Driver.
func (d *Driver) MaximizeWindow(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.wd.MaximizeWindow("")
}

// Quit implements browser.Driver.
func (d *Driver) Quit() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.wd.Quit()
}

// BrowserVersion implements browser.Versioner. It reads the user agent, the
// only version source that every driver exposes the same way.
func (d *Driver) BrowserVersion(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	v, err := d.wd.ExecuteScript("return navigator.userAgent;", nil)
	if err != nil {
		return "", err
	}
	ua, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("navigator.userAgent returned %T, want string", v)
	}
	return ua, nil
}

func strategy(loc browser.Locator) (string, error) {
	switch loc.By {
	case browser.ByID:
		return selenium.ByID, nil
	case browser.ByXPath:
		return selenium.ByXPATH, nil
	case browser.ByCSS:
		return selenium.ByCSSSelector, nil
	}
	return "", loc.Validate()
}

// notFound lists the WebDriver error codes meaning that the element is not
// (or no longer) in the document.
var notFound = []string{"no such element", "stale element reference"}

// translate maps WebDriver "element missing" errors to
// browser.ErrNoSuchElement and leaves every other error alone.
func translate(op string, err error) error {
	code := err.Error()
	var se *selenium.Error
	if errors.As(err, &se) {
		code = se.Err
	}
	for _, nf := range notFound {
		// Legacy servers only report the code as the message prefix.
		if strings.HasPrefix(code, nf) {
			return fmt.Errorf("%s: %w (%v)", op, browser.ErrNoSuchElement, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

type element struct {
	we selenium.WebElement
}

func (e *element) IsDisplayed(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	shown, err := e.we.IsDisplayed()
	if err != nil {
		return false, translate("is displayed", err)
	}
	return shown, nil
}

func (e *element) SendKeys(ctx context.Context, keys string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.we.SendKeys(keys); err != nil {
		return translate("send keys", err)
	}
	return nil
}

func (e *element) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.we.Click(); err != nil {
		return translate("click", err)
	}
	return nil
}

func (e *element) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := e.we.Text()
	if err != nil {
		return "", translate("text", err)
	}
	return text, nil
}
