package webdriver

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"github.com/tebeka/selenium/log"

	"github.com/wanmail/loginsuite/browser"
)

// fakeWD implements the parts of selenium.WebDriver used by Driver. Calling
// anything else panics on the nil embedded interface.
type fakeWD struct {
	selenium.WebDriver

	url      string
	title    string
	elements map[string]*fakeWE
	findErr  error
	quits    int
}

func (f *fakeWD) SessionID() string { return "fake-session" }

func (f *fakeWD) Get(url string) error {
	f.url = url
	return nil
}

func (f *fakeWD) Title() (string, error) { return f.title, nil }

func (f *fakeWD) FindElement(by, value string) (selenium.WebElement, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if e, ok := f.elements[by+"|"+value]; ok {
		return e, nil
	}
	return nil, &selenium.Error{Err: "no such element", Message: "Unable to locate element", HTTPCode: 404}
}

func (f *fakeWD) MaximizeWindow(string) error { return nil }

func (f *fakeWD) Quit() error {
	f.quits++
	return nil
}

func (f *fakeWD) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	return "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.6533.88 Safari/537.36", nil
}

type fakeWE struct {
	selenium.WebElement

	text      string
	displayed bool
	keys      string
	clicks    int
	stale     bool
}

func (e *fakeWE) staleErr() error {
	if e.stale {
		return &selenium.Error{Err: "stale element reference", Message: "element is not attached to the page document"}
	}
	return nil
}

func (e *fakeWE) IsDisplayed() (bool, error) {
	if err := e.staleErr(); err != nil {
		return false, err
	}
	return e.displayed, nil
}

func (e *fakeWE) SendKeys(keys string) error {
	e.keys += keys
	return e.staleErr()
}

func (e *fakeWE) Click() error {
	e.clicks++
	return e.staleErr()
}

func (e *fakeWE) Text() (string, error) {
	return e.text, e.staleErr()
}

func TestDriver(t *testing.T) {
	user := &fakeWE{displayed: true}
	heading := &fakeWE{text: "Logged In Successfully", displayed: true}
	submit := &fakeWE{displayed: true}
	wd := &fakeWD{
		title: "Test Login | Practice Test Automation",
		elements: map[string]*fakeWE{
			selenium.ByID + "|username":               user,
			selenium.ByXPATH + "|//h1":                heading,
			selenium.ByCSSSelector + "|button#submit": submit,
		},
	}
	d := newDriver(wd)
	ctx := context.Background()

	const url = "https://practicetestautomation.com/practice-test-login/"
	if err := d.Open(ctx, url); err != nil {
		t.Fatalf("Open(%q) returned error: %v", url, err)
	}
	if wd.url != url {
		t.Errorf("Get() called with %q, want %q", wd.url, url)
	}

	title, err := d.Title(ctx)
	if err != nil {
		t.Fatalf("Title() returned error: %v", err)
	}
	if title != wd.title {
		t.Errorf("Title() = %q, want %q", title, wd.title)
	}

	e, err := d.Find(ctx, browser.ID("username"))
	if err != nil {
		t.Fatalf("Find(id=username) returned error: %v", err)
	}
	if err := e.SendKeys(ctx, "student"); err != nil {
		t.Fatalf("SendKeys() returned error: %v", err)
	}
	if user.keys != "student" {
		t.Errorf("typed %q, want %q", user.keys, "student")
	}

	e, err = d.Find(ctx, browser.XPath("//h1"))
	if err != nil {
		t.Fatalf("Find(xpath=//h1) returned error: %v", err)
	}
	text, err := e.Text(ctx)
	if err != nil {
		t.Fatalf("Text() returned error: %v", err)
	}
	if text != heading.text {
		t.Errorf("Text() = %q, want %q", text, heading.text)
	}

	e, err = d.Find(ctx, browser.CSS("button#submit"))
	if err != nil {
		t.Fatalf("Find(css=button#submit) returned error: %v", err)
	}
	if err := e.Click(ctx); err != nil {
		t.Fatalf("Click() returned error: %v", err)
	}
	if submit.clicks != 1 {
		t.Errorf("clicked %d times, want 1", submit.clicks)
	}

	v, err := d.BrowserVersion(ctx)
	if err != nil {
		t.Fatalf("BrowserVersion() returned error: %v", err)
	}
	if got, err := browser.ParseVersion(v); err != nil || got.Major != 127 {
		t.Errorf("ParseVersion(%q) = %v, %v; want major version 127", v, got, err)
	}

	if err := d.Quit(); err != nil {
		t.Fatalf("Quit() returned error: %v", err)
	}
	if err := d.Quit(); err != nil {
		t.Fatalf("second Quit() returned error: %v", err)
	}
	if wd.quits != 1 {
		t.Errorf("remote Quit() called %d times, want 1", wd.quits)
	}
}

func TestDriverErrors(t *testing.T) {
	ctx := context.Background()

	d := newDriver(&fakeWD{})
	_, err := d.Find(ctx, browser.ID("missing"))
	if !errors.Is(err, browser.ErrNoSuchElement) {
		t.Errorf("Find(id=missing) returned %v, want ErrNoSuchElement", err)
	}

	legacy := errors.New("no such element: Unable to locate element")
	d = newDriver(&fakeWD{findErr: legacy})
	_, err = d.Find(ctx, browser.ID("missing"))
	if !errors.Is(err, browser.ErrNoSuchElement) {
		t.Errorf("Find(id=missing) with a legacy error returned %v, want ErrNoSuchElement", err)
	}

	invalid := &selenium.Error{Err: "invalid selector", Message: "bad xpath"}
	d = newDriver(&fakeWD{findErr: invalid})
	_, err = d.Find(ctx, browser.XPath("//["))
	if errors.Is(err, browser.ErrNoSuchElement) {
		t.Errorf("Find(xpath=//[) returned %v, want an error other than ErrNoSuchElement", err)
	}
	var se *selenium.Error
	if !errors.As(err, &se) || se.Err != "invalid selector" {
		t.Errorf("Find(xpath=//[) returned %v, want the *selenium.Error", err)
	}

	stale := &fakeWE{stale: true}
	d = newDriver(&fakeWD{elements: map[string]*fakeWE{selenium.ByID + "|gone": stale}})
	e, err := d.Find(ctx, browser.ID("gone"))
	if err != nil {
		t.Fatalf("Find(id=gone) returned error: %v", err)
	}
	if _, err := e.IsDisplayed(ctx); !errors.Is(err, browser.ErrNoSuchElement) {
		t.Errorf("IsDisplayed() on a stale element returned %v, want ErrNoSuchElement", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := d.Open(cancelled, "about:blank"); !errors.Is(err, context.Canceled) {
		t.Errorf("Open() on a cancelled context returned %v, want context.Canceled", err)
	}

	if _, err := d.Find(ctx, browser.Locator{By: "name", Value: "q"}); err == nil {
		t.Error("Find() with an unknown strategy did not return an error")
	}
}

func TestNewCapabilities(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  Config
		want selenium.Capabilities
	}{
		{
			name: "chrome headless",
			cfg:  Config{Browser: "chrome", Headless: true, Name: "run-1"},
			want: selenium.Capabilities{
				"browserName": "chrome",
				"name":        "run-1",
				chrome.CapabilitiesKey: chrome.Capabilities{
					Args: []string{"--no-sandbox", "--headless"},
					W3C:  true,
				},
				chrome.DeprecatedCapabilitiesKey: chrome.Capabilities{
					Args: []string{"--no-sandbox", "--headless"},
					W3C:  true,
				},
			},
		},
		{
			name: "firefox with logs",
			cfg:  Config{Browser: "firefox", BrowserPath: "/usr/bin/firefox", Headless: true, BrowserLogLevel: "SEVERE"},
			want: selenium.Capabilities{
				"browserName": "firefox",
				firefox.CapabilitiesKey: firefox.Capabilities{
					Binary: "/usr/bin/firefox",
					Args:   []string{"-headless"},
				},
				log.CapabilitiesKey: log.Capabilities{log.Browser: log.Severe},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := newCapabilities(tc.cfg)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("newCapabilities(%+v) returned diff (-want/+got):\n%s", tc.cfg, diff)
			}
		})
	}
}
